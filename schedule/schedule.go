package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Months scanned before giving up on finding sweep dates. Well past
// the 12 months a caller could reasonably ask about.
const searchMonths = 18

var ErrHorizonExhausted = errors.New("no sweep dates within search horizon")

// Parity selects which occurrences of the posted weekday are swept:
// the 1st and 3rd of each month, or the 2nd and 4th. A 5th occurrence
// is never swept.
type Parity int

const (
	FirstThird Parity = iota + 1
	SecondFourth
)

func (p Parity) String() string {
	switch p {
	case FirstThird:
		return "1st & 3rd"
	case SecondFourth:
		return "2nd & 4th"
	}
	return fmt.Sprintf("Parity(%d)", int(p))
}

func (p Parity) ordinals() []int {
	switch p {
	case FirstThird:
		return []int{1, 3}
	case SecondFourth:
		return []int{2, 4}
	}
	return nil
}

// Parses the Weeks field of a route record. The dataset writes it in
// several shapes ("1 & 3", "1st & 3rd", "2 and 4"), so matching is on
// the digits alone. Anything that isn't exactly the 1/3 or 2/4 pair
// is an error, never a guess.
func ParseParity(weeks string) (Parity, error) {
	var digits strings.Builder
	for _, r := range weeks {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	switch digits.String() {
	case "13":
		return FirstThird, nil
	case "24":
		return SecondFourth, nil
	}
	return 0, fmt.Errorf("unrecognized week pattern '%s'", weeks)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// Parses the Posted_Day field of a route record. Full names and the
// three letter abbreviations used by Day_Short are accepted.
func ParseWeekday(day string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return 0, fmt.Errorf("unrecognized weekday '%s'", day)
	}
	return wd, nil
}

// Reports whether a calendar date is a holiday. Sweeps falling on
// holidays are skipped, not rescheduled.
type Holidays interface {
	IsHoliday(t time.Time) bool
}

// Strips the clock, yielding the calendar date at midnight UTC.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date of the nth occurrence of a weekday in the month containing t.
// Ordinals 1 through 4 always land inside the month; only a 5th can
// spill into the next one.
func nthWeekday(t time.Time, day time.Weekday, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(day) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

// Returns the next sweep dates for a schedule, in chronological order.
//
// ref itself counts: if the sweep is happening today, today is the
// first result. Holiday dates are omitted. count <= 0 yields an empty
// result. If the search horizon runs out before count dates are found
// (possible when a year is configured with many holidays, or on bad
// input), ErrHorizonExhausted is returned.
func NextSweepDates(ref time.Time, day time.Weekday, parity Parity, holidays Holidays, count int) ([]time.Time, error) {
	dates := []time.Time{}
	if count <= 0 {
		return dates, nil
	}

	ordinals := parity.ordinals()
	if ordinals == nil {
		return nil, fmt.Errorf("invalid parity value '%d'", int(parity))
	}

	refDate := civil(ref)

	month := time.Date(refDate.Year(), refDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < searchMonths; i++ {
		for _, n := range ordinals {
			d := nthWeekday(month, day, n)
			if d.Before(refDate) {
				continue
			}
			if holidays != nil && holidays.IsHoliday(d) {
				continue
			}
			dates = append(dates, d)
			if len(dates) == count {
				return dates, nil
			}
		}
		month = month.AddDate(0, 1, 0)
	}

	return nil, ErrHorizonExhausted
}

// Reports whether ref's calendar date is a sweep date for the
// schedule. Agrees with NextSweepDates: true exactly when ref would
// be the first date returned.
func IsSweepToday(ref time.Time, day time.Weekday, parity Parity, holidays Holidays) bool {
	d := civil(ref)
	if d.Weekday() != day {
		return false
	}

	ordinal := (d.Day()-1)/7 + 1
	match := false
	for _, n := range parity.ordinals() {
		if ordinal == n {
			match = true
		}
	}
	if !match {
		return false
	}

	if holidays != nil && holidays.IsHoliday(d) {
		return false
	}
	return true
}
