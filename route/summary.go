package route

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alandotcom/sweepy/schedule"
)

var ErrNoPostedRoutes = errors.New("no posted sweep routes")

// A parsed posted-day/week-parity pair from a route record.
type Schedule struct {
	Day    time.Weekday
	Parity schedule.Parity
}

// Sweep details for one street, consolidated from the records around
// a point.
type Summary struct {
	Street    string   // e.g. "VALERIO ST"
	Days      []string // posted days, first-seen order
	Times     []string // posted time windows, first-seen order
	Parity    schedule.Parity
	Schedules []Schedule
}

// Consolidates raw route records into a single street's summary.
//
// Records without a posted day carry no sweeping schedule and are
// dropped. When the envelope straddles a corner, records from the
// cross street are discarded in favor of the street with the most
// records. Returns ErrNoPostedRoutes if nothing survives.
//
// Every surviving record's Posted_Day and Weeks fields must parse.
// A record that doesn't is an error, never silently skipped.
func Consolidate(records []Record) (*Summary, error) {
	posted := []Record{}
	for _, r := range records {
		if r.PostedDay != "" {
			posted = append(posted, r)
		}
	}
	if len(posted) == 0 {
		return nil, ErrNoPostedRoutes
	}

	counts := map[string]int{}
	for _, r := range posted {
		counts[r.StreetName]++
	}
	primary := posted[0].StreetName
	for _, r := range posted {
		if counts[r.StreetName] > counts[primary] {
			primary = r.StreetName
		}
	}

	street := []Record{}
	for _, r := range posted {
		if r.StreetName == primary {
			street = append(street, r)
		}
	}

	summary := &Summary{
		Street: strings.ToUpper(strings.TrimSpace(primary + " " + street[0].StreetSfx)),
	}

	seenDay := map[string]bool{}
	seenTime := map[string]bool{}
	seenSchedule := map[Schedule]bool{}
	for _, r := range street {
		parity, err := schedule.ParseParity(r.Weeks)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", r.Route, err)
		}
		day, err := schedule.ParseWeekday(r.PostedDay)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", r.Route, err)
		}

		if summary.Parity == 0 {
			summary.Parity = parity
		}

		if !seenDay[r.PostedDay] {
			seenDay[r.PostedDay] = true
			summary.Days = append(summary.Days, r.PostedDay)
		}
		if r.PostedTime != "" && !seenTime[r.PostedTime] {
			seenTime[r.PostedTime] = true
			summary.Times = append(summary.Times, r.PostedTime)
		}

		s := Schedule{Day: day, Parity: parity}
		if !seenSchedule[s] {
			seenSchedule[s] = true
			summary.Schedules = append(summary.Schedules, s)
		}
	}

	return summary, nil
}
