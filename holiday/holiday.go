package holiday

import (
	"fmt"
	"sort"
	"time"
)

const dateFormat = "2006-01-02"

// Set holds the holiday dates of a single year, keyed by ISO date.
type Set map[string]bool

func NewSet(dates ...time.Time) Set {
	s := Set{}
	for _, d := range dates {
		s[d.Format(dateFormat)] = true
	}
	return s
}

func (s Set) Contains(t time.Time) bool {
	return s[t.Format(dateFormat)]
}

// Returns the set's dates in calendar order.
func (s Set) Dates() []time.Time {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := time.Parse(dateFormat, k)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Calendar maps years to their holiday sets. A year without an entry
// simply has no holidays.
type Calendar map[int]Set

func (c Calendar) IsHoliday(t time.Time) bool {
	return c[t.Year()].Contains(t)
}

// Returns a calendar with other's years layered over c's. A year
// listed in other replaces c's entry for that year outright.
func (c Calendar) Merge(other Calendar) Calendar {
	merged := Calendar{}
	for year, set := range c {
		merged[year] = set
	}
	for year, set := range other {
		merged[year] = set
	}
	return merged
}

// Builds a calendar from configuration, year to ISO dates.
func FromConfig(years map[int][]string) (Calendar, error) {
	c := Calendar{}
	for year, dates := range years {
		set := Set{}
		for _, ds := range dates {
			d, err := time.Parse(dateFormat, ds)
			if err != nil {
				return nil, fmt.Errorf("parsing holiday date '%s': %w", ds, err)
			}
			if d.Year() != year {
				return nil, fmt.Errorf("holiday date %s listed under year %d", ds, year)
			}
			set[ds] = true
		}
		c[year] = set
	}
	return c, nil
}

// Built-in City of Los Angeles holiday table. The Bureau of Street
// Services skips posted sweeps on these dates. Years beyond what's
// listed here come from configuration.
func LosAngeles() Calendar {
	return Calendar{
		2026: Set{
			"2026-01-01": true, // New Year's Day
			"2026-01-19": true, // Martin Luther King Jr. Day
			"2026-02-16": true, // Presidents Day
			"2026-03-31": true, // Cesar Chavez Day
			"2026-05-25": true, // Memorial Day
			"2026-07-03": true, // Independence Day (observed)
			"2026-09-07": true, // Labor Day
			"2026-11-11": true, // Veterans Day
			"2026-11-26": true, // Thanksgiving Day
			"2026-11-27": true, // Day after Thanksgiving
			"2026-12-25": true, // Christmas Day
		},
	}
}
