package holiday

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Shift to Friday when the date lands on a Saturday, to Monday when
// it lands on a Sunday. The city's rule for fixed-date holidays.
var weekendObserved = []cal.AltDay{
	{Day: time.Saturday, Offset: -1},
	{Day: time.Sunday, Offset: 1},
}

var cesarChavezDay = &cal.Holiday{
	Name:     "Cesar Chavez Day",
	Type:     cal.ObservancePublic,
	Month:    time.March,
	Day:      31,
	Observed: weekendObserved,
	Func:     cal.CalcDayOfMonth,
}

var dayAfterThanksgiving = &cal.Holiday{
	Name:       "Day after Thanksgiving",
	Type:       cal.ObservancePublic,
	Month:      time.November,
	Weekday:    time.Thursday,
	Offset:     4,
	CalcOffset: 1,
	Func:       cal.CalcWeekdayOffset,
}

// Computes the City of Los Angeles holiday table for a year, observed
// dates. The output is meant to be reviewed and pasted into config;
// lookups only ever read the configured calendar.
func Generate(year int) Set {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		cesarChavezDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.VeteransDay,
		us.ThanksgivingDay,
		dayAfterThanksgiving,
		us.ChristmasDay,
	)

	set := Set{}
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		_, observed, _ := c.IsHoliday(d)
		if observed {
			set[d.Format(dateFormat)] = true
		}
	}
	return set
}
