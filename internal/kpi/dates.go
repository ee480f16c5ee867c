// internal/kpi/dates.go
package kpi

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive pair of calendar days covering one month.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MonthDescriptor identifies one point of the monthly revenue series.
// Month is zero-based (0 = January).
type MonthDescriptor struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// CurrentMonthRange returns the first and last day of the month containing now,
// evaluated in now's location.
func CurrentMonthRange(now time.Time) DateRange {
	return MonthRange(now.Year(), int(now.Month())-1)
}

// MonthRange returns the first and last day of the given zero-based month.
// The last day is day 0 of the following month, which time.Date normalizes.
func MonthRange(year, month int) DateRange {
	start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start: start.Format(dateLayout),
		End:   end.Format(dateLayout),
	}
}

// Last12Months returns the eleven months before now's month followed by
// now's month, oldest first.
func Last12Months(now time.Time) []MonthDescriptor {
	months := make([]MonthDescriptor, 0, 12)
	for i := 11; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		months = append(months, MonthDescriptor{
			Year:  d.Year(),
			Month: int(d.Month()) - 1,
			Label: fmt.Sprintf("%d/%02d", d.Year(), int(d.Month())),
		})
	}
	return months
}

// Range returns the calendar range of the descriptor's month.
func (m MonthDescriptor) Range() DateRange {
	return MonthRange(m.Year, m.Month)
}
