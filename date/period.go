package date

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar period. Rent rolls are usually compared period over period,
// for instance the last day of the previous quarter against today.
type Period int

const (
	Week Period = iota
	Month
	Quarter
	Year
)

var periodNames = map[Period][]string{
	Week:    {"week", "weekly", "w"},
	Month:   {"month", "monthly", "m"},
	Quarter: {"quarter", "quarterly", "q"},
	Year:    {"year", "yearly", "annual", "y"},
}

func (p Period) String() string {
	if names, ok := periodNames[p]; ok {
		return names[0]
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod reads a period name such as "month", "Quarterly" or "y".
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, names := range periodNames {
		for _, n := range names {
			if n == s {
				return p, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown period %q, want week, month, quarter or year", s)
}

// StartOf returns the first day of the period holding d. Weeks start on Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Week:
		offset := (int(d.time().Weekday()) + 6) % 7
		return d.Add(-offset)
	case Month:
		return New(d.y, d.m, 1)
	case Quarter:
		return New(d.y, (d.m-1)/3*3+1, 1)
	case Year:
		return New(d.y, time.January, 1)
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}

// EndOfPrevious returns the last day of the period before the one holding d.
func (d Date) EndOfPrevious(p Period) Date { return d.StartOf(p).Add(-1) }
