package date

import "fmt"

// Range is a lease term or a charge effective range. Both bounds are included and a
// zero To leaves the range open-ended.
type Range struct{ From, To Date }

// Open reports whether the range has no upper bound.
func (r Range) Open() bool { return r.To.IsZero() }

// Contains reports whether date falls in the range. An open-ended range contains
// every date on or after From.
func (r Range) Contains(date Date) bool {
	if date.Before(r.From) {
		return false
	}
	return r.Open() || !date.After(r.To)
}

// Valid reports whether the range is not inverted.
func (r Range) Valid() bool { return r.Open() || !r.To.Before(r.From) }

func (r Range) String() string {
	if r.Open() {
		return fmt.Sprintf("%s..", r.From)
	}
	return fmt.Sprintf("%s..%s", r.From, r.To)
}
