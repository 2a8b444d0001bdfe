package rentroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// parseDecimal reads numbers the way spreadsheet exports print them: "1,250.00", "$ 3,000", "(120.50)".
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// Area is a leasable area, in square feet.
type Area struct {
	value decimal.Decimal
}

// A returns an Area of value square feet.
func A[T float64 | int | int64 | decimal.Decimal](value T) Area {
	return Area{value: newDecimal(value)}
}

// ParseArea parses a square footage such as "12,500".
func ParseArea(s string) (Area, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Area{}, fmt.Errorf("invalid area %q: %w", s, err)
	}
	return Area{value: d}, nil
}

func (a Area) Decimal() decimal.Decimal { return a.value }
func (a Area) Equal(b Area) bool        { return a.value.Equal(b.value) }
func (a Area) Add(b Area) Area          { return Area{value: a.value.Add(b.value)} }
func (a Area) Sub(b Area) Area          { return Area{value: a.value.Sub(b.value)} }
func (a Area) Abs() Area                { return Area{value: a.value.Abs()} }
func (a Area) IsPositive() bool         { return a.value.IsPositive() }
func (a Area) IsZero() bool             { return a.value.IsZero() }
func (a Area) Float() float64           { return a.value.InexactFloat64() }
func (a Area) String() string           { return a.value.StringFixed(0) + " sf" }

// Ratio returns a/b as a Percent, 0 when b is not positive.
func (a Area) Ratio(b Area) Percent {
	if !b.IsPositive() {
		return 0
	}
	return Percent(a.value.Div(b.value).Mul(decimal.NewFromInt(100)).InexactFloat64())
}

func (a Area) MarshalJSON() ([]byte, error) { return a.value.Round(2).MarshalJSON() }
func (a *Area) UnmarshalJSON(b []byte) error { return a.value.UnmarshalJSON(b) }
