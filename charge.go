package rentroll

import (
	"fmt"
	"strings"

	"github.com/etnz/rentroll/date"
	"github.com/shopspring/decimal"
)

// Frequency is the billing period of a charge amount.
type Frequency int

const (
	Monthly Frequency = iota
	Quarterly
	SemiAnnual
	Annual
)

func (f Frequency) String() string {
	switch f {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case SemiAnnual:
		return "semiannual"
	case Annual:
		return "annual"
	default:
		return "unknown"
	}
}

// months is the number of months one period covers.
func (f Frequency) months() int64 {
	switch f {
	case Quarterly:
		return 3
	case SemiAnnual:
		return 6
	case Annual:
		return 12
	default:
		return 1
	}
}

// ParseFrequency parses a billing frequency. The empty string is Monthly.
func ParseFrequency(s string) (Frequency, error) {
	switch normalizeEnum(s) {
	case "", "monthly", "month", "m":
		return Monthly, nil
	case "quarterly", "quarter", "q":
		return Quarterly, nil
	case "semiannual", "semiannually", "biannual", "halfyearly", "s":
		return SemiAnnual, nil
	case "annual", "annually", "yearly", "year", "a", "y":
		return Annual, nil
	default:
		return Monthly, fmt.Errorf("unknown frequency %q", s)
	}
}

func (f Frequency) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Frequency) UnmarshalText(b []byte) (err error) {
	*f, err = ParseFrequency(string(b))
	return err
}

// Monthly normalizes an amount billed at frequency f to a monthly amount.
func (f Frequency) Monthly(amount Money) Money {
	return amount.Div(decimal.NewFromInt(f.months()))
}

// ChargeCategory is the external classification of a charge code.
type ChargeCategory string

const (
	CategoryRent     ChargeCategory = "rent"
	CategoryRecovery ChargeCategory = "recovery"
	CategoryTax      ChargeCategory = "tax"
	CategoryOther    ChargeCategory = "other"
)

// Classification maps charge codes to categories. Lookups ignore case and surrounding spaces.
type Classification map[string]ChargeCategory

// Category returns the category of code, CategoryOther when the code is not mapped.
func (c Classification) Category(code string) ChargeCategory {
	if cat, ok := c[code]; ok {
		return cat
	}
	code = strings.ToLower(strings.TrimSpace(code))
	for k, cat := range c {
		if strings.ToLower(strings.TrimSpace(k)) == code {
			return cat
		}
	}
	return CategoryOther
}

// IsRent reports whether code feeds the primary rent aggregate.
func (c Classification) IsRent(code string) bool { return c.Category(code) == CategoryRent }

// Charge is a charge schedule entry: a periodic obligation attached to one amendment.
type Charge struct {
	AmendmentID string
	Code        string
	Amount      Money
	Frequency   Frequency
	From        date.Date
	To          date.Date // zero when open-ended
}

// Effective returns the charge's effective range.
func (c Charge) Effective() date.Range { return date.Range{From: c.From, To: c.To} }

// Property is the metadata the snapshot builder needs about a property.
type Property struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name"`
	RentableArea Area      `json:"rentableArea"`
	Acquired     date.Date `json:"acquired"`
	Disposed     date.Date `json:"disposed"`
}

// HeldOn reports whether the property was owned on d.
func (p Property) HeldOn(d date.Date) bool {
	if !p.Acquired.IsZero() && p.Acquired.After(d) {
		return false
	}
	return p.Disposed.IsZero() || p.Disposed.After(d)
}
