package rentroll

import (
	"maps"
	"slices"

	"github.com/etnz/rentroll/date"
	"github.com/shopspring/decimal"
)

// AggregatedCharge is the rent of one amendment on one date.
type AggregatedCharge struct {
	AmendmentID string
	AsOf        date.Date
	MonthlyRent Money
	AnnualRent  Money
	RentPSF     Money // annual rent per square foot, zero when the area is unknown
	// Other holds the monthly amount of charges that are not rent, by category.
	Other map[ChargeCategory]Money
	Lines int // rent lines summed into MonthlyRent
}

// Aggregate sums the rent charges of an amendment effective on date on.
//
// Only rent-classified lines whose effective range covers on are summed, each normalized
// to a monthly amount by its frequency. Other effective lines are summed per category
// into Other and never mixed into the rent. area is the amendment's area, used for the
// rent per square foot.
func Aggregate(amendmentID string, area Area, charges []Charge, on date.Date, classes Classification) AggregatedCharge {
	agg := AggregatedCharge{AmendmentID: amendmentID, AsOf: on}
	for _, c := range charges {
		if c.AmendmentID != amendmentID || !c.Effective().Contains(on) {
			continue
		}
		monthly := c.Frequency.Monthly(c.Amount)
		cat := classes.Category(c.Code)
		if cat == CategoryRent {
			agg.MonthlyRent = agg.MonthlyRent.Add(monthly)
			agg.Lines++
			continue
		}
		if agg.Other == nil {
			agg.Other = make(map[ChargeCategory]Money)
		}
		agg.Other[cat] = agg.Other[cat].Add(monthly)
	}
	agg.AnnualRent = agg.MonthlyRent.Mul(decimal.NewFromInt(12))
	if area.IsPositive() {
		agg.RentPSF = agg.AnnualRent.Div(area.Decimal())
	} else {
		agg.RentPSF = M(0, agg.AnnualRent.Currency())
	}
	return agg
}

// OtherCategories returns the categories of Other in a stable order.
func (a AggregatedCharge) OtherCategories() []ChargeCategory {
	return slices.Sorted(maps.Keys(a.Other))
}

// hasRentOn returns a ChargePredicate backed by charges indexed by amendment id.
func hasRentOn(index map[string][]Charge, classes Classification) ChargePredicate {
	return func(a Amendment, on date.Date) bool {
		for _, c := range index[a.ID] {
			if classes.IsRent(c.Code) && c.Effective().Contains(on) {
				return true
			}
		}
		return false
	}
}
