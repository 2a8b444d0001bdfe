package rentroll

import (
	"slices"

	"github.com/etnz/rentroll/date"
	"github.com/shopspring/decimal"
)

// LeaseChange is a lease present in both snapshots whose figures differ.
type LeaseChange struct {
	Key             LeaseKey `json:"key"`
	FromAmendmentID string   `json:"fromAmendmentId"`
	ToAmendmentID   string   `json:"toAmendmentId"`
	RentDelta       Money    `json:"rentDelta"`
	AreaDelta       Area     `json:"areaDelta"`
}

// Comparison is the period-over-period difference between two snapshots.
type Comparison struct {
	From             date.Date       `json:"from"`
	To               date.Date       `json:"to"`
	FromTotals       Totals          `json:"fromTotals"`
	ToTotals         Totals          `json:"toTotals"`
	MonthlyRentDelta Money           `json:"monthlyRentDelta"`
	LeasedAreaDelta  Area            `json:"leasedAreaDelta"`
	OccupancyDelta   Percent         `json:"occupancyDelta"`
	WALTDelta        decimal.Decimal `json:"waltDelta"`
	Added            []LeaseKey      `json:"added,omitempty"`
	Removed          []LeaseKey      `json:"removed,omitempty"`
	Changed          []LeaseChange   `json:"changed,omitempty"`
}

// Unchanged reports whether both snapshots list the same leases with the same
// amendments, rents and areas. WALT naturally decays between two dates and is ignored.
func (c Comparison) Unchanged() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0 &&
		c.MonthlyRentDelta.IsZero() && c.LeasedAreaDelta.IsZero()
}

// Compare returns what changed from snapshot a to snapshot b.
func Compare(a, b *RentRollSnapshot) Comparison {
	c := Comparison{
		From:             a.AsOf,
		To:               b.AsOf,
		FromTotals:       a.Totals(),
		ToTotals:         b.Totals(),
		MonthlyRentDelta: b.Portfolio.MonthlyRent.Sub(a.Portfolio.MonthlyRent),
		LeasedAreaDelta:  b.Portfolio.LeasedArea.Sub(a.Portfolio.LeasedArea),
		OccupancyDelta:   b.Portfolio.Occupancy - a.Portfolio.Occupancy,
		WALTDelta:        b.Portfolio.WALT.Sub(a.Portfolio.WALT),
	}
	for _, e := range a.Entries {
		f, ok := b.Entry(e.Key)
		if !ok {
			c.Removed = append(c.Removed, e.Key)
			continue
		}
		if f.AmendmentID != e.AmendmentID || !f.MonthlyRent.Equal(e.MonthlyRent) || !f.Area.Equal(e.Area) {
			c.Changed = append(c.Changed, LeaseChange{
				Key:             e.Key,
				FromAmendmentID: e.AmendmentID,
				ToAmendmentID:   f.AmendmentID,
				RentDelta:       f.MonthlyRent.Sub(e.MonthlyRent),
				AreaDelta:       f.Area.Sub(e.Area),
			})
		}
	}
	for _, f := range b.Entries {
		if _, ok := a.Entry(f.Key); !ok {
			c.Added = append(c.Added, f.Key)
		}
	}
	slices.SortFunc(c.Added, LeaseKey.Compare)
	return c
}
