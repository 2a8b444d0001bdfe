package rentroll

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/rentroll/date"
	"github.com/shopspring/decimal"
)

// WALTBasis selects the weight of each lease in the weighted average lease term.
type WALTBasis string

const (
	WeightByRent WALTBasis = "rent"
	WeightByArea WALTBasis = "area"
)

// SnapshotOptions configures the portfolio roll-up.
type SnapshotOptions struct {
	Currency  string    `yaml:"currency" validate:"required,len=3"`
	WALTBasis WALTBasis `yaml:"walt_weight_basis" validate:"oneof=rent area"`
	// MonthToMonthInDenominator keeps month-to-month leases in the WALT weights even
	// though they contribute no remaining term.
	MonthToMonthInDenominator bool `yaml:"month_to_month_in_denominator"`
	// Buckets are the upper bounds, in months from the as-of date, of the expiration buckets.
	Buckets []int `yaml:"expiration_bucket_boundaries" validate:"dive,gte=0"`
	// SameStoreSince, when set, keeps only properties held since that date and still held on the as-of date.
	SameStoreSince date.Date `yaml:"same_store_since"`
}

// DefaultSnapshotOptions weights WALT by rent and buckets expirations at 3, 6, 12 and 24 months.
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		Currency:                  "USD",
		WALTBasis:                 WeightByRent,
		MonthToMonthInDenominator: true,
		Buckets:                   []int{3, 6, 12, 24},
	}
}

// Entry is one lease of the rent roll.
type Entry struct {
	Key          LeaseKey                 `json:"key"`
	PropertyName string                   `json:"propertyName,omitempty"`
	Unit         string                   `json:"unit,omitempty"`
	AmendmentID  string                   `json:"amendmentId"`
	Type         AmendmentType            `json:"type"`
	Status       Status                   `json:"status"`
	Start        date.Date                `json:"start"`
	End          date.Date                `json:"end"`
	Area         Area                     `json:"area"`
	MonthlyRent  Money                    `json:"monthlyRent"`
	AnnualRent   Money                    `json:"annualRent"`
	RentPSF      Money                    `json:"rentPsf"`
	Other        map[ChargeCategory]Money `json:"other,omitempty"`
}

// MonthToMonth reports whether the lease has no fixed end.
func (e Entry) MonthToMonth() bool { return e.End.IsZero() }

// PropertySummary rolls up the leases of one property.
type PropertySummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name,omitempty"`
	Leases       int     `json:"leases"`
	MonthlyRent  Money   `json:"monthlyRent"`
	LeasedArea   Area    `json:"leasedArea"`
	RentableArea Area    `json:"rentableArea"`
	Occupancy    Percent `json:"occupancy"`
}

// Bucket counts the leases expiring within a window of months after the as-of date.
type Bucket struct {
	Label        string `json:"label"`
	From         int    `json:"from"` // first month offset, inclusive
	To           int    `json:"to"`   // last month offset, inclusive; -1 when unbounded
	MonthToMonth bool   `json:"monthToMonth,omitempty"`
	Leases       int    `json:"leases"`
	Area         Area   `json:"area"`
	MonthlyRent  Money  `json:"monthlyRent"`
}

// Portfolio holds the portfolio level aggregates of a snapshot.
type Portfolio struct {
	Currency     string          `json:"currency"`
	Leases       int             `json:"leases"`
	MonthlyRent  Money           `json:"monthlyRent"`
	AnnualRent   Money           `json:"annualRent"`
	LeasedArea   Area            `json:"leasedArea"`
	RentableArea Area            `json:"rentableArea"`
	Occupancy    Percent         `json:"occupancy"`
	WALT         decimal.Decimal `json:"walt"` // in years
	WALTBasis    WALTBasis       `json:"waltBasis"`
	Buckets      []Bucket        `json:"buckets"`
	// Excluded counts the lease keys without an authoritative amendment, by diagnostic.
	Excluded  map[Diagnostic]int `json:"excluded,omitempty"`
	TieBreaks int                `json:"tieBreaks,omitempty"`
}

// RentRollSnapshot is the rent roll on one as-of date. A snapshot is never updated: another
// date or a corrected amendment log produces another snapshot.
type RentRollSnapshot struct {
	AsOf       date.Date         `json:"asOf"`
	Entries    []Entry           `json:"entries"`
	Properties []PropertySummary `json:"properties"`
	Portfolio  Portfolio         `json:"portfolio"`
}

// Build joins resolved lease states with their aggregated charges and rolls them up by
// property and portfolio.
//
// Excluded states are counted, not listed. Every selected amendment must have its
// aggregated charge. Entries are sorted by lease key before any aggregation so the result
// does not depend on the order states were produced in.
func Build(resolved []ResolvedLeaseState, charges []AggregatedCharge, properties []Property, opts SnapshotOptions) (*RentRollSnapshot, error) {
	byAmendment := make(map[string]AggregatedCharge, len(charges))
	for _, c := range charges {
		byAmendment[c.AmendmentID] = c
	}
	props := make(map[string]Property, len(properties))
	for _, p := range properties {
		props[p.ID] = p
	}

	s := &RentRollSnapshot{}
	excluded := make(map[Diagnostic]int)
	tieBreaks := 0
	for i, r := range resolved {
		if i == 0 {
			s.AsOf = r.AsOf
		} else if r.AsOf != s.AsOf {
			return nil, fmt.Errorf("%w: resolved states for %v and %v", ErrMixedAsOf, s.AsOf, r.AsOf)
		}
		if !sameStore(r.Key.Property, props, s.AsOf, opts.SameStoreSince) {
			continue
		}
		if r.Excluded() {
			excluded[r.Diagnostic]++
			continue
		}
		c, ok := byAmendment[r.AmendmentID]
		if !ok {
			return nil, fmt.Errorf("%w: no aggregated charge for amendment %q of %v", ErrMalformedInput, r.AmendmentID, r.Key)
		}
		if r.TieBreak {
			tieBreaks++
		}
		a := r.Amendment
		e := Entry{
			Key:          r.Key,
			PropertyName: props[r.Key.Property].Name,
			Unit:         a.Unit,
			AmendmentID:  r.AmendmentID,
			Type:         a.Type,
			Status:       a.Status,
			Start:        a.Start,
			End:          a.End,
			Area:         a.Area,
			MonthlyRent:  c.MonthlyRent.WithCurrency(opts.Currency),
			AnnualRent:   c.AnnualRent.WithCurrency(opts.Currency),
			RentPSF:      c.RentPSF.WithCurrency(opts.Currency),
		}
		if len(c.Other) > 0 {
			e.Other = maps.Clone(c.Other)
		}
		s.Entries = append(s.Entries, e)
	}
	slices.SortFunc(s.Entries, func(a, b Entry) int { return a.Key.Compare(b.Key) })

	var kept []Property
	for _, p := range properties {
		if sameStore(p.ID, props, s.AsOf, opts.SameStoreSince) {
			kept = append(kept, p)
		}
	}
	s.Properties, s.Portfolio = Summarize(s.AsOf, s.Entries, kept, opts)
	if len(excluded) > 0 {
		s.Portfolio.Excluded = excluded
	}
	s.Portfolio.TieBreaks = tieBreaks
	return s, nil
}

// sameStore reports whether a property is kept by the same-store filter.
// Without a filter date every property is kept.
func sameStore(id string, props map[string]Property, on, since date.Date) bool {
	if since.IsZero() {
		return true
	}
	p, ok := props[id]
	if !ok {
		return false
	}
	return p.HeldOn(since) && p.HeldOn(on)
}

// Summarize computes the property and portfolio aggregates of entries on date on.
// entries must be sorted by key. properties supply rentable areas and names; properties
// without leases are reported with zero occupancy.
func Summarize(on date.Date, entries []Entry, properties []Property, opts SnapshotOptions) ([]PropertySummary, Portfolio) {
	zero := M(0, opts.Currency)
	pf := Portfolio{
		Currency:    opts.Currency,
		MonthlyRent: zero,
		AnnualRent:  zero,
		WALTBasis:   opts.WALTBasis,
		Buckets:     newBuckets(opts.Buckets, zero),
	}
	byID := make(map[string]*PropertySummary)
	summary := func(id string) *PropertySummary {
		ps, ok := byID[id]
		if !ok {
			ps = &PropertySummary{ID: id, MonthlyRent: zero}
			byID[id] = ps
		}
		return ps
	}
	for _, p := range properties {
		ps := summary(p.ID)
		ps.Name = p.Name
		ps.RentableArea = p.RentableArea
	}

	var weighted, weights decimal.Decimal
	for _, e := range entries {
		ps := summary(e.Key.Property)
		ps.Leases++
		ps.MonthlyRent = ps.MonthlyRent.Add(e.MonthlyRent)
		ps.LeasedArea = ps.LeasedArea.Add(e.Area)

		pf.Leases++
		pf.MonthlyRent = pf.MonthlyRent.Add(e.MonthlyRent)
		pf.LeasedArea = pf.LeasedArea.Add(e.Area)

		w := e.MonthlyRent.Decimal()
		if opts.WALTBasis == WeightByArea {
			w = e.Area.Decimal()
		}
		if e.MonthToMonth() {
			if opts.MonthToMonthInDenominator {
				weights = weights.Add(w)
			}
		} else {
			weighted = weighted.Add(w.Mul(remainingYears(on, e.End)))
			weights = weights.Add(w)
		}

		b := &pf.Buckets[bucketIndex(pf.Buckets, on, e)]
		b.Leases++
		b.Area = b.Area.Add(e.Area)
		b.MonthlyRent = b.MonthlyRent.Add(e.MonthlyRent)
	}
	pf.AnnualRent = pf.MonthlyRent.Mul(decimal.NewFromInt(12))
	if weights.IsPositive() {
		pf.WALT = weighted.Div(weights).Round(2)
	}

	ids := slices.Sorted(maps.Keys(byID))
	props := make([]PropertySummary, 0, len(ids))
	for _, id := range ids {
		ps := byID[id]
		ps.Occupancy = ps.LeasedArea.Ratio(ps.RentableArea)
		if ps.RentableArea.IsPositive() {
			pf.RentableArea = pf.RentableArea.Add(ps.RentableArea)
		}
		props = append(props, *ps)
	}
	// occupancy is only meaningful over properties with a known rentable area.
	var leasedKnown Area
	for _, ps := range props {
		if ps.RentableArea.IsPositive() {
			leasedKnown = leasedKnown.Add(ps.LeasedArea)
		}
	}
	pf.Occupancy = leasedKnown.Ratio(pf.RentableArea)
	return props, pf
}

// remainingYears is the time left from on to end, in years of 365.25 days.
func remainingYears(on, end date.Date) decimal.Decimal {
	days := on.DaysUntil(end)
	if days < 0 {
		days = 0
	}
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromFloat(365.25))
}

// newBuckets creates the expiration buckets for sorted upper bounds, plus one bucket
// beyond the last bound and one for month-to-month leases.
func newBuckets(bounds []int, zero Money) []Bucket {
	bounds = slices.Clone(bounds)
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)
	var buckets []Bucket
	from := 0
	for _, to := range bounds {
		buckets = append(buckets, Bucket{Label: strconv.Itoa(from) + "-" + strconv.Itoa(to), From: from, To: to, MonthlyRent: zero})
		from = to + 1
	}
	buckets = append(buckets,
		Bucket{Label: strconv.Itoa(from) + "+", From: from, To: -1, MonthlyRent: zero},
		Bucket{Label: "MTM", From: 0, To: -1, MonthToMonth: true, MonthlyRent: zero},
	)
	return buckets
}

// bucketIndex returns the bucket of e's expiration.
func bucketIndex(buckets []Bucket, on date.Date, e Entry) int {
	if e.MonthToMonth() {
		return len(buckets) - 1
	}
	months := max(on.MonthsUntil(e.End), 0)
	for i, b := range buckets[:len(buckets)-1] {
		if b.To < 0 || months <= b.To {
			return i
		}
	}
	return len(buckets) - 2
}

// Totals is the headline of a snapshot, used to compare snapshots.
type Totals struct {
	Leases      int             `json:"leases"`
	MonthlyRent Money           `json:"monthlyRent"`
	LeasedArea  Area            `json:"leasedArea"`
	Occupancy   Percent         `json:"occupancy"`
	WALT        decimal.Decimal `json:"walt"`
}

// Totals returns the snapshot headline figures.
func (s *RentRollSnapshot) Totals() Totals {
	return Totals{
		Leases:      s.Portfolio.Leases,
		MonthlyRent: s.Portfolio.MonthlyRent,
		LeasedArea:  s.Portfolio.LeasedArea,
		Occupancy:   s.Portfolio.Occupancy,
		WALT:        s.Portfolio.WALT,
	}
}

// Entry returns the entry of key.
func (s *RentRollSnapshot) Entry(key LeaseKey) (Entry, bool) {
	i, ok := slices.BinarySearchFunc(s.Entries, key, func(e Entry, k LeaseKey) int { return e.Key.Compare(k) })
	if !ok {
		return Entry{}, false
	}
	return s.Entries[i], true
}
