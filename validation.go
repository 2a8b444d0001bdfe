package rentroll

import (
	"slices"
	"strings"
	"unicode"

	"github.com/etnz/rentroll/date"
	"github.com/shopspring/decimal"
)

// ValidationStatus is the outcome of a validation.
type ValidationStatus string

const (
	Pass ValidationStatus = "Pass"
	Warn ValidationStatus = "Warn"
	Fail ValidationStatus = "Fail"
	// ScopeMismatch means the reference describes another population of leases; no
	// accuracy is computed.
	ScopeMismatch ValidationStatus = "ScopeMismatch"
)

// ReferenceRecord is one lease of an independently sourced rent roll.
// Key may be empty or partial when the reference system uses other identifiers.
type ReferenceRecord struct {
	Key          LeaseKey `json:"key"`
	PropertyName string   `json:"propertyName,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	Tenant       string   `json:"tenant,omitempty"`
	MonthlyRent  Money    `json:"monthlyRent"`
	Area         Area     `json:"area"`
	Line         int      `json:"line,omitempty"` // row in the reference export
}

// label names the record for reports.
func (r ReferenceRecord) label() string {
	if r.Key != (LeaseKey{}) {
		return r.Key.String()
	}
	return r.PropertyName + " #" + r.Unit
}

// ValidationOptions configures Validate. All percentages are 0-100.
type ValidationOptions struct {
	ScopeOverlapFloor Percent `yaml:"scope_overlap_floor" validate:"gte=0,lte=100"`
	TargetAccuracy    Percent `yaml:"target_accuracy" validate:"gte=0,lte=100"`
	// ToleranceBand is the width, below the target, of the Warn status.
	ToleranceBand Percent `yaml:"tolerance_band" validate:"gte=0,lte=100"`
	// RentTolerance and AreaTolerance are the absolute per lease differences ignored
	// when listing field deltas.
	RentTolerance float64 `yaml:"rent_tolerance" validate:"gte=0"`
	AreaTolerance float64 `yaml:"area_tolerance" validate:"gte=0"`
	// PropertyAliases maps reference property names to snapshot property names.
	PropertyAliases map[string]string `yaml:"property_aliases"`
}

// DefaultValidationOptions requires 50% scope overlap and targets 95% accuracy with a
// 5 points warning band.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		ScopeOverlapFloor: 50,
		TargetAccuracy:    95,
		ToleranceBand:     5,
		RentTolerance:     1,
		AreaTolerance:     1,
	}
}

// FieldDelta compares one lease across the snapshot and the reference.
type FieldDelta struct {
	Key           LeaseKey `json:"key"`
	Reference     string   `json:"reference"`
	MatchedBy     string   `json:"matchedBy"` // "key" or "name-unit"
	SnapshotRent  Money    `json:"snapshotRent"`
	ReferenceRent Money    `json:"referenceRent"`
	RentDelta     Money    `json:"rentDelta"`
	SnapshotArea  Area     `json:"snapshotArea"`
	ReferenceArea Area     `json:"referenceArea"`
	AreaDelta     Area     `json:"areaDelta"`
}

// ValidationResult is the comparison of a snapshot with a reference dataset.
type ValidationResult struct {
	AsOf                date.Date        `json:"asOf"`
	Status              ValidationStatus `json:"status"`
	MatchedCount        int              `json:"matchedCount"`
	MatchedBySecondary  int              `json:"matchedBySecondary"`
	UnmatchedCount      int              `json:"unmatchedCount"`
	UnmatchedSnapshot   []LeaseKey       `json:"unmatchedSnapshot,omitempty"`
	UnmatchedReference  []string         `json:"unmatchedReference,omitempty"`
	ScopeOverlapPct     Percent          `json:"scopeOverlapPct"`
	AccuracyScore       *Percent         `json:"accuracyScore,omitempty"` // nil on scope mismatch
	AreaAccuracy        *Percent         `json:"areaAccuracy,omitempty"`
	SnapshotMatchedRent Money            `json:"snapshotMatchedRent"`
	ReferenceRent       Money            `json:"referenceMatchedRent"`
	RentGap             Money            `json:"rentGap"` // snapshot minus reference, over matched leases
	FieldDeltas         []FieldDelta     `json:"fieldDeltas,omitempty"`
}

// Validate compares snapshot with reference.
//
// Records are joined on the lease key, then on the normalized property name and unit for
// the records left over. When the matched keys are less than ScopeOverlapFloor percent of
// the union of both key sets, the datasets describe different populations: the result is
// ScopeMismatch and carries no accuracy. Otherwise the rent accuracy is
// 1 - sum|delta| / sum(reference rent) over matched leases, and the status is Pass at or
// above the target, Warn within the tolerance band below it, Fail under the band.
func Validate(snapshot *RentRollSnapshot, reference []ReferenceRecord, opts ValidationOptions) ValidationResult {
	currency := snapshot.Portfolio.Currency
	res := ValidationResult{
		AsOf:                snapshot.AsOf,
		SnapshotMatchedRent: M(0, currency),
		ReferenceRent:       M(0, currency),
		RentGap:             M(0, currency),
	}

	type match struct {
		entry Entry
		ref   ReferenceRecord
		by    string
	}
	var matches []match
	matched := make([]bool, len(snapshot.Entries))
	index := make(map[LeaseKey]int, len(snapshot.Entries))
	for i, e := range snapshot.Entries {
		index[e.Key] = i
	}

	var leftover []ReferenceRecord
	for _, r := range reference {
		if i, ok := index[r.Key]; ok && !matched[i] {
			matched[i] = true
			matches = append(matches, match{snapshot.Entries[i], r, "key"})
			continue
		}
		leftover = append(leftover, r)
	}

	// secondary join on (property, unit) among entries still unmatched.
	secondary := make(map[string][]int)
	for i, e := range snapshot.Entries {
		if matched[i] || e.Unit == "" {
			continue
		}
		for _, name := range uniqueNonEmpty(e.PropertyName, e.Key.Property) {
			k := secondaryKey(name, e.Unit)
			secondary[k] = append(secondary[k], i)
		}
	}
	var unmatchedRef []ReferenceRecord
	for _, r := range leftover {
		name := r.PropertyName
		if alias, ok := opts.PropertyAliases[name]; ok {
			name = alias
		}
		found := -1
		if r.Unit != "" {
			for _, n := range uniqueNonEmpty(name, r.Key.Property) {
				for _, i := range secondary[secondaryKey(n, r.Unit)] {
					if !matched[i] {
						found = i
						break
					}
				}
				if found >= 0 {
					break
				}
			}
		}
		if found < 0 {
			unmatchedRef = append(unmatchedRef, r)
			continue
		}
		matched[found] = true
		matches = append(matches, match{snapshot.Entries[found], r, "name-unit"})
		res.MatchedBySecondary++
	}

	for i, e := range snapshot.Entries {
		if !matched[i] {
			res.UnmatchedSnapshot = append(res.UnmatchedSnapshot, e.Key)
		}
	}
	for _, r := range unmatchedRef {
		res.UnmatchedReference = append(res.UnmatchedReference, r.label())
	}
	res.MatchedCount = len(matches)
	res.UnmatchedCount = len(res.UnmatchedSnapshot) + len(unmatchedRef)
	res.ScopeOverlapPct = ratio(res.MatchedCount, res.MatchedCount+res.UnmatchedCount)

	if res.MatchedCount == 0 || res.ScopeOverlapPct < opts.ScopeOverlapFloor {
		res.Status = ScopeMismatch
		return res
	}

	var absRent, refRent, absArea, refArea decimal.Decimal
	rentTol := decimal.NewFromFloat(opts.RentTolerance)
	areaTol := decimal.NewFromFloat(opts.AreaTolerance)
	for _, m := range matches {
		refMoney := m.ref.MonthlyRent.WithCurrency(currency)
		d := FieldDelta{
			Key:           m.entry.Key,
			Reference:     m.ref.label(),
			MatchedBy:     m.by,
			SnapshotRent:  m.entry.MonthlyRent,
			ReferenceRent: refMoney,
			RentDelta:     m.entry.MonthlyRent.Sub(refMoney),
			SnapshotArea:  m.entry.Area,
			ReferenceArea: m.ref.Area,
			AreaDelta:     m.entry.Area.Sub(m.ref.Area),
		}
		res.SnapshotMatchedRent = res.SnapshotMatchedRent.Add(d.SnapshotRent)
		res.ReferenceRent = res.ReferenceRent.Add(d.ReferenceRent)
		res.RentGap = res.RentGap.Add(d.RentDelta)
		absRent = absRent.Add(d.RentDelta.Decimal().Abs())
		refRent = refRent.Add(d.ReferenceRent.Decimal().Abs())
		absArea = absArea.Add(d.AreaDelta.Decimal().Abs())
		refArea = refArea.Add(d.ReferenceArea.Decimal().Abs())
		if d.RentDelta.Decimal().Abs().GreaterThan(rentTol) || d.AreaDelta.Decimal().Abs().GreaterThan(areaTol) {
			res.FieldDeltas = append(res.FieldDeltas, d)
		}
	}
	slices.SortStableFunc(res.FieldDeltas, func(a, b FieldDelta) int {
		if c := b.RentDelta.Decimal().Abs().Cmp(a.RentDelta.Decimal().Abs()); c != 0 {
			return c
		}
		return a.Key.Compare(b.Key)
	})

	rentAcc := accuracy(absRent, refRent)
	areaAcc := accuracy(absArea, refArea)
	res.AccuracyScore, res.AreaAccuracy = &rentAcc, &areaAcc
	switch {
	case rentAcc >= opts.TargetAccuracy:
		res.Status = Pass
	case rentAcc >= opts.TargetAccuracy-opts.ToleranceBand:
		res.Status = Warn
	default:
		res.Status = Fail
	}
	return res
}

// accuracy is 1 - errors/reference in percent, clamped to [0, 100].
// A zero reference is fully accurate only when there is no error.
func accuracy(errSum, reference decimal.Decimal) Percent {
	if !reference.IsPositive() {
		if errSum.IsZero() {
			return 100
		}
		return 0
	}
	acc := decimal.NewFromInt(1).Sub(errSum.Div(reference)).Mul(decimal.NewFromInt(100))
	return Percent(min(max(acc.InexactFloat64(), 0), 100))
}

// secondaryKey joins a normalized property name and unit.
func secondaryKey(property, unit string) string {
	return normalizeName(property) + "|" + normalizeUnit(unit)
}

// normalizeName lower-cases s and keeps letters and digits separated by single spaces,
// so "The Plaza, Bldg. A" and "the plaza bldg a" agree.
func normalizeName(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

var unitPrefixes = []string{"suite ", "ste ", "unit ", "space "}

// normalizeUnit drops unit prefixes and leading zeros: "Suite 0100" and "100" agree.
func normalizeUnit(s string) string {
	n := normalizeName(s)
	for _, p := range unitPrefixes {
		n = strings.TrimPrefix(n, p)
	}
	n = strings.TrimLeft(n, "0")
	return n
}

func uniqueNonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
