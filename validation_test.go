package rentroll

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func validationSnapshot() *RentRollSnapshot {
	s := &RentRollSnapshot{
		AsOf: D("2025-03-31"),
		Entries: []Entry{
			{Key: LeaseKey{"P1", "A"}, PropertyName: "The Plaza", Unit: "100", Area: A(1000), MonthlyRent: USD(1000)},
			{Key: LeaseKey{"P1", "B"}, PropertyName: "The Plaza", Unit: "200", Area: A(500), MonthlyRent: USD(2000)},
			{Key: LeaseKey{"P2", "C"}, PropertyName: "Tower", Unit: "0300", Area: A(800), MonthlyRent: USD(3000)},
			{Key: LeaseKey{"P2", "D"}, PropertyName: "Tower", Unit: "400", Area: A(700), MonthlyRent: USD(4000)},
		},
	}
	s.Properties, s.Portfolio = Summarize(s.AsOf, s.Entries, nil, DefaultSnapshotOptions())
	return s
}

// byKey returns reference records matching the snapshot keys, with the given rents.
func byKey(rents ...float64) []ReferenceRecord {
	keys := []LeaseKey{{"P1", "A"}, {"P1", "B"}, {"P2", "C"}, {"P2", "D"}}
	areas := []int{1000, 500, 800, 700}
	var refs []ReferenceRecord
	for i, r := range rents {
		refs = append(refs, ReferenceRecord{Key: keys[i], MonthlyRent: M(r, "USD"), Area: A(areas[i])})
	}
	return refs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		reference []ReferenceRecord
		opts      func(*ValidationOptions)
		status    ValidationStatus
		accuracy  float64
		matched   int
		secondary int
		overlap   Percent
	}{
		{
			name:      "identical",
			reference: byKey(1000, 2000, 3000, 4000),
			status:    Pass,
			accuracy:  100,
			matched:   4,
			overlap:   100,
		},
		{
			name:      "within the tolerance band",
			reference: byKey(1000, 2000, 3000, 4400), // 1 - 400/10400
			status:    Warn,
			accuracy:  96.1538,
			matched:   4,
			overlap:   100,
			opts:      func(o *ValidationOptions) { o.TargetAccuracy = 97 },
		},
		{
			name:      "warn",
			reference: byKey(1000, 2000, 3000, 4700), // 1 - 700/10700
			status:    Warn,
			accuracy:  93.4579,
			matched:   4,
			overlap:   100,
		},
		{
			name:      "fail",
			reference: byKey(1000, 2000, 3000, 2000), // 1 - 2000/8000
			status:    Fail,
			accuracy:  75,
			matched:   4,
			overlap:   100,
		},
		{
			name:      "overlap at the floor",
			reference: byKey(1000, 2000),
			status:    Pass,
			accuracy:  100,
			matched:   2,
			overlap:   50,
		},
		{
			name: "overlap under the floor",
			reference: append(byKey(1000),
				ReferenceRecord{Key: LeaseKey{"P9", "X"}, MonthlyRent: USD(1)},
				ReferenceRecord{Key: LeaseKey{"P9", "Y"}, MonthlyRent: USD(1)},
			),
			status:  ScopeMismatch,
			matched: 1,
			overlap: 100.0 / 6,
		},
		{
			name: "no common lease",
			reference: []ReferenceRecord{
				{Key: LeaseKey{"P9", "X"}, MonthlyRent: USD(1000)},
			},
			status:  ScopeMismatch,
			overlap: 0,
		},
		{
			name: "property name and unit",
			reference: []ReferenceRecord{
				{PropertyName: "the plaza", Unit: "Suite 100", MonthlyRent: USD(1000), Area: A(1000)},
				{PropertyName: "TOWER", Unit: "300", MonthlyRent: USD(3000), Area: A(800)},
				{Key: LeaseKey{Property: "P2"}, Unit: "Unit 400", MonthlyRent: USD(4000), Area: A(700)},
				{PropertyName: "Plaza Bldg", Unit: "ste 200", MonthlyRent: USD(2000), Area: A(500)},
			},
			opts:      func(o *ValidationOptions) { o.PropertyAliases = map[string]string{"Plaza Bldg": "The Plaza"} },
			status:    Pass,
			accuracy:  100,
			matched:   4,
			secondary: 4,
			overlap:   100,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultValidationOptions()
			if tc.opts != nil {
				tc.opts(&opts)
			}
			got := Validate(validationSnapshot(), tc.reference, opts)
			if got.Status != tc.status {
				t.Errorf("Status = %s, want %s", got.Status, tc.status)
			}
			if got.MatchedCount != tc.matched || got.MatchedBySecondary != tc.secondary {
				t.Errorf("matched = %d (%d secondary), want %d (%d)", got.MatchedCount, got.MatchedBySecondary, tc.matched, tc.secondary)
			}
			if !got.ScopeOverlapPct.Equal(tc.overlap) {
				t.Errorf("ScopeOverlapPct = %v, want %v", got.ScopeOverlapPct, tc.overlap)
			}
			if tc.status == ScopeMismatch {
				if got.AccuracyScore != nil || got.AreaAccuracy != nil {
					t.Errorf("accuracy = %v / %v, want none on a scope mismatch", got.AccuracyScore, got.AreaAccuracy)
				}
				return
			}
			if got.AccuracyScore == nil || !got.AccuracyScore.Equal(Percent(tc.accuracy)) {
				t.Errorf("AccuracyScore = %v, want %v", got.AccuracyScore, tc.accuracy)
			}
		})
	}
}

func TestValidate_FieldDeltas(t *testing.T) {
	refs := byKey(1100, 2500, 3000, 4050)
	refs[2].Area = A(850)
	refs = append(refs, ReferenceRecord{PropertyName: "Annex", Unit: "1", MonthlyRent: USD(10)})

	got := Validate(validationSnapshot(), refs, DefaultValidationOptions())

	var keys []LeaseKey
	for _, d := range got.FieldDeltas {
		keys = append(keys, d.Key)
	}
	want := []LeaseKey{{"P1", "B"}, {"P1", "A"}, {"P2", "D"}, {"P2", "C"}}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("field deltas order mismatch (-want +got):\n%s", diff)
	}
	if d := got.FieldDeltas[0]; !d.RentDelta.Equal(USD(-500)) || d.MatchedBy != "key" {
		t.Errorf("largest delta = %+v", d)
	}
	if d := got.FieldDeltas[3]; !d.AreaDelta.Equal(A(-50)) || !d.RentDelta.IsZero() {
		t.Errorf("area delta = %+v", d)
	}
	if !got.RentGap.Equal(USD(-650)) || !got.ReferenceRent.Equal(USD(10650)) || !got.SnapshotMatchedRent.Equal(USD(10000)) {
		t.Errorf("rents = %v snapshot, %v reference, %v gap", got.SnapshotMatchedRent, got.ReferenceRent, got.RentGap)
	}
	if diff := cmp.Diff([]string{"Annex #1"}, got.UnmatchedReference); diff != "" {
		t.Errorf("UnmatchedReference mismatch (-want +got):\n%s", diff)
	}
	if got.UnmatchedCount != 1 || got.Status != Warn {
		t.Errorf("unmatched = %d, status = %s", got.UnmatchedCount, got.Status)
	}
	// 1 - 50/3050
	if got.AreaAccuracy == nil || !got.AreaAccuracy.Equal(Percent(100-5000.0/3050)) {
		t.Errorf("AreaAccuracy = %v", got.AreaAccuracy)
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		"Suite 0100": "100",
		"STE. 100":   "100",
		"unit 7B":    "7b",
		" 100 ":      "100",
		"Space 12":   "12",
	}
	for in, want := range tests {
		if got := normalizeUnit(in); got != want {
			t.Errorf("normalizeUnit(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name           string
		errSum, refSum float64
		want           Percent
	}{
		{"exact", 0, 1000, 100},
		{"partial", 250, 1000, 75},
		{"errors above the reference", 3000, 1000, 0},
		{"no reference and no error", 0, 0, 100},
		{"no reference", 10, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := accuracy(decimal.NewFromFloat(tc.errSum), decimal.NewFromFloat(tc.refSum))
			if !got.Equal(tc.want) {
				t.Errorf("accuracy(%v, %v) = %v, want %v", tc.errSum, tc.refSum, got, tc.want)
			}
		})
	}
}
