package rentroll

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// qualityLog returns an amendment log with one defect of each kind.
func qualityLog() ([]Amendment, []Charge) {
	renewal := amend("P1", "T2", "4", 1, Activated, Renewal, "2023-01-01", "2025-12-31")
	renewal.TermMonths = 12
	expansion := amend("P1", "T3", "6", 2, Activated, Expansion, "2021-06-01", "2021-01-01")
	noStart := amend("P2", "T1", "7", 0, Superseded, OriginalLease, "", "2022-12-31")
	noStart.Area = A(0)
	original := amend("P1", "T1", "1", 0, Superseded, OriginalLease, "2020-01-01", "2022-12-31")
	original.TermMonths = 36

	amendments := []Amendment{
		original,
		amend("P1", "T1", "2", 1, Activated, Renewal, "2023-01-01", "2025-12-31"),
		amend("P1", "T2", "3", 0, Activated, OriginalLease, "2020-01-01", "2022-12-31"),
		renewal,
		amend("P1", "T3", "5", 0, Superseded, OriginalLease, "2022-01-01", "2024-12-31"),
		expansion,
		noStart,
		amend("P2", "T1", "8", 0, Activated, Renewal, "2020-01-01", ""),
		amend("P2", "T1", "9", 1, Draft, Renewal, "2023-01-01", ""),
	}
	charges := []Charge{
		rent("2", 100, Monthly, "2023-01-01", ""),
		rent("3", 100, Monthly, "2020-01-01", ""),
		{AmendmentID: "4", Code: "CAM", Amount: USD(10), From: D("2023-01-01")},
		rent("5", 100, Monthly, "2022-01-01", ""),
		rent("6", 100, Monthly, "2021-06-01", ""),
		rent("7", 100, Monthly, "2020-01-01", ""),
		rent("8", 100, Monthly, "2020-01-01", ""),
		rent("404", 100, Monthly, "2020-01-01", ""),
	}
	return amendments, charges
}

func TestScore(t *testing.T) {
	amendments, charges := qualityLog()
	r := Score(amendments, charges, DefaultRules(), DefaultClassification(), DefaultQualityOptions())

	if r.LeaseKeys != 4 || r.Amendments != 9 || r.Eligible != 8 || r.Charges != 8 {
		t.Errorf("counts = %d keys, %d amendments, %d eligible, %d charges", r.LeaseKeys, r.Amendments, r.Eligible, r.Charges)
	}
	if r.DuplicateActiveCount != 1 || r.DuplicateActiveAmendments != 1 {
		t.Errorf("duplicate actives = %d keys, %d amendments", r.DuplicateActiveCount, r.DuplicateActiveAmendments)
	}
	// "1" is superseded by a later eligible amendment, "4" is the latest one.
	if diff := cmp.Diff(map[Severity]int{SeverityLow: 1, SeverityCritical: 1}, r.MissingCharges); diff != "" {
		t.Errorf("MissingCharges mismatch (-want +got):\n%s", diff)
	}
	wantSeq := map[string]int{IssueSequenceGap: 1, IssueNonMonotonicStart: 1, IssueDuplicateSequence: 1}
	if diff := cmp.Diff(wantSeq, r.SequenceAnomalies); diff != "" {
		t.Errorf("SequenceAnomalies mismatch (-want +got):\n%s", diff)
	}
	if r.SequenceAnomalyCount != 3 {
		t.Errorf("SequenceAnomalyCount = %d, want 3", r.SequenceAnomalyCount)
	}
	wantRules := map[string]int{IssueTermMismatch: 1, IssueEndBeforeStart: 1, IssueMissingStart: 1, IssueNonPositiveArea: 1}
	if diff := cmp.Diff(wantRules, r.RuleViolations); diff != "" {
		t.Errorf("RuleViolations mismatch (-want +got):\n%s", diff)
	}
	if r.OrphanedCharges != 1 {
		t.Errorf("OrphanedCharges = %d, want 1", r.OrphanedCharges)
	}

	rates := []struct {
		name      string
		got, want Percent
	}{
		{"coverage", r.ChargeCoverage, 75},
		{"compliance", r.RuleCompliance, 62.5},
		{"active distribution", r.ActiveDistribution, 75},
		// 0.5*75 + 0.3*62.5 + 0.2*75
		{"composite", r.CompositeScore, 71.25},
	}
	for _, rate := range rates {
		if !rate.got.Equal(rate.want) {
			t.Errorf("%s = %v, want %v", rate.name, rate.got, rate.want)
		}
	}
	if r.Band != SeverityHigh {
		t.Errorf("Band = %q, want %q", r.Band, SeverityHigh)
	}

	var kinds []string
	for _, i := range r.Issues {
		if i.AmendmentID == "6" {
			kinds = append(kinds, i.Kind)
		}
	}
	if diff := cmp.Diff([]string{IssueEndBeforeStart, IssueNonMonotonicStart, IssueSequenceGap}, kinds); diff != "" {
		t.Errorf("issues of amendment 6 mismatch (-want +got):\n%s", diff)
	}
	last := r.Issues[len(r.Issues)-1]
	if last.Kind != IssueOrphanedCharge || last.Lease() != "(unknown)" {
		t.Errorf("last issue = %+v, want the orphaned charge", last)
	}
	b, err := json.Marshal(last)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"kind":"orphaned-charge","severity":"low","amendmentId":"404"}`; string(b) != want {
		t.Errorf("orphan JSON = %s, want %s", b, want)
	}
}

func TestScore_Empty(t *testing.T) {
	r := Score(nil, nil, DefaultRules(), DefaultClassification(), DefaultQualityOptions())
	if !r.CompositeScore.Equal(100) || r.Band != SeverityLow || len(r.Issues) != 0 {
		t.Errorf("empty report = %+v", r)
	}
}

func TestScore_Weights(t *testing.T) {
	amendments, charges := qualityLog()
	opts := DefaultQualityOptions()
	opts.Weights = QualityWeights{Compliance: 1}
	r := Score(amendments, charges, DefaultRules(), DefaultClassification(), opts)
	if !r.CompositeScore.Equal(62.5) || r.Band != SeverityCritical {
		t.Errorf("compliance only score = %v (%s), want 62.5 critical", r.CompositeScore, r.Band)
	}
}

func TestQualityBands_Band(t *testing.T) {
	bands := DefaultQualityOptions().Bands
	tests := []struct {
		score Percent
		want  Severity
	}{
		{100, SeverityLow},
		{95, SeverityLow},
		{94.99, SeverityMedium},
		{85, SeverityMedium},
		{70, SeverityHigh},
		{69.9, SeverityCritical},
		{0, SeverityCritical},
	}
	for _, tc := range tests {
		if got := bands.Band(tc.score); got != tc.want {
			t.Errorf("Band(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
