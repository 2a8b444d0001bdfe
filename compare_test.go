package rentroll

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompare(t *testing.T) {
	book := testBook()
	from, err := Run(context.Background(), book, D("2024-06-30"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	to, err := Run(context.Background(), book, D("2025-03-31"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	c := Compare(from.Snapshot, to.Snapshot)
	if c.Unchanged() {
		t.Fatal("Unchanged() = true across the renewals")
	}
	if c.From != D("2024-06-30") || c.To != D("2025-03-31") {
		t.Errorf("dates = %v..%v", c.From, c.To)
	}
	// every renewal raised the rent by 10%, P3/T3 left the roll.
	if !c.MonthlyRentDelta.Equal(USD(-300)) {
		t.Errorf("MonthlyRentDelta = %v, want -300", c.MonthlyRentDelta)
	}
	if !c.LeasedAreaDelta.Equal(A(-300)) {
		t.Errorf("LeasedAreaDelta = %v, want -300", c.LeasedAreaDelta)
	}
	if diff := cmp.Diff([]LeaseKey{{"P3", "T3"}}, c.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}
	if len(c.Added) != 0 {
		t.Errorf("Added = %v, want none", c.Added)
	}
	if len(c.Changed) != 11 {
		t.Fatalf("Changed %d leases, want 11", len(c.Changed))
	}
	want := LeaseChange{Key: LeaseKey{"P1", "T2"}, FromAmendmentID: "120", ToAmendmentID: "121", RentDelta: USD(200), AreaDelta: A(0)}
	if diff := cmp.Diff(want, c.Changed[1]); diff != "" {
		t.Errorf("Changed[1] mismatch (-want +got):\n%s", diff)
	}
	if c.FromTotals.Leases != 12 || c.ToTotals.Leases != 11 {
		t.Errorf("lease counts %d -> %d, want 12 -> 11", c.FromTotals.Leases, c.ToTotals.Leases)
	}
}

func TestCompare_Added(t *testing.T) {
	opts := DefaultSnapshotOptions()
	a := &RentRollSnapshot{AsOf: D("2025-01-01"), Entries: testEntries()[:1]}
	a.Properties, a.Portfolio = Summarize(a.AsOf, a.Entries, nil, opts)
	b := &RentRollSnapshot{AsOf: D("2025-02-01"), Entries: testEntries()}
	b.Properties, b.Portfolio = Summarize(b.AsOf, b.Entries, nil, opts)

	c := Compare(a, b)
	if diff := cmp.Diff([]LeaseKey{{"P1", "B"}, {"P2", "C"}}, c.Added); diff != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", diff)
	}
	if len(c.Removed)+len(c.Changed) != 0 {
		t.Errorf("comparison = %+v", c)
	}
	if !c.MonthlyRentDelta.Equal(USD(4000)) {
		t.Errorf("MonthlyRentDelta = %v, want 4000", c.MonthlyRentDelta)
	}
	if c := Compare(b, b); !c.Unchanged() || !c.WALTDelta.IsZero() {
		t.Errorf("self comparison = %+v", c)
	}
}
