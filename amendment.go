package rentroll

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/etnz/rentroll/date"
)

// LeaseKey identifies a lease across all its amendments.
type LeaseKey struct {
	Property string `json:"property"`
	Tenant   string `json:"tenant"`
}

func (k LeaseKey) String() string { return k.Property + "/" + k.Tenant }

// Compare orders keys by property, then tenant.
func (k LeaseKey) Compare(o LeaseKey) int {
	if c := strings.Compare(k.Property, o.Property); c != 0 {
		return c
	}
	return strings.Compare(k.Tenant, o.Tenant)
}

// normalizeEnum folds the many spellings found in exports ("Proposal in DM",
// "proposal_in_dm", "ProposalInDM") into a single comparable form.
func normalizeEnum(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// Status is the workflow status of an amendment.
type Status string

const (
	Activated  Status = "Activated"
	Superseded Status = "Superseded"
	InProcess  Status = "InProcess"
	Draft      Status = "Draft"
	Cancelled  Status = "Cancelled"
)

var knownStatuses = []Status{Activated, Superseded, InProcess, Draft, Cancelled}

// ParseStatus returns the canonical Status for s. Unknown statuses are kept verbatim.
func ParseStatus(s string) Status {
	n := normalizeEnum(s)
	for _, k := range knownStatuses {
		if normalizeEnum(string(k)) == n {
			return k
		}
	}
	return Status(strings.TrimSpace(s))
}

// UnmarshalText normalizes the status spelling of configuration and JSON input.
func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

// rank orders statuses for tie-breaking: Activated first, then Superseded, then anything else.
func (s Status) rank() int {
	switch s {
	case Activated:
		return 0
	case Superseded:
		return 1
	default:
		return 2
	}
}

// AmendmentType is the kind of change an amendment records.
type AmendmentType string

const (
	OriginalLease AmendmentType = "OriginalLease"
	Renewal       AmendmentType = "Renewal"
	Expansion     AmendmentType = "Expansion"
	Contraction   AmendmentType = "Contraction"
	Termination   AmendmentType = "Termination"
	Modification  AmendmentType = "Modification"
	ProposalInDM  AmendmentType = "ProposalInDM"
	Assignment    AmendmentType = "Assignment"
	Holdover      AmendmentType = "Holdover"
)

var knownTypes = []AmendmentType{OriginalLease, Renewal, Expansion, Contraction, Termination, Modification, ProposalInDM, Assignment, Holdover}

// ParseAmendmentType returns the canonical AmendmentType for s. Unknown types are kept verbatim.
func ParseAmendmentType(s string) AmendmentType {
	n := normalizeEnum(s)
	switch n {
	case "original", "newlease", "new":
		return OriginalLease
	case "proposal", "proposalindealmanager":
		return ProposalInDM
	}
	for _, k := range knownTypes {
		if normalizeEnum(string(k)) == n {
			return k
		}
	}
	return AmendmentType(strings.TrimSpace(s))
}

// UnmarshalText normalizes the type spelling of configuration and JSON input.
func (t *AmendmentType) UnmarshalText(b []byte) error {
	*t = ParseAmendmentType(string(b))
	return nil
}

// Amendment is one version of a lease. Amendments are immutable facts read from the
// source system; a lease's history is the list of its amendments ordered by Sequence.
type Amendment struct {
	Key        LeaseKey
	ID         string
	Sequence   int
	Status     Status
	Type       AmendmentType
	Start      date.Date
	End        date.Date // zero for a month-to-month lease
	Area       Area
	Signed     date.Date // zero when unknown
	TermMonths int       // 0 when unknown
	Unit       string
}

// Term returns the amendment's date range. Month-to-month amendments have an open range.
func (a Amendment) Term() date.Range { return date.Range{From: a.Start, To: a.End} }

// MonthToMonth reports whether the amendment has no fixed end date.
func (a Amendment) MonthToMonth() bool { return a.End.IsZero() }

// compareIDs orders amendment ids numerically when both are numbers, lexically otherwise.
func compareIDs(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}

// compareHistory orders amendments of a lease: by sequence, then start date, then id.
func compareHistory(a, b Amendment) int {
	if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
		return c
	}
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return compareIDs(a.ID, b.ID)
}
