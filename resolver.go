package rentroll

import (
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/rentroll/date"
)

// ErrMixedLeaseKeys is returned by Resolve when the history passed in spans several leases.
var ErrMixedLeaseKeys = errors.New("amendment history spans several lease keys")

// Exclusion explains why a lease key has no authoritative amendment on a date.
type Exclusion string

const (
	// NoQualifyingAmendment is the single exclusion reason the resolver produces;
	// the Diagnostic tells which filter emptied the candidates.
	NoQualifyingAmendment Exclusion = "no-qualifying-amendment"
)

// Diagnostic details an Exclusion.
type Diagnostic string

const (
	// DiagNoEligible means no amendment has an included status and a non-excluded type.
	DiagNoEligible Diagnostic = "no-eligible-amendment"
	// DiagNotInRange means eligible amendments exist but none covers the as-of date.
	DiagNotInRange Diagnostic = "no-amendment-in-range"
	// DiagNoCharges means amendments cover the date but none has a rent charge on it.
	DiagNoCharges Diagnostic = "no-rent-charges"
)

// Rules selects which amendments may be authoritative.
type Rules struct {
	IncludedStatuses []Status        `yaml:"included_statuses" validate:"min=1"`
	ExcludedTypes    []AmendmentType `yaml:"excluded_types"`
}

// DefaultRules includes Activated and Superseded amendments and excludes the types that
// never carry an executed rent schedule.
func DefaultRules() Rules {
	return Rules{
		IncludedStatuses: []Status{Activated, Superseded},
		ExcludedTypes:    []AmendmentType{Termination, ProposalInDM, Modification},
	}
}

// Eligible reports whether a passes the status and type filters.
func (r Rules) Eligible(a Amendment) bool {
	return slices.Contains(r.IncludedStatuses, a.Status) && !slices.Contains(r.ExcludedTypes, a.Type)
}

// ResolvedLeaseState is the resolver's verdict for one lease key on one date.
// It is produced fresh by each resolution and never modified afterwards.
type ResolvedLeaseState struct {
	Key         LeaseKey
	AsOf        date.Date
	AmendmentID string     // empty when excluded
	Amendment   Amendment  // the selected amendment, zero when excluded
	Exclusion   Exclusion  // empty when an amendment was selected
	Diagnostic  Diagnostic // details the exclusion
	Candidates  int        // amendments left after the charge filter
	TieBreak    bool       // true when several candidates shared the highest sequence
}

// Excluded reports whether no amendment was selected.
func (s ResolvedLeaseState) Excluded() bool { return s.Exclusion != "" }

// ChargePredicate reports whether an amendment has at least one rent charge effective on a date.
type ChargePredicate func(a Amendment, on date.Date) bool

// Resolve selects the authoritative amendment of one lease on date on.
//
// Candidates are the amendments with an included status, a non-excluded type, a term
// covering on (both bounds inclusive, an open end always covers) and a rent charge on
// that date. The candidate with the highest sequence wins, so a later amendment
// without charges never hides an earlier one that has them. Ties on the highest sequence
// prefer Activated over Superseded, then the lowest amendment id.
//
// Missing data never fails: an empty candidate set yields an excluded state. Resolve
// only returns an error when history mixes several lease keys.
func Resolve(history []Amendment, on date.Date, hasCharges ChargePredicate, rules Rules) (ResolvedLeaseState, error) {
	state := ResolvedLeaseState{AsOf: on}
	if len(history) == 0 {
		state.Exclusion, state.Diagnostic = NoQualifyingAmendment, DiagNoEligible
		return state, nil
	}
	state.Key = history[0].Key
	for _, a := range history[1:] {
		if a.Key != state.Key {
			return ResolvedLeaseState{}, fmt.Errorf("%w: %v and %v", ErrMixedLeaseKeys, state.Key, a.Key)
		}
	}

	var eligible, inRange, candidates []Amendment
	for _, a := range history {
		if rules.Eligible(a) {
			eligible = append(eligible, a)
		}
	}
	for _, a := range eligible {
		if a.Term().Contains(on) {
			inRange = append(inRange, a)
		}
	}
	for _, a := range inRange {
		if hasCharges(a, on) {
			candidates = append(candidates, a)
		}
	}
	state.Candidates = len(candidates)

	switch {
	case len(eligible) == 0:
		state.Exclusion, state.Diagnostic = NoQualifyingAmendment, DiagNoEligible
		return state, nil
	case len(inRange) == 0:
		state.Exclusion, state.Diagnostic = NoQualifyingAmendment, DiagNotInRange
		return state, nil
	case len(candidates) == 0:
		state.Exclusion, state.Diagnostic = NoQualifyingAmendment, DiagNoCharges
		return state, nil
	}

	best := candidates[0]
	for _, a := range candidates[1:] {
		if preferred(a, best) {
			best = a
		}
	}
	ties := 0
	for _, a := range candidates {
		if a.Sequence == best.Sequence {
			ties++
		}
	}
	state.TieBreak = ties > 1
	state.AmendmentID = best.ID
	state.Amendment = best
	return state, nil
}

// preferred reports whether a should be selected over b.
func preferred(a, b Amendment) bool {
	if a.Sequence != b.Sequence {
		return a.Sequence > b.Sequence
	}
	if ra, rb := a.Status.rank(), b.Status.rank(); ra != rb {
		return ra < rb
	}
	return compareIDs(a.ID, b.ID) < 0
}
