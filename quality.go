package rentroll

import (
	"cmp"
	"slices"
)

// Severity bands quality findings for alerting.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Issue kinds reported by Score.
const (
	IssueDuplicateActive   = "duplicate-active"
	IssueMissingCharges    = "missing-charges"
	IssueNonMonotonicStart = "non-monotonic-start"
	IssueSequenceGap       = "sequence-gap"
	IssueDuplicateSequence = "duplicate-sequence"
	IssueEndBeforeStart    = "end-before-start"
	IssueMissingStart      = "missing-start"
	IssueNonPositiveArea   = "non-positive-area"
	IssueTermMismatch      = "term-mismatch"
	IssueOrphanedCharge    = "orphaned-charge"
)

// QualityWeights weights the three rates of the composite score.
type QualityWeights struct {
	Coverage           float64 `yaml:"coverage" validate:"gte=0"`
	Compliance         float64 `yaml:"compliance" validate:"gte=0"`
	ActiveDistribution float64 `yaml:"active_distribution" validate:"gte=0"`
}

// QualityBands are the minimum composite scores of the low, medium and high bands.
// Anything below High is critical.
type QualityBands struct {
	Low    Percent `yaml:"low"`
	Medium Percent `yaml:"medium"`
	High   Percent `yaml:"high"`
}

// QualityOptions configures Score.
type QualityOptions struct {
	Weights QualityWeights `yaml:"weights"`
	Bands   QualityBands   `yaml:"bands"`
}

// DefaultQualityOptions weights charge coverage 50%, rule compliance 30% and active
// status distribution 20%.
func DefaultQualityOptions() QualityOptions {
	return QualityOptions{
		Weights: QualityWeights{Coverage: 0.5, Compliance: 0.3, ActiveDistribution: 0.2},
		Bands:   QualityBands{Low: 95, Medium: 85, High: 70},
	}
}

// Band returns the severity of a composite score.
func (b QualityBands) Band(score Percent) Severity {
	switch {
	case score >= b.Low:
		return SeverityLow
	case score >= b.Medium:
		return SeverityMedium
	case score >= b.High:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// QualityIssue is one defect found in the amendment log.
type QualityIssue struct {
	Kind        string   `json:"kind"`
	Severity    Severity `json:"severity"`
	Key         LeaseKey `json:"key"` // zero for a charge whose amendment is unknown
	AmendmentID string   `json:"amendmentId,omitempty"`
}

// Lease names the lease of the issue, "(unknown)" when there is none.
func (i QualityIssue) Lease() string {
	if i.Key == (LeaseKey{}) {
		return "(unknown)"
	}
	return i.Key.String()
}

// MarshalJSON omits the key of issues that belong to no lease.
func (i QualityIssue) MarshalJSON() ([]byte, error) {
	return jsonObject{
		field("kind", i.Kind),
		field("severity", i.Severity),
		optional("key", i.Key),
		optional("amendmentId", i.AmendmentID),
	}.MarshalJSON()
}

// QualityReport describes the internal consistency of an amendment log. It does not
// depend on any as-of date.
type QualityReport struct {
	LeaseKeys  int `json:"leaseKeys"`
	Amendments int `json:"amendments"`
	Eligible   int `json:"eligible"`
	Charges    int `json:"charges"`

	DuplicateActiveCount      int              `json:"duplicateActiveCount"` // lease keys with several Activated amendments
	DuplicateActiveAmendments int              `json:"duplicateActiveAmendments"`
	MissingCharges            map[Severity]int `json:"missingCharges"`
	MissingChargesCount       int              `json:"missingChargesCount"`
	SequenceAnomalyCount      int              `json:"sequenceAnomalyCount"`
	SequenceAnomalies         map[string]int   `json:"sequenceAnomalies"`
	RuleViolations            map[string]int   `json:"ruleViolations"`
	OrphanedCharges           int              `json:"orphanedCharges"`

	ChargeCoverage     Percent  `json:"chargeCoverage"`
	RuleCompliance     Percent  `json:"ruleCompliance"`
	ActiveDistribution Percent  `json:"activeDistribution"`
	CompositeScore     Percent  `json:"compositeScore"`
	Band               Severity `json:"band"`

	Issues []QualityIssue `json:"issues,omitempty"`
}

// Score scans the whole amendment and charge logs for consistency defects.
//
// Duplicate actives, missing charges, sequence anomalies, business rule violations and
// orphaned charges are counted, never fatal. The composite score is the weighted average
// of the charge coverage rate, the rule compliance rate and the share of leases with
// exactly one Activated amendment.
func Score(amendments []Amendment, charges []Charge, rules Rules, classes Classification, opts QualityOptions) QualityReport {
	r := QualityReport{
		Amendments:        len(amendments),
		Charges:           len(charges),
		MissingCharges:    map[Severity]int{},
		SequenceAnomalies: map[string]int{},
		RuleViolations:    map[string]int{},
	}

	known := make(map[string]LeaseKey, len(amendments))
	for _, a := range amendments {
		known[a.ID] = a.Key
	}
	rentLines := make(map[string]int)
	for _, c := range charges {
		key, ok := known[c.AmendmentID]
		if !ok {
			r.OrphanedCharges++
			r.Issues = append(r.Issues, QualityIssue{Kind: IssueOrphanedCharge, Severity: SeverityLow, Key: key, AmendmentID: c.AmendmentID})
			continue
		}
		if classes.IsRent(c.Code) {
			rentLines[c.AmendmentID]++
		}
	}

	histories := groupByKey(amendments)
	r.LeaseKeys = len(histories)
	covered, compliant, singleActive := 0, 0, 0
	for _, h := range histories {
		key := h[0].Key
		issue := func(kind string, sev Severity, a Amendment) {
			r.Issues = append(r.Issues, QualityIssue{Kind: kind, Severity: sev, Key: key, AmendmentID: a.ID})
		}

		actives := 0
		for _, a := range h {
			if a.Status == Activated {
				actives++
			}
		}
		switch {
		case actives == 1:
			singleActive++
		case actives > 1:
			r.DuplicateActiveCount++
			r.DuplicateActiveAmendments += actives - 1
			for _, a := range h {
				if a.Status == Activated {
					issue(IssueDuplicateActive, SeverityHigh, a)
				}
			}
		}

		latest := -1 // highest eligible sequence
		for _, a := range h {
			if rules.Eligible(a) {
				latest = a.Sequence
			}
		}
		for _, a := range h {
			if !rules.Eligible(a) {
				continue
			}
			r.Eligible++
			if rentLines[a.ID] > 0 {
				covered++
			} else {
				sev := SeverityLow
				switch {
				case a.Sequence == latest:
					sev = SeverityCritical
				case a.Status == Activated:
					sev = SeverityHigh
				}
				r.MissingCharges[sev]++
				r.MissingChargesCount++
				issue(IssueMissingCharges, sev, a)
			}
			violations := ruleViolations(a)
			if len(violations) == 0 {
				compliant++
			}
			for _, v := range violations {
				r.RuleViolations[v]++
				issue(v, SeverityMedium, a)
			}
		}

		for i := 1; i < len(h); i++ {
			prev, a := h[i-1], h[i]
			switch {
			case a.Sequence == prev.Sequence:
				r.SequenceAnomalies[IssueDuplicateSequence]++
				issue(IssueDuplicateSequence, SeverityMedium, a)
			case a.Sequence > prev.Sequence+1:
				r.SequenceAnomalies[IssueSequenceGap]++
				issue(IssueSequenceGap, SeverityLow, a)
			}
			if !a.Start.IsZero() && !prev.Start.IsZero() && a.Start.Before(prev.Start) {
				r.SequenceAnomalies[IssueNonMonotonicStart]++
				issue(IssueNonMonotonicStart, SeverityMedium, a)
			}
		}
	}
	for _, n := range r.SequenceAnomalies {
		r.SequenceAnomalyCount += n
	}

	r.ChargeCoverage = rateOrFull(covered, r.Eligible)
	r.RuleCompliance = rateOrFull(compliant, r.Eligible)
	r.ActiveDistribution = rateOrFull(singleActive, r.LeaseKeys)
	w := opts.Weights
	if total := w.Coverage + w.Compliance + w.ActiveDistribution; total > 0 {
		r.CompositeScore = Percent((w.Coverage*float64(r.ChargeCoverage) +
			w.Compliance*float64(r.RuleCompliance) +
			w.ActiveDistribution*float64(r.ActiveDistribution)) / total)
	}
	r.Band = opts.Bands.Band(r.CompositeScore)

	// issues without a lease come last.
	slices.SortStableFunc(r.Issues, func(a, b QualityIssue) int {
		if na, nb := a.Key == (LeaseKey{}), b.Key == (LeaseKey{}); na != nb {
			if na {
				return 1
			}
			return -1
		}
		if c := a.Key.Compare(b.Key); c != 0 {
			return c
		}
		if c := compareIDs(a.AmendmentID, b.AmendmentID); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return r
}

// rateOrFull is num/den in percent, 100 when there is nothing to measure.
func rateOrFull(num, den int) Percent {
	if den == 0 {
		return 100
	}
	return ratio(num, den)
}

// ruleViolations returns the business rules an eligible amendment breaks.
func ruleViolations(a Amendment) []string {
	var v []string
	if a.Start.IsZero() {
		v = append(v, IssueMissingStart)
	} else if !a.Term().Valid() {
		v = append(v, IssueEndBeforeStart)
	}
	if !a.Area.IsPositive() {
		v = append(v, IssueNonPositiveArea)
	}
	if a.TermMonths > 0 && !a.Start.IsZero() && !a.End.IsZero() {
		months := a.Start.MonthsUntil(a.End.Add(1))
		if d := months - a.TermMonths; d > 1 || d < -1 {
			v = append(v, IssueTermMismatch)
		}
	}
	return v
}

// groupByKey groups amendments by lease key. Groups are sorted by key and each group
// is in history order.
func groupByKey(amendments []Amendment) [][]Amendment {
	byKey := make(map[LeaseKey][]Amendment)
	for _, a := range amendments {
		byKey[a.Key] = append(byKey[a.Key], a)
	}
	groups := make([][]Amendment, 0, len(byKey))
	for _, h := range byKey {
		slices.SortFunc(h, compareHistory)
		groups = append(groups, h)
	}
	slices.SortFunc(groups, func(a, b []Amendment) int { return a[0].Key.Compare(b[0].Key) })
	return groups
}
