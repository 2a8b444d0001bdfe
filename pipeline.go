package rentroll

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/rentroll/date"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Book holds the amendment, charge and property logs of one run, grouped for resolution.
// A Book is read-only once built and can be shared by concurrent resolutions.
type Book struct {
	keys       []LeaseKey
	histories  map[LeaseKey][]Amendment
	charges    map[string][]Charge // by amendment id
	amendments []Amendment
	all        []Charge
	properties []Property
	orphans    []Charge
	rejections []Rejection
}

// NewBook groups amendments by lease key and indexes charges by amendment id.
//
// An amendment whose id was already seen is rejected. Charges referencing an unknown
// amendment are kept apart as orphans: they never reach a lease, but the quality
// scorer still counts them.
func NewBook(amendments []Amendment, charges []Charge, properties []Property) *Book {
	b := &Book{
		histories:  make(map[LeaseKey][]Amendment),
		charges:    make(map[string][]Charge),
		properties: slices.Clone(properties),
		all:        slices.Clone(charges),
	}
	seen := make(map[string]bool, len(amendments))
	for i, a := range amendments {
		if seen[a.ID] {
			b.rejections = append(b.rejections, Rejection{
				Source: "amendments",
				Line:   i + 1,
				Reason: fmt.Sprintf("duplicate amendment id %q", a.ID),
			})
			Log.WithFields(logrus.Fields{"lease": a.Key.String(), "amendment": a.ID}).Debug("duplicate amendment id rejected")
			continue
		}
		seen[a.ID] = true
		b.amendments = append(b.amendments, a)
		b.histories[a.Key] = append(b.histories[a.Key], a)
	}
	for k, h := range b.histories {
		slices.SortFunc(h, compareHistory)
		b.keys = append(b.keys, k)
	}
	slices.SortFunc(b.keys, LeaseKey.Compare)

	for _, c := range charges {
		if !seen[c.AmendmentID] {
			b.orphans = append(b.orphans, c)
			Log.WithFields(logrus.Fields{"amendment": c.AmendmentID, "code": c.Code}).Debug("orphaned charge")
			continue
		}
		b.charges[c.AmendmentID] = append(b.charges[c.AmendmentID], c)
	}
	if len(b.orphans) > 0 {
		Log.WithField("count", len(b.orphans)).Warn("charges reference unknown amendments")
	}
	return b
}

// Keys returns the lease keys in order.
func (b *Book) Keys() []LeaseKey { return b.keys }

// History returns the amendments of a lease in history order.
func (b *Book) History(k LeaseKey) []Amendment { return b.histories[k] }

// Charges returns the charge lines of an amendment.
func (b *Book) Charges(amendmentID string) []Charge { return b.charges[amendmentID] }

// Amendments returns every accepted amendment.
func (b *Book) Amendments() []Amendment { return b.amendments }

// AllCharges returns every charge line, orphans included.
func (b *Book) AllCharges() []Charge { return b.all }

// Properties returns the property metadata.
func (b *Book) Properties() []Property { return b.properties }

// Orphans returns the charges that reference no known amendment.
func (b *Book) Orphans() []Charge { return b.orphans }

// Rejections returns the input records dropped while reading or building the book.
func (b *Book) Rejections() []Rejection { return b.rejections }

// AddRejections records rejections found by a reader.
func (b *Book) AddRejections(r ...Rejection) { b.rejections = append(b.rejections, r...) }

// Result is the output of a pipeline run.
type Result struct {
	AsOf       date.Date
	Resolved   []ResolvedLeaseState // in lease key order
	Aggregated []AggregatedCharge   // one per selected amendment, in lease key order
	Snapshot   *RentRollSnapshot
}

// Run resolves every lease of the book on date on, aggregates the charges of the
// selected amendments and builds the snapshot.
//
// Leases are resolved by a bounded pool of cfg.Workers goroutines. Each task writes to
// the slot of its lease key, so the result does not depend on completion order. The
// first error cancels the remaining tasks.
func Run(ctx context.Context, book *Book, on date.Date, cfg Config) (*Result, error) {
	if on.IsZero() {
		return nil, fmt.Errorf("%w: missing as-of date", ErrMalformedInput)
	}
	keys := book.Keys()
	resolved := make([]ResolvedLeaseState, len(keys))
	aggregated := make([]*AggregatedCharge, len(keys))
	hasRent := hasRentOn(book.charges, cfg.ChargeCodes)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := Resolve(book.History(k), on, hasRent, cfg.Rules)
			if err != nil {
				return fmt.Errorf("resolving %v: %w", k, err)
			}
			resolved[i] = state
			log := Log.WithFields(logrus.Fields{"lease": k.String()})
			if state.Excluded() {
				log.WithField("reason", state.Diagnostic).Debug("lease excluded")
				return nil
			}
			if state.TieBreak {
				log.WithField("amendment", state.AmendmentID).Warn("several amendments share the highest sequence")
			}
			agg := Aggregate(state.AmendmentID, state.Amendment.Area, book.Charges(state.AmendmentID), on, cfg.ChargeCodes)
			aggregated[i] = &agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{AsOf: on, Resolved: resolved}
	for _, a := range aggregated {
		if a != nil {
			res.Aggregated = append(res.Aggregated, *a)
		}
	}
	snap, err := Build(resolved, res.Aggregated, book.Properties(), cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	snap.AsOf = on
	res.Snapshot = snap
	Log.WithFields(logrus.Fields{
		"asOf":     on.String(),
		"leases":   len(keys),
		"resolved": len(res.Aggregated),
	}).Debug("snapshot built")
	return res, nil
}
