package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/rentroll"
	md "github.com/nao1215/markdown"
)

// ComparisonMarkdown renders the period over period comparison of two snapshots.
func ComparisonMarkdown(c rentroll.Comparison) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Rent Roll Changes from %s to %s", c.From, c.To))
	if c.Unchanged() {
		doc.PlainText(md.Bold("No lease changed.") + " Only the remaining terms decayed.")
	}

	doc.H2("Totals")
	doc.Table(md.TableSet{
		Header: []string{"Metric", c.From.String(), c.To.String(), "Change"},
		Rows: [][]string{
			{"Leases", fmt.Sprint(c.FromTotals.Leases), fmt.Sprint(c.ToTotals.Leases), fmt.Sprintf("%+d", c.ToTotals.Leases-c.FromTotals.Leases)},
			{"Monthly Rent", c.FromTotals.MonthlyRent.String(), c.ToTotals.MonthlyRent.String(), c.MonthlyRentDelta.String()},
			{"Leased Area", c.FromTotals.LeasedArea.String(), c.ToTotals.LeasedArea.String(), c.LeasedAreaDelta.String()},
			{"Occupancy", c.FromTotals.Occupancy.String(), c.ToTotals.Occupancy.String(), c.OccupancyDelta.SignedString()},
			{"WALT (years)", c.FromTotals.WALT.StringFixed(2), c.ToTotals.WALT.StringFixed(2), c.WALTDelta.StringFixed(2)},
		},
	})

	if len(c.Added) > 0 {
		doc.H2("New Leases")
		doc.BulletList(keys(c.Added)...)
	}
	if len(c.Removed) > 0 {
		doc.H2("Leases Gone")
		doc.BulletList(keys(c.Removed)...)
	}
	if len(c.Changed) > 0 {
		doc.H2("Changed Leases")
		table := md.TableSet{
			Header: []string{"Lease", "From Amendment", "To Amendment", "Rent Change", "Area Change"},
			Rows:   [][]string{},
		}
		for _, ch := range c.Changed {
			table.Rows = append(table.Rows, []string{
				ch.Key.String(),
				ch.FromAmendmentID,
				ch.ToAmendmentID,
				ch.RentDelta.String(),
				ch.AreaDelta.String(),
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

func keys(ks []rentroll.LeaseKey) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}
