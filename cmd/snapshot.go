package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rentroll"
	"github.com/etnz/rentroll/date"
	"github.com/etnz/rentroll/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// snapshotCmd holds the flags for the 'snapshot' subcommand.
type snapshotCmd struct {
	date       string
	format     string
	out        string
	aggregates bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "reconstruct the rent roll on a date" }
func (*snapshotCmd) Usage() string {
	return `rentroll snapshot [-d <date>] [-format md|json|csv] [-o <file>] [-aggregates]

  Resolves the authoritative amendment of every lease on the as-of date, aggregates its
  charges and prints the rent roll with its property and portfolio aggregates.

  The as-of date defaults to as_of in the configuration. A relative date like "-1m" is
  relative to it.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "As-of date of the rent roll")
	f.StringVar(&c.format, "format", "md", "Output format: md, json or csv")
	f.StringVar(&c.out, "o", "", "Write the output to this file instead of stdout")
	f.BoolVar(&c.aggregates, "aggregates", false, "Only print the property and portfolio aggregates")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newRun(c.Name())
	if err := checkFormat(c.format, "md", "json", "csv"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitBadInput
	}
	cfg, err := loadConfig()
	if err != nil {
		return failed(log, "could not load configuration", err)
	}
	on, err := asOfDate(c.date, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return ExitBadInput
	}
	metrics := newRunMetrics(c.Name())
	snap, err := buildSnapshot(ctx, log, cfg, on, metrics)
	if err != nil {
		return failed(log, "could not build the rent roll", err)
	}

	if c.format == "md" && c.out == "" {
		printMarkdown(renderer.RenderSnapshot(snap, renderer.SnapshotRenderOptions{
			SkipEntries:    c.aggregates,
			SkipProperties: c.aggregates,
		}))
	} else if err := writeSnapshot(c.out, c.format, snap); err != nil {
		return failed(log, "could not write the rent roll", err)
	}

	if err := metrics.write(); err != nil {
		return failed(log, "could not write metrics", err)
	}
	return ExitOK
}

// buildSnapshot loads the book and runs the pipeline on date on.
func buildSnapshot(ctx context.Context, log *logrus.Entry, cfg rentroll.Config, on date.Date, metrics *runMetrics) (*rentroll.RentRollSnapshot, error) {
	book, err := loadBook(ctx, cfg)
	if err != nil {
		return nil, err
	}
	metrics.observeBook(book)
	res, err := rentroll.Run(ctx, book, on, cfg)
	if err != nil {
		return nil, err
	}
	metrics.observeSnapshot(res.Snapshot)
	log.WithFields(logrus.Fields{
		"asOf":     on.String(),
		"leases":   res.Snapshot.Portfolio.Leases,
		"rejected": len(book.Rejections()),
		"orphans":  len(book.Orphans()),
	}).Info("rent roll reconstructed")
	return res.Snapshot, nil
}

// writeSnapshot writes snap to path in format.
func writeSnapshot(path, format string, snap *rentroll.RentRollSnapshot) (err error) {
	w, err := output(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	switch format {
	case "json":
		return rentroll.EncodeJSON(w, snap)
	case "csv":
		return rentroll.EncodeSnapshotCSV(w, snap)
	default:
		_, err = fmt.Fprint(w, renderer.RenderSnapshot(snap, renderer.SnapshotRenderOptions{}))
		return err
	}
}
