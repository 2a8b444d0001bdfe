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

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	date   string
	from   string
	period string
	format string
	out    string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare the rent roll between two dates" }
func (*compareCmd) Usage() string {
	return `rentroll compare [-d <date>] [-from <date> | -p <period>] [-format md|json] [-o <file>]

  Reconstructs the rent roll on two dates from the same amendment log and reports the
  leases that appeared, disappeared or changed, and the change of the portfolio totals.

  -from is an absolute date or a duration relative to -d like "-1q". -p compares with the
  last day of the previous period (week, month, quarter or year).
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "As-of date of the latest rent roll")
	f.StringVar(&c.from, "from", "-1m", "Date of the earlier rent roll, absolute or relative to -d")
	f.StringVar(&c.period, "p", "", "Compare with the end of the previous period instead of -from")
	f.StringVar(&c.format, "format", "md", "Output format: md or json")
	f.StringVar(&c.out, "o", "", "Write the output to this file instead of stdout")
}

// fromDate returns the date of the earlier snapshot.
func (c *compareCmd) fromDate(to date.Date) (date.Date, error) {
	if c.period != "" {
		p, err := date.ParsePeriod(c.period)
		if err != nil {
			return date.Date{}, err
		}
		return to.EndOfPrevious(p), nil
	}
	from, err := date.ParseRelative(c.from, to)
	if err != nil {
		return date.Date{}, err
	}
	if !from.Before(to) {
		return date.Date{}, fmt.Errorf("from date %s is not before %s", from, to)
	}
	return from, nil
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newRun(c.Name())
	if err := checkFormat(c.format, "md", "json"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitBadInput
	}
	cfg, err := loadConfig()
	if err != nil {
		return failed(log, "could not load configuration", err)
	}
	to, err := asOfDate(c.date, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return ExitBadInput
	}
	from, err := c.fromDate(to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return ExitBadInput
	}

	book, err := loadBook(ctx, cfg)
	if err != nil {
		return failed(log, "could not load the amendment log", err)
	}
	metrics := newRunMetrics(c.Name())
	metrics.observeBook(book)
	before, err := rentroll.Run(ctx, book, from, cfg)
	if err != nil {
		return failed(log, "could not build the earlier rent roll", err)
	}
	after, err := rentroll.Run(ctx, book, to, cfg)
	if err != nil {
		return failed(log, "could not build the rent roll", err)
	}
	metrics.observeSnapshot(after.Snapshot)

	comparison := rentroll.Compare(before.Snapshot, after.Snapshot)
	log.WithFields(logrus.Fields{
		"from":    from.String(),
		"to":      to.String(),
		"added":   len(comparison.Added),
		"removed": len(comparison.Removed),
		"changed": len(comparison.Changed),
	}).Info("rent rolls compared")

	if c.format == "md" && c.out == "" {
		printMarkdown(renderer.ComparisonMarkdown(comparison))
	} else if err := c.write(comparison); err != nil {
		return failed(log, "could not write the comparison", err)
	}

	if err := metrics.write(); err != nil {
		return failed(log, "could not write metrics", err)
	}
	return ExitOK
}

func (c *compareCmd) write(comparison rentroll.Comparison) (err error) {
	w, err := output(c.out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	if c.format == "json" {
		return rentroll.EncodeJSON(w, comparison)
	}
	_, err = fmt.Fprint(w, renderer.ComparisonMarkdown(comparison))
	return err
}
