package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rentroll"
	"github.com/etnz/rentroll/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// qualityCmd holds the flags for the 'quality' subcommand.
type qualityCmd struct {
	format    string
	out       string
	maxIssues int
}

func (*qualityCmd) Name() string     { return "quality" }
func (*qualityCmd) Synopsis() string { return "score the consistency of the amendment log" }
func (*qualityCmd) Usage() string {
	return `rentroll quality [-format md|json] [-o <file>] [-n <max issues>]

  Scans the whole amendment and charge logs for duplicate active amendments, missing
  charges, sequence anomalies, business rule violations and orphaned charges, and
  prints a composite quality score. It does not depend on any as-of date.
`
}

func (c *qualityCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "md", "Output format: md or json")
	f.StringVar(&c.out, "o", "", "Write the output to this file instead of stdout")
	f.IntVar(&c.maxIssues, "n", 20, "Maximum number of issues listed in the markdown report, -1 for all")
}

func (c *qualityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newRun(c.Name())
	if err := checkFormat(c.format, "md", "json"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitBadInput
	}
	cfg, err := loadConfig()
	if err != nil {
		return failed(log, "could not load configuration", err)
	}
	book, err := loadBook(ctx, cfg)
	if err != nil {
		return failed(log, "could not load the amendment log", err)
	}
	metrics := newRunMetrics(c.Name())
	metrics.observeBook(book)

	report := rentroll.Score(book.Amendments(), book.AllCharges(), cfg.Rules, cfg.ChargeCodes, cfg.Quality)
	metrics.observeQuality(report)
	log.WithFields(logrus.Fields{
		"score": report.CompositeScore.String(),
		"band":  report.Band,
	}).Info("amendment log scored")

	if c.format == "md" && c.out == "" {
		printMarkdown(renderer.RenderQuality(report, c.maxIssues))
	} else if err := c.write(report); err != nil {
		return failed(log, "could not write the quality report", err)
	}

	if err := metrics.write(); err != nil {
		return failed(log, "could not write metrics", err)
	}
	return ExitOK
}

func (c *qualityCmd) write(report rentroll.QualityReport) (err error) {
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
		return rentroll.EncodeJSON(w, report)
	}
	_, err = fmt.Fprint(w, renderer.RenderQuality(report, c.maxIssues))
	return err
}
