package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rentroll"
	"github.com/etnz/rentroll/reference"
	"github.com/etnz/rentroll/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// validateCmd holds the flags for the 'validate' subcommand.
type validateCmd struct {
	date   string
	ref    string
	format string
	out    string
}

func (*validateCmd) Name() string { return "validate" }
func (*validateCmd) Synopsis() string {
	return "compare the rent roll with an independently sourced reference"
}
func (*validateCmd) Usage() string {
	return `rentroll validate -ref <file> [-d <date>] [-format md|json] [-o <file>]

  Reconstructs the rent roll on the as-of date and compares it with a reference export
  (.csv, .xlsx or .json, mapped by the "reference" section of the configuration).

  Exit status is 0 on Pass or Warn, 1 on Fail, 2 when the reference describes another
  population of leases and 3 on unreadable input.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "As-of date of the rent roll")
	f.StringVar(&c.ref, "ref", "", "Reference rent roll export (.csv, .xlsx or .json)")
	f.StringVar(&c.format, "format", "md", "Output format: md or json")
	f.StringVar(&c.out, "o", "", "Write the output to this file instead of stdout")
}

func (c *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newRun(c.Name())
	if c.ref == "" {
		fmt.Fprintln(os.Stderr, "Error: -ref is required")
		return ExitBadInput
	}
	if err := checkFormat(c.format, "md", "json"); err != nil {
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
	mapping, err := loadMapping()
	if err != nil {
		return failed(log, "could not load the reference mapping", err)
	}
	if mapping.Currency != cfg.Snapshot.Currency {
		return failed(log, "could not compare rents", fmt.Errorf("reference currency %s differs from snapshot currency %s", mapping.Currency, cfg.Snapshot.Currency))
	}
	records, rejections, err := reference.ReadFile(c.ref, mapping)
	if err != nil {
		return failed(log, "could not read the reference", err)
	}
	rentroll.LogRejections(rejections)

	metrics := newRunMetrics(c.Name())
	snap, err := buildSnapshot(ctx, log, cfg, on, metrics)
	if err != nil {
		return failed(log, "could not build the rent roll", err)
	}

	result := rentroll.Validate(snap, records, cfg.Validation)
	metrics.observeValidation(result)
	fields := logrus.Fields{"status": result.Status, "matched": result.MatchedCount, "overlap": result.ScopeOverlapPct.String()}
	if result.AccuracyScore != nil {
		fields["accuracy"] = result.AccuracyScore.String()
	}
	log.WithFields(fields).Info("rent roll validated")

	if c.format == "md" && c.out == "" {
		printMarkdown(renderer.RenderValidation(result))
	} else if err := c.write(result); err != nil {
		return failed(log, "could not write the validation result", err)
	}

	if err := metrics.write(); err != nil {
		return failed(log, "could not write metrics", err)
	}
	return exitForStatus(result.Status)
}

func (c *validateCmd) write(result rentroll.ValidationResult) (err error) {
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
		return rentroll.EncodeJSON(w, result)
	}
	_, err = fmt.Fprint(w, renderer.RenderValidation(result))
	return err
}

// loadMapping reads the reference section of the configuration file.
func loadMapping() (reference.Mapping, error) {
	r, err := openConfig()
	if err != nil {
		return reference.Mapping{}, err
	}
	defer r.Close()
	return reference.LoadMapping(r)
}
