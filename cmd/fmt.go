package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/rentroll"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type fmtCmd struct {
	outputDir string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and writes the input logs in a canonical form"
}
func (*fmtCmd) Usage() string {
	return `rentroll fmt [-o <dir>]

  Reads the amendment, charge and property logs, drops the records that cannot be
  read, and writes them back as JSONL: amendments grouped by lease key in history
  order, charges grouped after their amendment, orphaned charges last.

  By default the input directory is rewritten in place. With -sqlite, -o is required
  and the export is converted to an input directory.

Usage Examples:
$ rentroll fmt
$ rentroll -sqlite export.db fmt -o ./input
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "", "Directory to write the logs to, the input directory by default")
}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newRun(c.Name())

	dir := c.outputDir
	if dir == "" {
		if *sqliteFile != "" {
			return failed(log, "invalid arguments", errors.New("-o is required to convert a SQLite export"))
		}
		dir = *inputDir
	}
	cfg, err := loadConfig()
	if err != nil {
		return failed(log, "could not load configuration", err)
	}
	book, err := loadBook(ctx, cfg)
	if err != nil {
		return failed(log, "could not load input", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failed(log, "could not create output directory", err)
	}

	var amendments []rentroll.Amendment
	var charges []rentroll.Charge
	for _, k := range book.Keys() {
		for _, a := range book.History(k) {
			amendments = append(amendments, a)
			charges = append(charges, book.Charges(a.ID)...)
		}
	}
	charges = append(charges, book.Orphans()...)

	files := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{rentroll.AmendmentsFile, func(w io.Writer) error { return rentroll.EncodeAmendments(w, amendments) }},
		{rentroll.ChargesFile, func(w io.Writer) error { return rentroll.EncodeCharges(w, charges) }},
		{rentroll.PropertiesFile, func(w io.Writer) error { return rentroll.EncodeProperties(w, book.Properties()) }},
	}
	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.encode); err != nil {
			return failed(log, "could not write log", err)
		}
	}

	log.WithFields(logrus.Fields{
		"dir":        dir,
		"amendments": len(amendments),
		"charges":    len(charges),
		"dropped":    len(book.Rejections()),
	}).Info("input logs formatted")
	return ExitOK
}

// writeFile creates path and fills it with encode.
func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("could not encode %q: %w", path, err)
	}
	return f.Close()
}
