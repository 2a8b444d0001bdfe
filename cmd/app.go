// Package cmd implements the CLI application to reconstruct and check rent rolls.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/rentroll"
	"github.com/etnz/rentroll/date"
	"github.com/etnz/rentroll/store"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&snapshotCmd{}, "rent roll")
	c.Register(&compareCmd{}, "rent roll")
	c.Register(&qualityCmd{}, "checks")
	c.Register(&validateCmd{}, "checks")
	c.Register(&fmtCmd{}, "input")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	inputDir    = flag.String("input", ".", "Directory holding amendments.jsonl, charges.jsonl and properties.jsonl")
	sqliteFile  = flag.String("sqlite", "", "SQLite export to read instead of the input directory")
	configFile  = flag.String("config", "rentroll.yaml", "YAML configuration file; defaults apply when it does not exist")
	metricsFile = flag.String("metrics-file", "", "Write run metrics to this file in the Prometheus text format")
	plain       = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
	Verbose     = flag.Bool("v", false, "Log every rejected record and excluded lease")
)

// Exit codes. Usage errors share the code of malformed input.
const (
	ExitOK            subcommands.ExitStatus = 0
	ExitFail          subcommands.ExitStatus = 1
	ExitScopeMismatch subcommands.ExitStatus = 2
	ExitBadInput      subcommands.ExitStatus = 3
)

// exitForStatus maps a validation status to the process exit code. Warn passes.
func exitForStatus(s rentroll.ValidationStatus) subcommands.ExitStatus {
	switch s {
	case rentroll.Pass, rentroll.Warn:
		return ExitOK
	case rentroll.ScopeMismatch:
		return ExitScopeMismatch
	default:
		return ExitFail
	}
}

// failed reports err on stderr and returns the bad input exit code.
func failed(log *logrus.Entry, msg string, err error) subcommands.ExitStatus {
	log.WithError(err).Error(msg)
	return ExitBadInput
}

// newRun tags the log entries of one command run with a fresh run id.
func newRun(command string) *logrus.Entry {
	if *Verbose {
		rentroll.Log.SetLevel(logrus.DebugLevel)
	}
	return rentroll.Log.WithFields(logrus.Fields{"run": uuid.NewString(), "cmd": command})
}

// loadConfig reads the configuration file, or returns the defaults when it does not exist.
func loadConfig() (rentroll.Config, error) {
	f, err := os.Open(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return rentroll.DefaultConfig(), nil
	}
	if err != nil {
		return rentroll.Config{}, fmt.Errorf("could not open configuration %q: %w", *configFile, err)
	}
	defer f.Close()
	cfg, err := rentroll.LoadConfig(f)
	if err != nil {
		return rentroll.Config{}, fmt.Errorf("configuration %q: %w", *configFile, err)
	}
	return cfg, nil
}

// openConfig returns a reader on the configuration file, or an empty reader when it
// does not exist.
func openConfig() (io.ReadCloser, error) {
	f, err := os.Open(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return f, err
}

// loadBook reads the amendment, charge and property logs from the SQLite export when
// one is given, from the input directory otherwise.
func loadBook(ctx context.Context, cfg rentroll.Config) (*rentroll.Book, error) {
	if *sqliteFile != "" {
		db, err := store.Open(*sqliteFile)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Load(ctx, cfg.Snapshot.Currency)
	}
	return rentroll.LoadBook(*inputDir, cfg.Snapshot.Currency)
}

// asOfDate returns the as-of date of a command: the -d flag when set, the configured
// as_of otherwise. A relative flag such as "-1m" is relative to the configured as_of.
// The clock is never read: a run is reproducible from its inputs.
func asOfDate(flagValue string, cfg rentroll.Config) (date.Date, error) {
	switch {
	case flagValue == "":
		if cfg.AsOf.IsZero() {
			return date.Date{}, errors.New("missing as-of date: use -d or set as_of in the configuration")
		}
		return cfg.AsOf, nil
	case strings.HasPrefix(flagValue, "+") || strings.HasPrefix(flagValue, "-"):
		if cfg.AsOf.IsZero() {
			return date.Date{}, fmt.Errorf("relative date %q needs as_of in the configuration", flagValue)
		}
		return date.ParseRelative(flagValue, cfg.AsOf)
	default:
		return date.Parse(flagValue)
	}
}

// output opens the -o file of a command, stdout when empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create output file %q: %w", path, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// printMarkdown renders markdown for the terminal, or prints it raw with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// checkFormat validates a -format flag value.
func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, want one of %s", format, strings.Join(allowed, ", "))
}
