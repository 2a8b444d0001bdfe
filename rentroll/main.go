// Command rentroll reconstructs rent rolls from lease amendment logs.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/rentroll/cmd"
	"github.com/etnz/rentroll/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	completion(commander).Complete(name)

	flag.Parse()

	// Unknown subcommands are delegated to rentroll-<subcommand> binaries in PATH.
	if sub := flag.Arg(0); sub != "" && !registered(commander, sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a registered subcommand.
func registered(commander *subcommands.Commander, name string) (found bool) {
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion. Subcommand flags are
// read from the registered subcommands.
func completion(commander *subcommands.Commander) *complete.Command {
	c := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"input":        predict.Dirs("*"),
			"sqlite":       predict.Files("*.db"),
			"config":       predict.Files("*.yaml"),
			"metrics-file": predict.Files("*.prom"),
			"plain":        predict.Nothing,
			"v":            predict.Nothing,
		},
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		flags := map[string]complete.Predictor{}
		fs.VisitAll(func(f *flag.Flag) {
			switch f.Name {
			case "format":
				flags[f.Name] = predict.Set{"md", "json", "csv"}
			case "o", "ref":
				flags[f.Name] = predict.Files("*")
			case "p":
				flags[f.Name] = predict.Set{"week", "month", "quarter", "year"}
			default:
				flags[f.Name] = predict.Something
			}
		})
		c.Sub[sub.Name()] = &complete.Command{Flags: flags}
	})
	if topic, ok := c.Sub["topic"]; ok {
		names := predict.Set{"*"}
		topics, _ := docs.Topics()
		for _, t := range topics {
			names = append(names, t.Name)
		}
		topic.Args = names
	}
	return c
}
