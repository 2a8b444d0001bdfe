package cmd

import (
	"context"
	"flag"

	"github.com/etnz/rentroll/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the embedded user guide.
type topicCmd struct{}

func (*topicCmd) Name() string { return "topic" }
func (*topicCmd) Synopsis() string {
	return "read the user guide: inputs, resolution rules, configuration, quality, validation"
}
func (*topicCmd) Usage() string {
	return `rentroll topic [<name>...|*]

  Prints guide topics as markdown. Without a name it prints the index of topics,
  "*" prints the whole guide. Every example of the guide is run by the test suite.

Usage Examples:
$ rentroll topic resolution
$ rentroll -plain topic '*' > guide.md
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		names = []string{docs.Index}
	}
	guide, err := docs.Read(names...)
	if err != nil {
		return failed(newRun(c.Name()), "unknown topic", err)
	}
	printMarkdown(guide)
	return ExitOK
}
