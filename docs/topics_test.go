package docs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced block infos executed by TestScenarios. A setup block starts a new scenario
// in a fresh directory, check blocks run in the directory of the last setup.
const (
	setupInfo = "bash setup"
	checkInfo = "bash check"
)

func TestTopics_MatchFiles(t *testing.T) {
	topics, err := Topics()
	if err != nil {
		t.Fatal(err)
	}
	var indexed []string
	for _, topic := range topics {
		if topic.Summary == "" {
			t.Errorf("topic %q has no summary in the index", topic.Name)
		}
		indexed = append(indexed, topic.Name)
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []string
	for _, f := range files {
		if name := strings.TrimSuffix(f, ".md"); name != Index {
			onDisk = append(onDisk, name)
		}
	}
	if diff := cmp.Diff(onDisk, indexed, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("index and topic files differ (-files +index):\n%s", diff)
	}
}

func TestRead(t *testing.T) {
	got, err := Read("inputs", "validation")
	if err != nil {
		t.Fatal(err)
	}
	inputs, _ := files.ReadFile("inputs.md")
	if !strings.HasPrefix(got, string(inputs)) {
		t.Errorf("Read(inputs, validation) does not start with the inputs topic")
	}

	all, err := Read("*")
	if err != nil {
		t.Fatal(err)
	}
	topics, _ := Topics()
	for _, topic := range topics {
		content, _ := files.ReadFile(topic.Name + ".md")
		if !strings.Contains(all, string(content)) {
			t.Errorf("Read(*) misses topic %q", topic.Name)
		}
	}

	if _, err := Read("nope"); err == nil {
		t.Error("Read(nope) succeeded")
	}
}

// snippet is an executable fenced block of a markdown file.
type snippet struct {
	info string
	code string
	pos  string // file:line
}

// snippets returns the setup and check blocks of a markdown file, in document order.
func snippets(t *testing.T, file string) []snippet {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var found []snippet
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || block.Info == nil {
			return ast.WalkContinue, nil
		}
		info := string(block.Info.Segment.Value(source))
		if info != setupInfo && info != checkInfo {
			return ast.WalkContinue, nil
		}
		var code strings.Builder
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			code.Write(segment.Value(source))
		}
		line := 1 + strings.Count(string(source[:block.Info.Segment.Start]), "\n")
		found = append(found, snippet{info: info, code: code.String(), pos: fmt.Sprintf("%s:%d", file, line)})
		return ast.WalkSkipChildren, nil
	})
	return found
}

// TestScenarios runs the shell examples of the documentation against a freshly built
// rentroll binary.
func TestScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the rentroll binary")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "rentroll"), "../rentroll/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("could not build rentroll: %v\n%s", err, out)
	}
	env := append(os.Environ(), fmt.Sprintf("PATH=%s%c%s", bin, os.PathListSeparator, os.Getenv("PATH")))

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			dir := t.TempDir()
			for _, s := range snippets(t, file) {
				if s.info == setupInfo {
					dir = t.TempDir()
				}
				sh := exec.Command("bash", "-c", "set -e; "+s.code)
				sh.Dir, sh.Env = dir, env
				out, err := sh.CombinedOutput()
				if err == nil {
					continue
				}
				if s.info == setupInfo {
					t.Fatalf("%s: setup failed: %v\n%s", s.pos, err, out)
				}
				t.Errorf("%s: check failed: %v\n%s", s.pos, err, out)
			}
		})
	}
}
