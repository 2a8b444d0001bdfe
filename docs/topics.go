// Package docs embeds the user documentation, one markdown file per topic.
//
// readme.md is the index: every line of the form "* <name>: <summary>" declares the
// topic stored in <name>.md.
package docs

import (
	"bufio"
	"embed"
	"fmt"
	"regexp"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the name of the topic listing all the others.
const Index = "readme"

// Topic is an entry of the documentation index.
type Topic struct {
	Name    string
	Summary string
}

var indexLine = regexp.MustCompile(`^\*\s+([\w-]+):\s*(.*)$`)

// Topics returns the topics declared in the index, in index order.
func Topics() ([]Topic, error) {
	content, err := files.ReadFile(Index + ".md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		if m := indexLine.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, Topic{Name: m[1], Summary: strings.TrimSpace(m[2])})
		}
	}
	return topics, scanner.Err()
}

// Read returns the named topics joined by a blank line. "*" stands for every indexed
// topic.
func Read(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			topics, err := Topics()
			if err != nil {
				return "", err
			}
			expanded = expanded[:0]
			for _, t := range topics {
				expanded = append(expanded, t.Name)
			}
		}
		for _, n := range expanded {
			content, err := files.ReadFile(n + ".md")
			if err != nil {
				return "", fmt.Errorf("no documentation topic %q", n)
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.Write(content)
		}
	}
	return b.String(), nil
}
