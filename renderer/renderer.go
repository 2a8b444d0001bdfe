package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/rentroll"
)

//go:embed *.md
var templates embed.FS

// SnapshotRenderOptions holds configuration for rendering a snapshot.
type SnapshotRenderOptions struct {
	SkipEntries    bool // Do not list the leases, only the aggregates.
	SkipProperties bool // Do not render the per property table.
}

// page is a markdown document made of a main template and named sections, each
// section read from "<name>.md". A skipped section renders as nothing.
type page struct {
	name     string
	sections []string
	skip     map[string]bool
}

// render executes the page with data. Template errors are rendered in place of the
// document, so a broken report is visible rather than silently empty.
func (p page) render(data any) string {
	out, err := p.execute(data)
	if err != nil {
		return fmt.Sprintf("cannot render %s: %v", p.name, err)
	}
	return out
}

func (p page) execute(data any) (string, error) {
	tmpl, err := template.ParseFS(templates, p.name+".md")
	if err != nil {
		return "", err
	}
	for _, section := range p.sections {
		var body []byte
		if !p.skip[section] {
			if body, err = fs.ReadFile(templates, section+".md"); err != nil {
				return "", err
			}
		}
		if _, err := tmpl.New(section).Parse(string(body)); err != nil {
			return "", fmt.Errorf("section %s: %w", section, err)
		}
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, p.name+".md", data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderSnapshot renders a rent roll snapshot to markdown.
func RenderSnapshot(s *rentroll.RentRollSnapshot, opts SnapshotRenderOptions) string {
	return page{
		name:     "snapshot",
		sections: []string{"snapshot_title", "snapshot_portfolio", "snapshot_buckets", "snapshot_properties", "snapshot_entries"},
		skip: map[string]bool{
			"snapshot_properties": opts.SkipProperties,
			"snapshot_entries":    opts.SkipEntries,
		},
	}.render(s)
}

// RenderQuality renders a quality report to markdown. Issues are listed up to
// maxIssues, all of them when maxIssues is negative.
func RenderQuality(r rentroll.QualityReport, maxIssues int) string {
	data := struct {
		rentroll.QualityReport
		Shown     []rentroll.QualityIssue
		Truncated int
	}{QualityReport: r, Shown: r.Issues}
	if maxIssues >= 0 && len(r.Issues) > maxIssues {
		data.Shown = r.Issues[:maxIssues]
		data.Truncated = len(r.Issues) - maxIssues
	}
	return page{name: "quality", sections: []string{"quality_scores", "quality_counts", "quality_issues"}}.render(data)
}

// RenderValidation renders a validation result to markdown.
func RenderValidation(v rentroll.ValidationResult) string {
	return page{name: "validation", sections: []string{"validation_scope", "validation_deltas"}}.render(v)
}
