package rentroll

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeInput writes files, by name, into a temporary input directory.
func writeInput(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadBook(t *testing.T) {
	dir := writeInput(t, map[string]string{
		AmendmentsFile: `{"property":"P1","tenant":"T1","id":"1","status":"Activated","start":"2024-01-01","area":900}
{"property":"P1","tenant":"T2","status":"Activated"}
`,
		ChargesFile: `{"amendmentId":"1","code":"RNT","amount":1000,"from":"2024-01-01"}
{"amendmentId":"1","code":"RNT","amount":"lots"}
`,
		PropertiesFile: `{"id":"P1","name":"Plaza","rentableArea":1000}
`,
	})
	book, err := LoadBook(dir, "USD")
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	if len(book.Keys()) != 1 || len(book.Charges("1")) != 1 || len(book.Properties()) != 1 {
		t.Errorf("book = %d keys, %d charges, %d properties", len(book.Keys()), len(book.Charges("1")), len(book.Properties()))
	}
	var sources []string
	for _, r := range book.Rejections() {
		sources = append(sources, r.Source)
	}
	if strings.Join(sources, ",") != AmendmentsFile+","+ChargesFile {
		t.Errorf("rejections = %+v", book.Rejections())
	}
	if c := book.Charges("1")[0]; c.Amount.Currency() != "USD" {
		t.Errorf("charge currency = %q, want USD", c.Amount.Currency())
	}
}

func TestLoadBook_OptionalProperties(t *testing.T) {
	dir := writeInput(t, map[string]string{
		AmendmentsFile: `{"property":"P1","tenant":"T1","id":"1","status":"Activated","start":"2024-01-01"}`,
		ChargesFile:    "",
	})
	book, err := LoadBook(dir, "USD")
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	if len(book.Properties()) != 0 || len(book.Rejections()) != 0 {
		t.Errorf("book = %+v", book)
	}
}

func TestLoadBook_MissingFile(t *testing.T) {
	dir := writeInput(t, map[string]string{AmendmentsFile: ""})
	_, err := LoadBook(dir, "USD")
	if err == nil || !strings.Contains(err.Error(), ChargesFile) {
		t.Errorf("LoadBook() error = %v, want the missing charges file named", err)
	}
}

func TestLoadBook_ForeignCurrency(t *testing.T) {
	dir := writeInput(t, map[string]string{
		AmendmentsFile: `{"property":"P1","tenant":"T1","id":"1","status":"Activated","start":"2024-01-01","area":1000}`,
		ChargesFile: `{"amendmentId":"1","code":"RNT","amount":1000,"currency":"EUR","from":"2024-01-01"}
{"amendmentId":"1","code":"RNT","amount":900,"from":"2024-01-01"}
{"amendmentId":"1","code":"CPI","amount":50,"from":"2024-01-01"}
`,
	})
	book, err := LoadBook(dir, "USD")
	if err != nil {
		t.Fatalf("LoadBook() error = %v", err)
	}
	if len(book.Rejections()) != 1 || book.Rejections()[0].Line != 1 {
		t.Fatalf("rejections = %+v, want the EUR line", book.Rejections())
	}
	res, err := Run(context.Background(), book, D("2025-01-31"), DefaultConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := res.Snapshot.Totals().MonthlyRent; !got.Equal(USD(950)) || got.Currency() != "USD" {
		t.Errorf("monthly rent = %v %s, want 950 USD", got, got.Currency())
	}
}
