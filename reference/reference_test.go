package reference

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/rentroll"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV_HeaderOffset(t *testing.T) {
	const export = `Rent Roll Report,,,,
As of 03/31/2025,,,,
Property,Property Name,Tenant,Suite,Monthly Rent ($),Area (SF)
P1,Plaza One,T1,Suite 100,"1,000.00","1,200"
,,,,,
P1,Plaza One,,Suite 200,500,800
Total,,,,"1,500.00",
`
	m := DefaultMapping()
	m.HeaderRow = 3
	m.Columns.Unit = "suite"
	m.Columns.Area = "Area (SF)"
	recs, rej, err := ReadCSV(strings.NewReader(export), "ref.csv", m)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	first := recs[0]
	if first.Key != (rentroll.LeaseKey{Property: "P1", Tenant: "T1"}) {
		t.Errorf("key = %v", first.Key)
	}
	if !first.MonthlyRent.Equal(rentroll.M(1000, "USD")) || !first.Area.Equal(rentroll.A(1200)) {
		t.Errorf("rent, area = %v, %v", first.MonthlyRent, first.Area)
	}
	if first.Line != 4 {
		t.Errorf("line = %d, want 4", first.Line)
	}
	// no tenant: matched by name and unit only.
	if recs[1].Key != (rentroll.LeaseKey{}) || recs[1].Unit != "Suite 200" || recs[1].PropertyName != "Plaza One" {
		t.Errorf("second record = %+v", recs[1])
	}
	// the total row has a property but neither tenant nor unit.
	if len(rej) != 1 || rej[0].Line != 7 {
		t.Errorf("rejections = %+v, want line 7", rej)
	}
}

func TestReadCSV_AnnualRent(t *testing.T) {
	const export = "property,tenant,annual rent,area\nP1,T1,12000,100\n"
	m := DefaultMapping()
	recs, _, err := ReadCSV(strings.NewReader(export), "ref.csv", m)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 1 || !recs[0].MonthlyRent.Equal(rentroll.M(1000, "USD")) {
		t.Errorf("records = %+v, want a monthly rent of 1000", recs)
	}
}

func TestReadCSV_NoRentColumn(t *testing.T) {
	const export = "property,tenant,area\nP1,T1,100\n"
	_, _, err := ReadCSV(strings.NewReader(export), "ref.csv", DefaultMapping())
	if err == nil {
		t.Error("expected an error without a rent column")
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	const sheet = "Rent Roll"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue(sheet, "A1", "Quarterly rent roll")
	f.SetCellValue(sheet, "A3", "Bldg")
	f.SetCellValue(sheet, "B3", "Lessee")
	f.SetCellValue(sheet, "C3", "Rent")
	f.SetCellValue(sheet, "D3", "SF")
	f.SetCellValue(sheet, "A4", "P1")
	f.SetCellValue(sheet, "B4", "T1")
	f.SetCellValue(sheet, "C4", 1000)
	f.SetCellValue(sheet, "D4", 1200)
	f.SetCellValue(sheet, "A5", "P2")
	f.SetCellValue(sheet, "B5", "T9")
	f.SetCellValue(sheet, "C5", "n/a")
	f.SetCellValue(sheet, "D5", 300)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	m := DefaultMapping()
	m.Sheet = sheet
	m.HeaderRow = 3
	m.Columns = Columns{Property: "Bldg", Tenant: "Lessee", MonthlyRent: "Rent", Area: "SF"}
	recs, rej, err := ReadXLSX(&buf, "ref.xlsx", m)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(recs) != 1 || recs[0].Key != (rentroll.LeaseKey{Property: "P1", Tenant: "T1"}) {
		t.Fatalf("records = %+v", recs)
	}
	if !recs[0].MonthlyRent.Equal(rentroll.M(1000, "USD")) {
		t.Errorf("rent = %v", recs[0].MonthlyRent)
	}
	if len(rej) != 1 || rej[0].Line != 5 {
		t.Errorf("rejections = %+v, want line 5", rej)
	}
}

func TestReadJSON(t *testing.T) {
	const doc = `{
  "generated": "2025-03-31",
  "leases": [
    {"site": {"code": "P1", "name": "Plaza One"}, "tenant": "T1", "monthlyRent": 1000.5, "sqft": 1200},
    {"site": {"code": "P2", "name": "Tower"}, "tenant": "T2", "monthlyRent": "2,000", "sqft": "900"},
    {"site": {"code": "P3"}, "tenant": "T3"}
  ]
}`
	m := DefaultMapping()
	m.Records = "$.leases[*]"
	m.Columns = Columns{
		Property:     "$.site.code",
		PropertyName: "$.site.name",
		Tenant:       "tenant",
		MonthlyRent:  "monthly rent",
		Area:         "sqft",
	}
	recs, rej, err := ReadJSON(strings.NewReader(doc), "ref.json", m)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}
	if recs[0].Key != (rentroll.LeaseKey{Property: "P1", Tenant: "T1"}) || recs[0].PropertyName != "Plaza One" {
		t.Errorf("first = %+v", recs[0])
	}
	if !recs[0].MonthlyRent.Equal(rentroll.M(1000.5, "USD")) {
		t.Errorf("rent = %v", recs[0].MonthlyRent)
	}
	if !recs[1].MonthlyRent.Equal(rentroll.M(2000, "USD")) || !recs[1].Area.Equal(rentroll.A(900)) {
		t.Errorf("second = %+v", recs[1])
	}
	if len(rej) != 1 || rej[0].Line != 3 {
		t.Errorf("rejections = %+v, want record 3", rej)
	}
}

func TestLoadMapping(t *testing.T) {
	const cfg = `
workers: 4
reference:
  header_row: 2
  currency: EUR
  columns:
    monthly_rent: Loyer mensuel
`
	m, err := LoadMapping(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("LoadMapping: %v", err)
	}
	if m.HeaderRow != 2 || m.Currency != "EUR" || m.Columns.MonthlyRent != "Loyer mensuel" {
		t.Errorf("mapping = %+v", m)
	}
	// unset columns keep their default.
	if m.Columns.Tenant != "tenant" {
		t.Errorf("tenant column = %q, want the default", m.Columns.Tenant)
	}

	m, err = LoadMapping(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadMapping(empty): %v", err)
	}
	if m.HeaderRow != 1 {
		t.Errorf("default header row = %d", m.HeaderRow)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.csv")
	if err := os.WriteFile(path, []byte("property,tenant,monthly rent,area\nP1,T1,10,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	recs, _, err := ReadFile(path, DefaultMapping())
	if err != nil || len(recs) != 1 {
		t.Errorf("ReadFile = %v, %v", recs, err)
	}
	if _, _, err := ReadFile(filepath.Join(dir, "ref.txt"), DefaultMapping()); err == nil {
		t.Error("expected an error for a missing file")
	}
	other := filepath.Join(dir, "ref.parquet")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadFile(other, DefaultMapping()); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}
