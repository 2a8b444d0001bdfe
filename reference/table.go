package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/etnz/rentroll"
	"github.com/xuri/excelize/v2"
)

// ReadCSV reads a CSV reference export.
func ReadCSV(r io.Reader, source string, m Mapping) ([]rentroll.ReferenceRecord, []rentroll.Rejection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return m.readRows(rows, source)
}

// ReadXLSX reads the mapped sheet of an XLSX reference export.
func ReadXLSX(r io.Reader, source string, m Mapping) ([]rentroll.ReferenceRecord, []rentroll.Rejection, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file %s: %w", source, err)
	}
	defer f.Close()
	sheet := m.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read sheet %q of %s: %w", sheet, source, err)
	}
	return m.readRows(rows, source)
}

// label normalizes a column label to its letters and digits: "Monthly Rent ($)",
// "monthly_rent" and "MonthlyRent" all become "monthlyrent".
func label(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// readRows maps the rows below the header row to records. Blank rows are skipped, rows
// that do not make a record are rejected.
func (m Mapping) readRows(rows [][]string, source string) ([]rentroll.ReferenceRecord, []rentroll.Rejection, error) {
	header := max(m.HeaderRow, 1)
	if len(rows) < header {
		return nil, nil, fmt.Errorf("%w: %s has no header row %d", rentroll.ErrMalformedInput, source, header)
	}
	index := make(map[string]int)
	for i, h := range rows[header-1] {
		if l := label(h); l != "" {
			if _, dup := index[l]; !dup {
				index[l] = i
			}
		}
	}
	col := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[label(name)]; ok {
			return i
		}
		return -1
	}
	c := m.Columns
	cols := struct{ property, propertyName, tenant, unit, monthly, annual, area int }{
		col(c.Property), col(c.PropertyName), col(c.Tenant), col(c.Unit), col(c.MonthlyRent), col(c.AnnualRent), col(c.Area),
	}
	if cols.property < 0 && cols.propertyName < 0 {
		return nil, nil, fmt.Errorf("%w: %s has no property column", rentroll.ErrMalformedInput, source)
	}
	if cols.monthly < 0 && cols.annual < 0 {
		return nil, nil, fmt.Errorf("%w: %s has no rent column", rentroll.ErrMalformedInput, source)
	}

	var (
		records    []rentroll.ReferenceRecord
		rejections []rentroll.Rejection
	)
	for i, row := range rows[header:] {
		line := header + i + 1
		if blank(row) {
			continue
		}
		cell := func(j int) string {
			if j < 0 || j >= len(row) {
				return ""
			}
			return row[j]
		}
		rec, err := m.record(fields{
			property:     cell(cols.property),
			propertyName: cell(cols.propertyName),
			tenant:       cell(cols.tenant),
			unit:         cell(cols.unit),
			monthly:      cell(cols.monthly),
			annual:       cell(cols.annual),
			area:         cell(cols.area),
		}, line)
		if err != nil {
			rejections = append(rejections, rentroll.Rejection{Source: source, Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, rejections, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
