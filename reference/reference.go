// Package reference reads independently sourced rent rolls, the datasets a snapshot is
// validated against.
//
// Exports come as CSV or XLSX tables, with a header row that is not always the first one,
// or as JSON documents. A Mapping names the columns (or the JSON paths) holding the
// lease fields. Rows that cannot be read are rejected, never fatal; only an unreadable
// file is an error.
package reference

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/rentroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Columns names the source of each field. For tables an entry is a header label,
// matched ignoring case and punctuation; for JSON it is a jsonpath evaluated on each
// record, or a plain key.
type Columns struct {
	Property     string `yaml:"property"`
	PropertyName string `yaml:"property_name"`
	Tenant       string `yaml:"tenant"`
	Unit         string `yaml:"unit"`
	MonthlyRent  string `yaml:"monthly_rent"`
	AnnualRent   string `yaml:"annual_rent"` // used when MonthlyRent is not mapped
	Area         string `yaml:"area"`
}

// Mapping describes the layout of a reference export.
type Mapping struct {
	// Sheet is the XLSX sheet to read, the first one when empty.
	Sheet string `yaml:"sheet"`
	// HeaderRow is the 1-based row holding the column labels of a table.
	HeaderRow int `yaml:"header_row" validate:"gte=0"`
	// Records is the jsonpath of the record array of a JSON document.
	Records  string  `yaml:"records"`
	Currency string  `yaml:"currency"`
	Columns  Columns `yaml:"columns"`
}

// DefaultMapping recognizes the column labels of the common rent roll exports.
func DefaultMapping() Mapping {
	return Mapping{
		HeaderRow: 1,
		Records:   "$[*]",
		Currency:  "USD",
		Columns: Columns{
			Property:     "property",
			PropertyName: "property name",
			Tenant:       "tenant",
			Unit:         "unit",
			MonthlyRent:  "monthly rent",
			AnnualRent:   "annual rent",
			Area:         "area",
		},
	}
}

// LoadMapping reads the "reference" section of a configuration file over the defaults.
// Other sections are ignored.
func LoadMapping(r io.Reader) (Mapping, error) {
	doc := struct {
		Reference Mapping `yaml:"reference"`
	}{Reference: DefaultMapping()}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Mapping{}, fmt.Errorf("decoding reference mapping: %w", err)
	}
	m := doc.Reference
	if m.HeaderRow < 1 {
		m.HeaderRow = 1
	}
	return m, nil
}

// ErrUnsupportedFormat is returned by ReadFile for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported reference format")

// ReadFile reads a reference export, choosing the reader from the file extension.
func ReadFile(path string, m Mapping) ([]rentroll.ReferenceRecord, []rentroll.Rejection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open reference file %q: %w", path, err)
	}
	defer f.Close()
	source := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, source, m)
	case ".xlsx":
		return ReadXLSX(f, source, m)
	case ".json":
		return ReadJSON(f, source, m)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// fields holds the raw text of the mapped fields of one record.
type fields struct {
	property, propertyName, tenant, unit, monthly, annual, area string
}

// record builds a reference record from raw fields. line is reported in errors.
func (m Mapping) record(f fields, line int) (rentroll.ReferenceRecord, error) {
	r := rentroll.ReferenceRecord{
		Key:          rentroll.LeaseKey{Property: strings.TrimSpace(f.property), Tenant: strings.TrimSpace(f.tenant)},
		PropertyName: strings.TrimSpace(f.propertyName),
		Unit:         strings.TrimSpace(f.unit),
		Tenant:       strings.TrimSpace(f.tenant),
		Line:         line,
	}
	if r.Key.Property == "" && r.PropertyName == "" {
		return r, errors.New("no property")
	}
	if r.Key.Tenant == "" && r.Unit == "" {
		return r, errors.New("neither tenant nor unit")
	}
	switch {
	case strings.TrimSpace(f.monthly) != "":
		rent, err := rentroll.ParseMoney(f.monthly, m.Currency)
		if err != nil {
			return r, err
		}
		r.MonthlyRent = rent
	case strings.TrimSpace(f.annual) != "":
		rent, err := rentroll.ParseMoney(f.annual, m.Currency)
		if err != nil {
			return r, err
		}
		r.MonthlyRent = rent.Div(decimal.NewFromInt(12))
	default:
		return r, errors.New("no rent")
	}
	area, err := rentroll.ParseArea(f.area)
	if err != nil {
		return r, err
	}
	r.Area = area
	if r.Key.Property == "" || r.Key.Tenant == "" {
		// a partial key never matches on the primary join; the property code still
		// serves the name and unit join.
		if r.PropertyName == "" {
			r.PropertyName = r.Key.Property
		}
		r.Key = rentroll.LeaseKey{}
	}
	return r, nil
}
