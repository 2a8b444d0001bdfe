package rentroll

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/rentroll/date"
)

// MarshalJSON writes the entry with a stable field order and flags month-to-month leases.
func (e Entry) MarshalJSON() ([]byte, error) {
	return jsonObject{
		field("key", e.Key),
		optional("propertyName", e.PropertyName),
		optional("unit", e.Unit),
		field("amendmentId", e.AmendmentID),
		field("type", e.Type),
		field("status", e.Status),
		field("start", e.Start),
		field("end", e.End),
		optional("monthToMonth", e.MonthToMonth()),
		field("area", e.Area),
		field("monthlyRent", e.MonthlyRent),
		field("annualRent", e.AnnualRent),
		field("rentPsf", e.RentPSF),
		optional("other", e.Other),
	}.MarshalJSON()
}

// EncodeJSON writes v as indented JSON. Map keys are sorted and amounts rounded, so the
// same value always produces the same bytes.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DecodeSnapshotJSON reads a snapshot written by EncodeJSON. Amounts take the snapshot
// currency.
func DecodeSnapshotJSON(r io.Reader) (*RentRollSnapshot, error) {
	var s RentRollSnapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decoding snapshot: %v", ErrMalformedInput, err)
	}
	cur := s.Portfolio.Currency
	for i := range s.Entries {
		e := &s.Entries[i]
		e.MonthlyRent = e.MonthlyRent.WithCurrency(cur)
		e.AnnualRent = e.AnnualRent.WithCurrency(cur)
		e.RentPSF = e.RentPSF.WithCurrency(cur)
		for k, v := range e.Other {
			e.Other[k] = v.WithCurrency(cur)
		}
	}
	p := &s.Portfolio
	p.MonthlyRent = p.MonthlyRent.WithCurrency(cur)
	p.AnnualRent = p.AnnualRent.WithCurrency(cur)
	for i := range p.Buckets {
		p.Buckets[i].MonthlyRent = p.Buckets[i].MonthlyRent.WithCurrency(cur)
	}
	for i := range s.Properties {
		s.Properties[i].MonthlyRent = s.Properties[i].MonthlyRent.WithCurrency(cur)
	}
	return &s, nil
}

// The CSV form of a snapshot is one row per lease after a header, then a summary
// block introduced by a csvSummary row and made of name,value rows.
const csvSummary = "#summary"

var csvHeader = []string{
	"property", "tenant", "property_name", "unit", "amendment_id", "type", "status",
	"start", "end", "area", "monthly_rent", "annual_rent", "rent_psf",
	"monthly_recovery", "monthly_tax", "monthly_other",
}

func csvMoney(m Money) string { return m.Decimal().Round(2).StringFixed(2) }

func csvArea(a Area) string { return a.Decimal().Round(2).String() }

// EncodeSnapshotCSV writes the snapshot as CSV.
func EncodeSnapshotCSV(w io.Writer, s *RentRollSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range s.Entries {
		row := []string{
			e.Key.Property, e.Key.Tenant, e.PropertyName, e.Unit, e.AmendmentID,
			string(e.Type), string(e.Status), e.Start.String(), e.End.String(),
			csvArea(e.Area), csvMoney(e.MonthlyRent), csvMoney(e.AnnualRent), csvMoney(e.RentPSF),
			csvMoney(e.Other[CategoryRecovery]), csvMoney(e.Other[CategoryTax]), csvMoney(e.Other[CategoryOther]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	p := s.Portfolio
	rows := [][]string{
		{csvSummary},
		{"as_of", s.AsOf.String()},
		{"currency", p.Currency},
		{"walt_basis", string(p.WALTBasis)},
		{"leases", strconv.Itoa(p.Leases)},
		{"monthly_rent", csvMoney(p.MonthlyRent)},
		{"annual_rent", csvMoney(p.AnnualRent)},
		{"leased_area", csvArea(p.LeasedArea)},
		{"rentable_area", csvArea(p.RentableArea)},
		{"occupancy", strconv.FormatFloat(float64(p.Occupancy), 'f', 2, 64)},
		{"walt", p.WALT.StringFixed(2)},
		{"tie_breaks", strconv.Itoa(p.TieBreaks)},
	}
	for _, d := range slices.Sorted(maps.Keys(p.Excluded)) {
		rows = append(rows, []string{"excluded:" + string(d), strconv.Itoa(p.Excluded[d])})
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// DecodeSnapshotCSV reads a snapshot written by EncodeSnapshotCSV.
//
// Lease rows are read back as entries; property and portfolio aggregates are recomputed
// from them with Summarize, using properties for rentable areas and opts for the
// buckets. The currency and WALT basis come from the summary block.
func DecodeSnapshotCSV(r io.Reader, properties []Property, opts SnapshotOptions) (*RentRollSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot CSV: %v", ErrMalformedInput, err)
	}
	if len(records) == 0 || !slices.Equal(records[0], csvHeader) {
		return nil, fmt.Errorf("%w: snapshot CSV has no header", ErrMalformedInput)
	}

	var (
		rows    [][]string
		summary = map[string]string{}
	)
	inSummary := false
	for _, rec := range records[1:] {
		switch {
		case len(rec) > 0 && rec[0] == csvSummary:
			inSummary = true
		case inSummary:
			if len(rec) != 2 {
				return nil, fmt.Errorf("%w: summary row %v", ErrMalformedInput, rec)
			}
			summary[rec[0]] = rec[1]
		default:
			rows = append(rows, rec)
		}
	}
	if !inSummary {
		return nil, fmt.Errorf("%w: snapshot CSV has no summary block", ErrMalformedInput)
	}

	asOf, err := date.Parse(summary["as_of"])
	if err != nil {
		return nil, fmt.Errorf("%w: as_of: %v", ErrMalformedInput, err)
	}
	if c := summary["currency"]; c != "" {
		opts.Currency = c
	}
	if b := summary["walt_basis"]; b != "" {
		opts.WALTBasis = WALTBasis(b)
	}

	s := &RentRollSnapshot{AsOf: asOf}
	for i, row := range rows {
		e, err := decodeCSVEntry(row, opts.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedInput, i+2, err)
		}
		s.Entries = append(s.Entries, e)
	}
	slices.SortFunc(s.Entries, func(a, b Entry) int { return a.Key.Compare(b.Key) })
	s.Properties, s.Portfolio = Summarize(asOf, s.Entries, properties, opts)

	if n, err := strconv.Atoi(summary["leases"]); err != nil || n != s.Portfolio.Leases {
		return nil, fmt.Errorf("%w: summary announces %q leases, found %d", ErrMalformedInput, summary["leases"], s.Portfolio.Leases)
	}
	if n, err := strconv.Atoi(summary["tie_breaks"]); err == nil {
		s.Portfolio.TieBreaks = n
	}
	for k, v := range summary {
		d, ok := strings.CutPrefix(k, "excluded:")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, k, err)
		}
		if s.Portfolio.Excluded == nil {
			s.Portfolio.Excluded = map[Diagnostic]int{}
		}
		s.Portfolio.Excluded[Diagnostic(d)] = n
	}
	return s, nil
}

func decodeCSVEntry(row []string, currency string) (Entry, error) {
	if len(row) != len(csvHeader) {
		return Entry{}, fmt.Errorf("got %d fields, want %d", len(row), len(csvHeader))
	}
	var errs []error
	money := func(s string) Money {
		m, err := ParseMoney(s, currency)
		errs = append(errs, err)
		return m
	}
	day := func(s string) date.Date {
		d, err := date.Parse(s)
		errs = append(errs, err)
		return d
	}
	area, err := ParseArea(row[9])
	errs = append(errs, err)
	e := Entry{
		Key:          LeaseKey{Property: row[0], Tenant: row[1]},
		PropertyName: row[2],
		Unit:         row[3],
		AmendmentID:  row[4],
		Type:         AmendmentType(row[5]),
		Status:       Status(row[6]),
		Start:        day(row[7]),
		End:          day(row[8]),
		Area:         area,
		MonthlyRent:  money(row[10]),
		AnnualRent:   money(row[11]),
		RentPSF:      money(row[12]),
	}
	for i, cat := range []ChargeCategory{CategoryRecovery, CategoryTax, CategoryOther} {
		if m := money(row[13+i]); !m.IsZero() {
			if e.Other == nil {
				e.Other = map[ChargeCategory]Money{}
			}
			e.Other[cat] = m
		}
	}
	return e, errors.Join(errs...)
}
