// Package store reads the amendment, charge and property logs from a SQLite export.
//
// The export has one table per log: amendments, charges and properties. Column names are
// matched after normalization, so "Start Date", "start_date" and "START-DATE" all name the
// start column, and the usual aliases of lease administration systems are understood
// (amendment_id for id, charge_code for code and so on). Cells are read as text and
// parsed the same way the JSONL logs are.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/rentroll"
	"github.com/etnz/rentroll/date"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Table names.
const (
	AmendmentsTable = "amendments"
	ChargesTable    = "charges"
	PropertiesTable = "properties"
)

// DB is an open SQLite export.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path. The file must exist.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the database.
func (s *DB) Close() error { return s.db.Close() }

// Load reads the three tables into a book. The amendments and charges tables are
// required; a missing properties table yields no property metadata. currency applies to
// charges without a currency column.
func (s *DB) Load(ctx context.Context, currency string) (*rentroll.Book, error) {
	var rejections []rentroll.Rejection

	amendments, rej, err := readTable(ctx, s.db, AmendmentsTable, true, amendmentColumns, amendmentFromRow)
	if err != nil {
		return nil, err
	}
	rejections = append(rejections, rej...)

	charges, rej, err := readTable(ctx, s.db, ChargesTable, true, chargeColumns, func(r row) (rentroll.Charge, error) {
		return chargeFromRow(r, currency)
	})
	if err != nil {
		return nil, err
	}
	rejections = append(rejections, rej...)

	properties, rej, err := readTable(ctx, s.db, PropertiesTable, false, propertyColumns, propertyFromRow)
	if err != nil {
		return nil, err
	}
	rejections = append(rejections, rej...)

	book := rentroll.NewBook(amendments, charges, properties)
	book.AddRejections(rejections...)
	rentroll.LogRejections(rejections)
	return book, nil
}

// normalizeColumn folds case and separators: "Start Date" becomes "start_date".
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(name)
}

// columns maps normalized column names and their aliases to field names.
type columns map[string]string

var amendmentColumns = columns{
	"property": "property", "property_id": "property",
	"tenant": "tenant", "tenant_id": "tenant",
	"id": "id", "amendment_id": "id",
	"sequence": "sequence", "amendment_sequence": "sequence", "seq": "sequence",
	"status": "status", "amendment_status": "status",
	"type": "type", "amendment_type": "type",
	"start": "start", "start_date": "start", "lease_start": "start",
	"end": "end", "end_date": "end", "lease_end": "end",
	"area": "area", "leased_area": "area", "square_feet": "area", "sqft": "area",
	"signed": "signed", "signed_date": "signed",
	"term_months": "term_months", "term": "term_months",
	"unit": "unit", "suite": "unit",
}

var chargeColumns = columns{
	"amendment_id": "amendment_id", "amendment": "amendment_id",
	"code": "code", "charge_code": "code",
	"amount": "amount",
	"currency": "currency",
	"frequency": "frequency", "billing_frequency": "frequency",
	"from": "from", "from_date": "from", "start_date": "from", "effective_from": "from",
	"to": "to", "to_date": "to", "end_date": "to", "effective_to": "to",
}

var propertyColumns = columns{
	"id": "id", "property_id": "id", "property": "id",
	"name": "name", "property_name": "name",
	"rentable_area": "rentable_area", "rba": "rentable_area", "area": "rentable_area",
	"acquired": "acquired", "acquisition_date": "acquired",
	"disposed": "disposed", "disposition_date": "disposed",
}

// row holds the cells of one table row by field name, as text.
type row map[string]string

// readTable reads every row of table and converts it with parse. Rows parse fails on
// become rejections.
func readTable[T any](ctx context.Context, db *sql.DB, table string, required bool, cols columns, parse func(row) (T, error)) ([]T, []rentroll.Rejection, error) {
	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		if required {
			return nil, nil, fmt.Errorf("%w: missing table %q", rentroll.ErrMalformedInput, table)
		}
		return nil, nil, nil
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		return nil, nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	fields := make([]string, len(names))
	for i, n := range names {
		fields[i] = cols[normalizeColumn(n)] // empty for unknown columns
	}

	var (
		out        []T
		rejections []rentroll.Rejection
	)
	line := 0
	for rows.Next() {
		line++
		cells := make([]sql.NullString, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", table, err)
		}
		r := make(row, len(names))
		for i, f := range fields {
			if f != "" && cells[i].Valid {
				r[f] = strings.TrimSpace(cells[i].String)
			}
		}
		v, err := parse(r)
		if err != nil {
			rejections = append(rejections, rentroll.Rejection{Source: table, Line: line, Reason: err.Error()})
			continue
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, rejections, nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND lower(name)=?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return true, nil
}

// cellParser accumulates the first conversion error of a row.
type cellParser struct {
	r   row
	err error
}

func (p *cellParser) day(field string) date.Date {
	d, err := date.Parse(p.r[field])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return d
}

func (p *cellParser) integer(field string) int {
	s := p.r[field]
	if s == "" {
		return 0
	}
	// numeric cells may come back as "12.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return int(f)
}

func (p *cellParser) area(field string) rentroll.Area {
	a, err := rentroll.ParseArea(p.r[field])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return a
}

// id reads an identifier, dropping the ".0" real columns add to integers.
func (p *cellParser) id(field string) string {
	return strings.TrimSuffix(p.r[field], ".0")
}

func amendmentFromRow(r row) (rentroll.Amendment, error) {
	p := cellParser{r: r}
	rec := rentroll.AmendmentRecord{
		Property:   p.id("property"),
		Tenant:     p.id("tenant"),
		ID:         p.id("id"),
		Sequence:   p.integer("sequence"),
		Status:     rentroll.ParseStatus(r["status"]),
		Type:       rentroll.ParseAmendmentType(r["type"]),
		Start:      p.day("start"),
		End:        p.day("end"),
		Area:       p.area("area").Decimal(),
		Signed:     p.day("signed"),
		TermMonths: p.integer("term_months"),
		Unit:       r["unit"],
	}
	if p.err != nil {
		return rentroll.Amendment{}, p.err
	}
	return rec.Amendment()
}

func chargeFromRow(r row, currency string) (rentroll.Charge, error) {
	p := cellParser{r: r}
	amount, err := rentroll.ParseMoney(r["amount"], "")
	if err != nil {
		return rentroll.Charge{}, err
	}
	freq, err := rentroll.ParseFrequency(r["frequency"])
	if err != nil {
		return rentroll.Charge{}, err
	}
	rec := rentroll.ChargeRecord{
		AmendmentID: p.id("amendment_id"),
		Code:        r["code"],
		Amount:      amount.Decimal(),
		Currency:    r["currency"],
		Frequency:   freq,
		From:        p.day("from"),
		To:          p.day("to"),
	}
	if p.err != nil {
		return rentroll.Charge{}, p.err
	}
	return rec.Charge(currency)
}

func propertyFromRow(r row) (rentroll.Property, error) {
	p := cellParser{r: r}
	prop := rentroll.Property{
		ID:           p.id("id"),
		Name:         r["name"],
		RentableArea: p.area("rentable_area"),
		Acquired:     p.day("acquired"),
		Disposed:     p.day("disposed"),
	}
	if p.err != nil {
		return rentroll.Property{}, p.err
	}
	if prop.ID == "" {
		return rentroll.Property{}, errors.New("missing property id")
	}
	return prop, nil
}
