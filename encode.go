package rentroll

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/rentroll/date"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Input logs are JSONL files: one JSON object per line. A line that cannot be decoded or
// that misses a required field is rejected and reading goes on; only a failing reader
// stops the decoding.

// AmendmentRecord is the serialized form of an amendment.
type AmendmentRecord struct {
	Property   string          `json:"property" validate:"required"`
	Tenant     string          `json:"tenant" validate:"required"`
	ID         string          `json:"id" validate:"required"`
	Sequence   int             `json:"sequence" validate:"gte=0"`
	Status     Status          `json:"status" validate:"required"`
	Type       AmendmentType   `json:"type"`
	Start      date.Date       `json:"start"`
	End        date.Date       `json:"end"`
	Area       decimal.Decimal `json:"area"`
	Signed     date.Date       `json:"signed"`
	TermMonths int             `json:"termMonths" validate:"gte=0"`
	Unit       string          `json:"unit"`
}

// Amendment validates the record and returns its amendment.
func (r AmendmentRecord) Amendment() (Amendment, error) {
	if err := validateRecord(r); err != nil {
		return Amendment{}, err
	}
	return Amendment{
		Key:        LeaseKey{Property: strings.TrimSpace(r.Property), Tenant: strings.TrimSpace(r.Tenant)},
		ID:         strings.TrimSpace(r.ID),
		Sequence:   r.Sequence,
		Status:     r.Status,
		Type:       r.Type,
		Start:      r.Start,
		End:        r.End,
		Area:       A(r.Area),
		Signed:     r.Signed,
		TermMonths: r.TermMonths,
		Unit:       r.Unit,
	}, nil
}

// ChargeRecord is the serialized form of a charge schedule line.
type ChargeRecord struct {
	AmendmentID string          `json:"amendmentId" validate:"required"`
	Code        string          `json:"code" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Frequency   Frequency       `json:"frequency"`
	From        date.Date       `json:"from"`
	To          date.Date       `json:"to"`
}

// Charge validates the record and returns its charge in the run currency. A record
// naming another currency is rejected: amounts are never converted.
func (r ChargeRecord) Charge(currency string) (Charge, error) {
	if err := validateRecord(r); err != nil {
		return Charge{}, err
	}
	if !r.To.IsZero() && r.To.Before(r.From) {
		return Charge{}, fmt.Errorf("effective range %v ends before it starts", date.Range{From: r.From, To: r.To})
	}
	if r.Currency != "" && !strings.EqualFold(r.Currency, currency) {
		return Charge{}, fmt.Errorf("currency %s differs from the run currency %s", strings.ToUpper(r.Currency), currency)
	}
	return Charge{
		AmendmentID: strings.TrimSpace(r.AmendmentID),
		Code:        strings.TrimSpace(r.Code),
		Amount:      M(r.Amount, currency),
		Frequency:   r.Frequency,
		From:        r.From,
		To:          r.To,
	}, nil
}

// validateRecord checks struct tags and flattens the first failure into a short reason.
func validateRecord(r any) error {
	err := validate.Struct(r)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Errorf("field %s fails %q", f.Field(), f.Tag())
	}
	return err
}

// decodeLines calls parse on every non blank line of r. Lines parse fails on become
// rejections.
func decodeLines[T any](r io.Reader, source string, parse func([]byte) (T, error)) ([]T, []Rejection, error) {
	var (
		out        []T
		rejections []Rejection
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		v, err := parse(b)
		if err != nil {
			rejections = append(rejections, Rejection{Source: source, Line: line, Reason: err.Error()})
			continue
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading %s: %w", source, err)
	}
	return out, rejections, nil
}

// DecodeAmendments reads an amendment log.
func DecodeAmendments(r io.Reader, source string) ([]Amendment, []Rejection, error) {
	return decodeLines(r, source, func(b []byte) (Amendment, error) {
		var rec AmendmentRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return Amendment{}, err
		}
		return rec.Amendment()
	})
}

// DecodeCharges reads a charge schedule log. currency applies to lines without one.
func DecodeCharges(r io.Reader, source, currency string) ([]Charge, []Rejection, error) {
	return decodeLines(r, source, func(b []byte) (Charge, error) {
		var rec ChargeRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return Charge{}, err
		}
		return rec.Charge(currency)
	})
}

// DecodeProperties reads property metadata.
func DecodeProperties(r io.Reader, source string) ([]Property, []Rejection, error) {
	return decodeLines(r, source, func(b []byte) (Property, error) {
		var p Property
		if err := json.Unmarshal(b, &p); err != nil {
			return Property{}, err
		}
		if err := validateRecord(p); err != nil {
			return Property{}, err
		}
		return p, nil
	})
}

// EncodeAmendments writes amendments as JSONL in history order per lease key.
func EncodeAmendments(w io.Writer, amendments []Amendment) error {
	enc := json.NewEncoder(w)
	for _, a := range amendments {
		rec := AmendmentRecord{
			Property:   a.Key.Property,
			Tenant:     a.Key.Tenant,
			ID:         a.ID,
			Sequence:   a.Sequence,
			Status:     a.Status,
			Type:       a.Type,
			Start:      a.Start,
			End:        a.End,
			Area:       a.Area.Decimal(),
			Signed:     a.Signed,
			TermMonths: a.TermMonths,
			Unit:       a.Unit,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding amendment %q: %w", a.ID, err)
		}
	}
	return nil
}

// EncodeCharges writes charges as JSONL.
func EncodeCharges(w io.Writer, charges []Charge) error {
	enc := json.NewEncoder(w)
	for _, c := range charges {
		rec := ChargeRecord{
			AmendmentID: c.AmendmentID,
			Code:        c.Code,
			Amount:      c.Amount.Decimal(),
			Currency:    c.Amount.Currency(),
			Frequency:   c.Frequency,
			From:        c.From,
			To:          c.To,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding charge %s of %q: %w", c.Code, c.AmendmentID, err)
		}
	}
	return nil
}

// EncodeProperties writes property metadata as JSONL.
func EncodeProperties(w io.Writer, properties []Property) error {
	enc := json.NewEncoder(w)
	for _, p := range properties {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding property %q: %w", p.ID, err)
		}
	}
	return nil
}
