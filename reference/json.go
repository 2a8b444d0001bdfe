package reference

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/rentroll"
)

// ReadJSON reads a JSON reference export. The records are the values m.Records selects
// in the document; each field is read with its column path relative to one record.
func ReadJSON(r io.Reader, source string, m Mapping) ([]rentroll.ReferenceRecord, []rentroll.Rejection, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding %s: %v", rentroll.ErrMalformedInput, source, err)
	}
	path := m.Records
	if path == "" {
		path = "$[*]"
	}
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: records %q of %s: %v", rentroll.ErrMalformedInput, path, source, err)
	}
	items, ok := jval.([]any)
	if !ok {
		items = []any{jval}
	}

	c := m.Columns
	var (
		records    []rentroll.ReferenceRecord
		rejections []rentroll.Rejection
	)
	for i, item := range items {
		line := i + 1
		rec, err := m.record(fields{
			property:     lookup(c.Property, item),
			propertyName: lookup(c.PropertyName, item),
			tenant:       lookup(c.Tenant, item),
			unit:         lookup(c.Unit, item),
			monthly:      lookup(c.MonthlyRent, item),
			annual:       lookup(c.AnnualRent, item),
			area:         lookup(c.Area, item),
		}, line)
		if err != nil {
			rejections = append(rejections, rentroll.Rejection{Source: source, Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, rejections, nil
}

// lookup evaluates a column path on one record and returns its text, "" when the path
// is empty or selects nothing. A path not starting with '$' is a key of the record,
// matched like a table label.
func lookup(path string, item any) string {
	if path == "" {
		return ""
	}
	var jval any
	if strings.HasPrefix(path, "$") {
		v, err := jsonpath.Get(path, item)
		if err != nil {
			return ""
		}
		jval = v
	} else {
		obj, ok := item.(map[string]any)
		if !ok {
			return ""
		}
		want := label(path)
		for _, k := range slices.Sorted(maps.Keys(obj)) {
			if label(k) == want {
				jval = obj[k]
				break
			}
		}
	}
	// jsonpath may return a list of one answer or the answer itself: keep the first one.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return ""
		}
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
