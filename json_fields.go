package rentroll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonField is one member of an ordered JSON object. An omitEmpty field is skipped
// when its value is zero, or an empty map or slice.
type jsonField struct {
	key       string
	value     any
	omitEmpty bool
}

func field(key string, value any) jsonField    { return jsonField{key: key, value: value} }
func optional(key string, value any) jsonField { return jsonField{key: key, value: value, omitEmpty: true} }

func (f jsonField) empty() bool {
	v := reflect.ValueOf(f.value)
	if !v.IsValid() || v.IsZero() {
		return true
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return v.Len() == 0
	}
	return false
}

// jsonObject marshals its fields in order, unlike a map or a struct with computed
// members.
type jsonObject []jsonField

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for _, f := range o {
		if f.omitEmpty && f.empty() {
			continue
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.key, err)
		}
		if b.Len() > 1 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(f.key)
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
