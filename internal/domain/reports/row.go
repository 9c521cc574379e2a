package reports

import (
	"bytes"
	"encoding/json"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/document"
)

// Column is one output column: JSON key, CSV header label and the
// projection reading its value from a joined document.
type Column struct {
	Key   string
	Label string
	Value func(d document.Doc) any
}

// Row is a flat, ordered record. Every column of the report is present even
// when the source field was missing.
type Row struct {
	keys   []string
	values map[string]any
}

// Project maps one joined document onto the report columns.
func Project(columns []Column, d document.Doc) Row {
	r := Row{
		keys:   make([]string, len(columns)),
		values: make(map[string]any, len(columns)),
	}
	for i, c := range columns {
		r.keys[i] = c.Key
		var v any
		if c.Value != nil {
			v = c.Value(d)
		}
		if v == nil {
			v = ""
		}
		r.values[c.Key] = v
	}
	return r
}

// NewRow builds a row from explicit key/value pairs in order.
func NewRow(kv ...any) Row {
	r := Row{values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		r.keys = append(r.keys, k)
		r.values[k] = kv[i+1]
	}
	return r
}

// Keys returns the column keys in output order.
func (r Row) Keys() []string { return r.keys }

// Get returns the value of a column.
func (r Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// MarshalJSON keeps the declared column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
