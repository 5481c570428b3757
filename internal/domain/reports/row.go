// Package reports provides report export (CSV, XLSX), row filtering and report
// e-mail requests.
package reports

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"invoicely/internal/core/types"
)

// Field is one cell of a report row.
type Field struct {
	Key   string
	Value any
}

// Row is a report row that keeps its keys in the order they were produced.
// Column order of an export is the key order of the first row.
type Row []Field

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of key in place, or appends it.
func (r Row) Set(key string, value any) Row {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Key: key, Value: value})
}

// Keys returns the row's keys in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Map returns the row as a plain map with numbers converted to float64.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = plain(f.Value)
	}
	return m
}

func plain(v any) any {
	switch x := v.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case decimal.Decimal:
		return x.InexactFloat64()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = plain(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = plain(vv)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the row as a JSON object in key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Numbers are kept as
// json.Number so they format without float drift.
func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("report row must be an object")
	}

	row := Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("report row: unexpected key token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("report row %q: %w", key, err)
		}
		row = row.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

// numeric reports whether v is a number and returns it as a decimal.
// Strings are never numeric, even when they look like numbers.
func numeric(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case decimal.Decimal:
		return x, true
	case types.Amount:
		return x.Decimal, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case types.Quantity:
		return x.Decimal(), true
	default:
		return decimal.Zero, false
	}
}

// FormatCell renders a cell for export: numbers with exactly 2 decimals, nil as
// empty, composite values as JSON, everything else with %v.
func FormatCell(v any) string {
	if d, ok := numeric(v); ok {
		return types.Format2(d)
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]any, []any, Row:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
