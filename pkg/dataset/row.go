package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is an ordered mapping from column name to [Value]. Key order is the
// order in which fields were first set, which for decoded rows is the order
// they appear in the source document.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow builds a row from parallel key and value slices.
// Later duplicates overwrite earlier values but keep the first position.
func NewRow(keys []string, values []Value) Row {
	r := Row{values: make(map[string]Value, len(keys))}
	for i, k := range keys {
		var v Value
		if i < len(values) {
			v = values[i]
		}
		r.Set(k, v)
	}
	return r
}

// RowOf builds a row from alternating key, value pairs. Values are converted
// with [FromAny]; it panics on a malformed pair list and is meant for tests
// and literals.
func RowOf(pairs ...any) Row {
	if len(pairs)%2 != 0 {
		panic("dataset.RowOf: odd number of arguments")
	}
	var r Row
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("dataset.RowOf: key %v is not a string", pairs[i]))
		}
		v, err := FromAny(pairs[i+1])
		if err != nil {
			panic(fmt.Sprintf("dataset.RowOf: %v", err))
		}
		r.Set(k, v)
	}
	return r
}

// Set assigns v to column k, appending k to the key order if new.
// Setting an absent value removes the column.
func (r *Row) Set(k string, v Value) {
	if v.IsAbsent() {
		r.Delete(k)
		return
	}
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[k]; !ok {
		r.keys = append(r.keys, k)
	}
	r.values[k] = v
}

// Delete removes column k from the row.
func (r *Row) Delete(k string) {
	if _, ok := r.values[k]; !ok {
		return
	}
	delete(r.values, k)
	for i, key := range r.keys {
		if key == k {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value in column k, or an absent value.
func (r Row) Get(k string) Value { return r.values[k] }

// Has reports whether column k is present.
func (r Row) Has(k string) bool {
	_, ok := r.values[k]
	return ok
}

// Keys returns the column names in insertion order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.keys) }

// MarshalJSON encodes the row as an object, preserving key order.
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
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	row, err := decodeRow(dec)
	if err != nil {
		return err
	}
	*r = row
	return nil
}

func decodeRow(dec *json.Decoder) (Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return Row{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Row{}, fmt.Errorf("row must be an object, got %v", tok)
	}
	row := Row{values: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Row{}, fmt.Errorf("invalid object key %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return Row{}, err
		}
		if _, ok := tok.(json.Delim); ok {
			return Row{}, fmt.Errorf("column %q: nested objects and arrays are not supported", key)
		}
		v, err := FromAny(tok)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %w", key, err)
		}
		row.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return Row{}, err
	}
	return row, nil
}
