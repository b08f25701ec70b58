// Package dataset models tabular data as an ordered sequence of rows whose
// cells are dynamically typed scalars, and inspects it for charting.
//
// # Values
//
// A [Value] is absent, null, a number, a string or a boolean. Numbers are
// recognised by type only: the string "42" is not numeric. Two coercions are
// provided because charting needs both:
//
//   - [Value.Text] produces category labels and aggregation keys
//   - [Value.Float] produces coordinates and summands
//
// # Inspection
//
// [Inspect] derives a [Schema] from a dataset. Columns come from the first
// row only; a column is numeric when any row holds a number in it:
//
//	schema := dataset.Inspect(d)
//	fmt.Println(schema.Columns, schema.NumericColumns)
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Dataset is an ordered sequence of rows plus descriptive metadata.
type Dataset struct {
	// Name is a human-readable label, typically the source file name.
	// Exports use it as their base file name.
	Name string `json:"name"`

	// UploadDate is passed through untouched.
	UploadDate string `json:"uploadDate,omitempty"`

	Rows []Row `json:"rows"`
}

// New creates a dataset with the given name and rows.
func New(name string, rows ...Row) *Dataset {
	return &Dataset{Name: name, Rows: rows}
}

// Len returns the number of rows. A nil dataset has zero rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool { return d.Len() == 0 }

// Head returns at most n rows from the start of the dataset.
// A non-positive n returns every row.
func (d *Dataset) Head(n int) []Row {
	if d == nil {
		return nil
	}
	if n <= 0 || n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[:n]
}

// DecodeRows reads a JSON array of objects from r.
func DecodeRows(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return decodeRowArray(dec)
}

func decodeRowArray(dec *json.Decoder) ([]Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("decode rows: expected an array of objects")
	}
	var rows []Row
	for dec.More() {
		row, err := decodeRow(dec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// UnmarshalJSON accepts either the envelope form
// {"name": ..., "uploadDate": ..., "rows": [...]} or a bare array of rows.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		rows, err := DecodeRows(bytes.NewReader(trimmed))
		if err != nil {
			return err
		}
		d.Rows = rows
		return nil
	}

	var env struct {
		Name       string          `json:"name"`
		FileName   string          `json:"fileName"`
		UploadDate string          `json:"uploadDate"`
		Rows       json.RawMessage `json:"rows"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	d.Name = env.Name
	if d.Name == "" {
		d.Name = env.FileName
	}
	d.UploadDate = env.UploadDate

	raw := env.Rows
	if len(raw) == 0 {
		raw = env.Data
	}
	d.Rows = nil
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	rows, err := DecodeRows(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	d.Rows = rows
	return nil
}
