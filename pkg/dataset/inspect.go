package dataset

import (
	"encoding/json"
	"math"
	"slices"
)

// Schema describes the columns of a dataset.
type Schema struct {
	// Columns are the keys of the first row, in order.
	Columns []string `json:"columns"`

	// NumericColumns is the subsequence of Columns holding a number in at
	// least one row.
	NumericColumns []string `json:"numericColumns"`
}

// Inspect derives the schema of d. It never modifies d.
//
// Columns missing from row 0 are never discovered, even if later rows have
// them. An empty or nil dataset yields an empty schema.
func Inspect(d *Dataset) Schema {
	s := Schema{Columns: []string{}, NumericColumns: []string{}}
	if d.Empty() {
		return s
	}
	s.Columns = d.Rows[0].Keys()
	for _, col := range s.Columns {
		for _, row := range d.Rows {
			if row.Get(col).IsNumber() {
				s.NumericColumns = append(s.NumericColumns, col)
				break
			}
		}
	}
	return s
}

// Empty reports whether the schema has no columns.
func (s Schema) Empty() bool { return len(s.Columns) == 0 }

// HasColumn reports whether col is one of the columns.
func (s Schema) HasColumn(col string) bool { return slices.Contains(s.Columns, col) }

// IsNumeric reports whether col is a numeric column.
func (s Schema) IsNumeric(col string) bool { return slices.Contains(s.NumericColumns, col) }

// Summary holds the bookkeeping figures recorded for an uploaded dataset.
type Summary struct {
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
	SizeKB  float64 `json:"fileSize"`
}

// Summarize computes the row count, the column count of row 0 and the size
// of the JSON encoding of the rows in kilobytes, rounded to one decimal.
func Summarize(d *Dataset) Summary {
	var s Summary
	if d == nil {
		return s
	}
	s.Rows = len(d.Rows)
	if s.Rows > 0 {
		s.Columns = d.Rows[0].Len()
	}
	rows := d.Rows
	if rows == nil {
		rows = []Row{}
	}
	if data, err := json.Marshal(rows); err == nil {
		s.SizeKB = math.Round(float64(len(data))/1024*10) / 10
	}
	return s
}
