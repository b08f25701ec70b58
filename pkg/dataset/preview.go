package dataset

import "math"

// Preview limits used by dashboards and the inspect command.
const (
	PreviewRows    = 5
	PreviewColumns = 4
)

// Preview is a small text grid of the first rows and columns of a dataset.
type Preview struct {
	Columns []string   `json:"columns"`
	Cells   [][]string `json:"cells"`
}

// NewPreview renders up to rows x cols cells of d as text. Falsy cells
// (absent, null, zero, NaN, false and "") render as "".
func NewPreview(d *Dataset, rows, cols int) Preview {
	schema := Inspect(d)
	p := Preview{Columns: schema.Columns, Cells: [][]string{}}
	if cols > 0 && len(p.Columns) > cols {
		p.Columns = p.Columns[:cols]
	}
	for _, row := range d.Head(rows) {
		line := make([]string, len(p.Columns))
		for i, col := range p.Columns {
			v := row.Get(col)
			if truthy(v) {
				line[i] = v.Text()
			}
		}
		p.Cells = append(p.Cells, line)
	}
	return p
}

func truthy(v Value) bool {
	switch v.Kind() {
	case KindNumber:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	case KindString:
		return v.Text() != ""
	case KindBool:
		return v.Float() == 1
	default:
		return false
	}
}
