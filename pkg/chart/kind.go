package chart

import (
	"fmt"
	"strings"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Kind is a chart kind.
type Kind string

const (
	KindBar      Kind = "bar"
	KindLine     Kind = "line"
	KindDoughnut Kind = "doughnut"
	KindScatter  Kind = "scatter"
)

// Kinds lists every chart kind in display order.
var Kinds = []Kind{KindBar, KindLine, KindDoughnut, KindScatter}

// ParseKind parses a chart kind. "pie" is accepted as an alias for doughnut.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBar, KindLine, KindDoughnut, KindScatter:
		return k, nil
	case "pie":
		return KindDoughnut, nil
	}
	return "", errors.New(errors.ErrCodeInvalidChartKind,
		"invalid chart kind: %q (must be one of: bar, line, doughnut, scatter)", s)
}

// Title returns the capitalised kind name used in chart titles.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Label returns the name shown on chart type pickers.
func (k Kind) Label() string {
	switch k {
	case KindDoughnut:
		return "Pie Chart"
	case KindScatter:
		return "Scatter Plot"
	default:
		return fmt.Sprintf("%s Chart", k.Title())
	}
}

// Next returns the kind after k in [Kinds], wrapping around.
func (k Kind) Next() Kind {
	for i, kind := range Kinds {
		if kind == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return Kinds[0]
}

// RowCap returns the number of leading rows a kind samples. Zero means the
// whole dataset.
//
// The caps are deliberately asymmetric: bar and line charts show the first
// 10 rows, scatter plots the first 50, while doughnut charts aggregate every
// row. A doughnut over a large dataset therefore reflects data the bar chart
// of the same dataset never shows.
func (k Kind) RowCap() int {
	switch k {
	case KindBar, KindLine:
		return SeriesRowCap
	case KindScatter:
		return ScatterRowCap
	default:
		return 0
	}
}
