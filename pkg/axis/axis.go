// Package axis chooses default X and Y columns for a chart.
//
// Defaults only fill unset fields: a user's explicit choice is never
// overwritten, so [SelectDefaults] is idempotent. What happens to a choice
// that no longer matches the data (after switching datasets, say) is governed
// by a [Policy].
package axis

import (
	"fmt"

	"github.com/matzehuels/chartdeck/pkg/dataset"
)

// Selection is the current X/Y column choice. An empty string means unset.
type Selection struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// IsSet reports whether both axes are chosen.
func (s Selection) IsSet() bool { return s.X != "" && s.Y != "" }

func (s Selection) String() string {
	x, y := s.X, s.Y
	if x == "" {
		x = "-"
	}
	if y == "" {
		y = "-"
	}
	return fmt.Sprintf("x=%s y=%s", x, y)
}

// Policy decides what to do with a selection naming columns that are not in
// the current schema.
type Policy string

const (
	// KeepStale leaves stale selections alone. Builders then read an absent
	// column and produce blank labels or zero values.
	KeepStale Policy = "keep"

	// ClearStale resets an X that is not a column, and a Y that is not a
	// numeric column, before defaults are applied.
	ClearStale Policy = "clear"
)

// ParsePolicy converts a configuration string to a Policy.
// The empty string selects KeepStale.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", KeepStale:
		return KeepStale, nil
	case ClearStale:
		return ClearStale, nil
	}
	return "", fmt.Errorf("invalid stale axis policy %q (must be one of: keep, clear)", s)
}

// Option configures [SelectDefaults].
type Option func(*selector)

type selector struct {
	policy Policy
}

// WithPolicy sets the stale selection policy (default KeepStale).
func WithPolicy(p Policy) Option {
	return func(s *selector) {
		if p != "" {
			s.policy = p
		}
	}
}

// SelectDefaults fills unset axes from the schema: X becomes the first column
// and Y the first numeric column. Fields that are already set are kept, and
// fields stay unset when the schema has nothing to offer.
func SelectDefaults(schema dataset.Schema, current Selection, opts ...Option) Selection {
	s := selector{policy: KeepStale}
	for _, opt := range opts {
		opt(&s)
	}

	out := current
	if s.policy == ClearStale {
		staleX, staleY := Stale(schema, out)
		if staleX {
			out.X = ""
		}
		if staleY {
			out.Y = ""
		}
	}
	if out.X == "" && len(schema.Columns) > 0 {
		out.X = schema.Columns[0]
	}
	if out.Y == "" && len(schema.NumericColumns) > 0 {
		out.Y = schema.NumericColumns[0]
	}
	return out
}

// Stale reports which set fields of sel refer to columns the schema does not
// offer: X must be a column and Y a numeric column.
func Stale(schema dataset.Schema, sel Selection) (x, y bool) {
	x = sel.X != "" && !schema.HasColumn(sel.X)
	y = sel.Y != "" && !schema.IsNumeric(sel.Y)
	return x, y
}

// Cycle returns the entry after current in options, wrapping around.
// An unknown or empty current yields the first option.
func Cycle(options []string, current string) string {
	if len(options) == 0 {
		return ""
	}
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
