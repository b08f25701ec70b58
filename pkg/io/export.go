package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/chartdeck/pkg/dataset"
)

// WriteJSON encodes d in envelope form and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(d *dataset.Dataset, w io.Writer) error {
	out := d
	if out.Rows == nil {
		cp := *d
		cp.Rows = []dataset.Row{}
		out = &cp
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes d to the file at path, creating or truncating it.
func ExportJSON(d *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
