package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Extensions lists the file extensions ImportFile understands.
var Extensions = []string{".json", ".csv", ".tsv", ".xlsx"}

// ReadJSON decodes a dataset from r. Both the envelope form and a bare
// array of objects are accepted. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dataset.Dataset, error) {
	var d dataset.Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json dataset")
	}
	return &d, nil
}

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune
}

// ReadCSV reads a header row and data rows from r.
func ReadCSV(r io.Reader, opts CSVOptions) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}
	return fromRecords(records), nil
}

// ReadXLSX reads one sheet of a workbook from r. An empty sheet name selects
// the first sheet.
func ReadXLSX(r io.Reader, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open workbook")
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "workbook has no sheets")
		}
		sheet = sheets[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read sheet %q", sheet)
	}
	return fromRecords(records), nil
}

// Read reads a dataset from r, choosing the reader by the extension of
// filename. The dataset is named after filename unless a JSON envelope
// names it. Read does not close r.
func Read(r io.Reader, filename string) (*dataset.Dataset, error) {
	var (
		d   *dataset.Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		d, err = ReadJSON(r)
	case ".csv":
		d, err = ReadCSV(r, CSVOptions{})
	case ".tsv":
		d, err = ReadCSV(r, CSVOptions{Comma: '\t'})
	case ".xlsx":
		d, err = ReadXLSX(r, "")
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported file type %q (supported: %s)", ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = filepath.Base(filename)
	}
	return d, nil
}

// ImportFile reads the file at path with [Read] and stamps the dataset with
// the current time as its upload date.
func ImportFile(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	Stamp(d)
	return d, nil
}

// Stamp sets the upload date of d to now unless it already has one.
func Stamp(d *dataset.Dataset) {
	if d.UploadDate == "" {
		d.UploadDate = time.Now().UTC().Format(time.RFC3339)
	}
}

// fromRecords builds a dataset from a header row and data rows. Leading
// blank rows are skipped and the first non-blank row is the header; blank
// data rows are dropped.
func fromRecords(records [][]string) *dataset.Dataset {
	d := &dataset.Dataset{Rows: []dataset.Row{}}
	var header []string
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		if header == nil {
			header = headerNames(rec)
			continue
		}
		var row dataset.Row
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			if v, ok := parseCell(cell); ok {
				row.Set(header[i], v)
			}
		}
		if row.Len() > 0 {
			d.Rows = append(d.Rows, row)
		}
	}
	return d
}

// headerNames trims header cells, names blank ones "column<N>" and suffixes
// duplicates with "_2", "_3", ...
func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	seen := make(map[string]int, len(rec))
	for i, cell := range rec {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		names[i] = name
	}
	return names
}

// parseCell types one spreadsheet cell. Empty cells report false.
func parseCell(s string) (dataset.Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dataset.Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return dataset.Number(float64(i)), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return dataset.Number(f), true
	}
	switch strings.ToLower(s) {
	case "true":
		return dataset.Bool(true), true
	case "false":
		return dataset.Bool(false), true
	}
	return dataset.String(s), true
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
