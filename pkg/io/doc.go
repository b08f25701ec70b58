// Package io imports tabular files as datasets and writes datasets as JSON.
//
// # Formats
//
//   - .json: an array of objects, or an envelope {"name", "uploadDate", "rows"}
//   - .csv, .tsv: a header row followed by data rows
//   - .xlsx: the first sheet (or a named one); the first non-empty row is the
//     header
//
// Object key order and header order are preserved, so the first column of
// the source is the first column of every row.
//
// # Cell Typing
//
// Spreadsheet cells arrive as text. They are typed the way a spreadsheet
// would display them: integers and decimals become numbers, "true" and
// "false" become booleans, everything else stays a string. Empty cells are
// left out of the row entirely, so the column is absent rather than blank.
//
// # Usage
//
//	d, err := io.ImportFile("sales.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportJSON(d, "sales.json")
package io
