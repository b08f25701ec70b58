package cli

import (
	"testing"

	"github.com/matzehuels/chartdeck/pkg/dataset"
)

func TestInspect(t *testing.T) {
	d := dataset.New("sales.csv",
		dataset.RowOf("city", "A", "sales", 10.0, "units", 3.0),
		dataset.RowOf("city", "B", "sales", 30.0, "units", 7.0),
		dataset.RowOf("city", "C", "sales", 5.0, "units", 1.0),
	)

	res := inspect(d, 2)
	if res.Name != "sales.csv" {
		t.Errorf("Name = %q", res.Name)
	}
	if res.Axes.X != "city" || res.Axes.Y != "sales" {
		t.Errorf("Axes = %+v, want city/sales", res.Axes)
	}
	if res.Summary.Rows != 3 || res.Summary.Columns != 3 {
		t.Errorf("Summary = %+v", res.Summary)
	}
	if len(res.Preview.Cells) != 2 {
		t.Errorf("preview rows = %d, want 2", len(res.Preview.Cells))
	}
	if len(res.Preview.Columns) != 3 {
		t.Errorf("preview columns = %v, want all three", res.Preview.Columns)
	}
}

func TestInspectTextOnly(t *testing.T) {
	d := dataset.New("names.csv", dataset.RowOf("name", "ada"), dataset.RowOf("name", "alan"))

	res := inspect(d, dataset.PreviewRows)
	if res.Axes.X != "name" || res.Axes.Y != "" {
		t.Errorf("Axes = %+v, want name and no Y", res.Axes)
	}

	rows := columnRows(d, res.Schema)
	if len(rows) != 1 || rows[0][0] != "name" || rows[0][1] != "text" || rows[0][2] != "ada" {
		t.Errorf("columnRows() = %v", rows)
	}
}

func TestInspectEmpty(t *testing.T) {
	res := inspect(dataset.New("empty.json"), dataset.PreviewRows)
	if !res.Schema.Empty() || res.Axes.X != "" {
		t.Errorf("inspect(empty) = %+v", res)
	}
}
