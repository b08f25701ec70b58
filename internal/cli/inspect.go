package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/axis"
	"github.com/matzehuels/chartdeck/pkg/dataset"
	"github.com/matzehuels/chartdeck/pkg/io"
)

// inspection is the JSON form of the inspect command's output.
type inspection struct {
	Name    string          `json:"name"`
	Schema  dataset.Schema  `json:"schema"`
	Axes    axis.Selection  `json:"axes"`
	Summary dataset.Summary `json:"summary"`
	Preview dataset.Preview `json:"preview"`
}

func inspect(d *dataset.Dataset, previewRows int) inspection {
	schema := dataset.Inspect(d)
	return inspection{
		Name:    d.Name,
		Schema:  schema,
		Axes:    axis.SelectDefaults(schema, axis.Selection{}),
		Summary: dataset.Summarize(d),
		Preview: dataset.NewPreview(d, previewRows, 0),
	}
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		rows   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the columns of a dataset and the axes a chart would use",
		Long: `Show the columns of a dataset and the axes a chart would use.

Columns are taken from the first row. A column is numeric when any row holds
a number in it. The default X axis is the first column and the default Y axis
the first numeric column.

Supported inputs: .json, .csv, .tsv, .xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], rows, asJSON)
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", dataset.PreviewRows, "number of preview rows")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inspection as JSON")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, rows int, asJSON bool) error {
	logger := loggerFromContext(ctx)

	d, err := io.ImportFile(input)
	if err != nil {
		return err
	}
	logger.Debug("imported dataset", "name", d.Name, "rows", d.Len())

	res := inspect(d, rows)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Println(StyleTitle.Render(res.Name))
	printDatasetStats(res.Summary.Rows, res.Summary.Columns, res.Summary.SizeKB)
	printNewline()

	if res.Schema.Empty() {
		printWarning("No data available")
		return nil
	}

	fmt.Println(renderTable([]string{"Column", "Type", "Sample"}, columnRows(d, res.Schema), map[int]bool{}))
	printNewline()

	printKeyValue("X axis", res.Axes.X)
	if res.Axes.Y == "" {
		printKeyValue("Y axis", StyleWarning.Render("no numeric columns"))
	} else {
		printKeyValue("Y axis", res.Axes.Y)
	}

	if len(res.Preview.Cells) > 0 {
		printNewline()
		highlight := map[int]bool{}
		for i, col := range res.Preview.Columns {
			highlight[i] = res.Schema.IsNumeric(col)
		}
		fmt.Println(renderTable(res.Preview.Columns, res.Preview.Cells, highlight))
	}

	printNewline()
	printNextStep("Build a chart", fmt.Sprintf("%s chart %s -x %s -y %s", appName, input, res.Axes.X, res.Axes.Y))
	return nil
}

// columnRows lists each column with its type and the value in the first row.
func columnRows(d *dataset.Dataset, schema dataset.Schema) [][]string {
	first := d.Rows[0]
	out := make([][]string, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		typ := "text"
		if schema.IsNumeric(col) {
			typ = StyleNumber.Render("numeric")
		}
		out = append(out, []string{col, typ, first.Get(col).Text()})
	}
	return out
}
