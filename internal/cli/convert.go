package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/io"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a spreadsheet to dataset JSON",
		Long: `Convert a spreadsheet to dataset JSON.

Reads .json, .csv, .tsv or .xlsx and writes the {name, uploadDate, rows}
form the API accepts. Cells are typed the way a spreadsheet would type them:
numbers, true/false and text; empty cells are left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
			}
			if filepath.Clean(output) == filepath.Clean(input) {
				return fmt.Errorf("output %s would overwrite the input", output)
			}

			d, err := io.ImportFile(input)
			if err != nil {
				return err
			}
			if err := io.ExportJSON(d, output); err != nil {
				return err
			}

			loggerFromContext(cmd.Context()).Debug("converted", "input", input, "rows", d.Len())
			printSuccess("Converted %s", StyleHighlight.Render(d.Name))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with .json extension)")

	return cmd
}
