package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/provmap/pkg/io"
	"github.com/matzehuels/provmap/pkg/rows"
)

// Table output formats of the rows command.
const (
	rowsTable = "table"
	rowsJSON  = "json"
	rowsCSV   = "csv"
)

// rowsCommand creates the rows command, which prints the flattened tables.
func (c *CLI) rowsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rows <province>",
		Short: "Print the city and connection rows of a province",
		Long: `Print the two tables the map is drawn from: one row per city with its
coordinates, and one row per connection with the coordinates of both ends.

--format table (default) prints styled tables, json prints both tables as one
document, csv prints the city table, a blank line, then the connection table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case rowsTable, rowsJSON, rowsCSV:
			default:
				return fmt.Errorf("invalid format: %q (must be table, json or csv)", format)
			}
			return c.runRows(cmd.Context(), args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", rowsTable, "output format: table, json, csv")

	return cmd
}

func (c *CLI) runRows(ctx context.Context, province, format string) error {
	ds, ok := c.loadDataset(ctx)
	if !ok {
		return errReported
	}
	policy, err := c.Config.Policy()
	if err != nil {
		return err
	}

	rep := c.reporter()
	r, err := rows.Build(ds, province, rows.Options{Policy: policy, Reporter: rep})
	if err != nil {
		rep.Error(err)
		return errReported
	}

	switch format {
	case rowsJSON:
		return pio.WriteJSON(r, stdout)
	case rowsCSV:
		if err := pio.WriteNodesCSV(r, stdout); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		return pio.WriteEdgesCSV(r, stdout)
	}

	fmt.Fprintln(stdout, StyleTitle.Render(province))
	fmt.Fprintln(stdout, StyleDim.Render(fmt.Sprintf("%d cities", len(r.Nodes))))
	fmt.Fprintln(stdout, renderNodeTable(r))
	printNewline()
	fmt.Fprintln(stdout, StyleDim.Render(fmt.Sprintf("%d connections", len(r.Edges))))
	fmt.Fprintln(stdout, renderEdgeTable(r))
	return nil
}
