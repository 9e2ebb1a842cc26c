package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
)

// provincesCommand lists the provinces of the dataset.
func (c *CLI) provincesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "provinces",
		Short: "List the provinces of the dataset",
		Long: `List the provinces of the dataset with their city and connection counts.

The Selector column shows whether a province is offered by the selector
(the provinces setting). Selector entries missing from the dataset are listed
at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProvinces(cmd.Context())
		},
	}
}

func (c *CLI) runProvinces(ctx context.Context) error {
	ds, ok := c.loadDataset(ctx)
	if !ok {
		return errReported
	}

	selector := c.Config.Provinces
	t := newTable([]string{"Province", "Cities", "Connections", "Selector"}, 1, 2)
	for _, p := range ds.Provinces() {
		mark := ""
		if slices.Contains(selector, p.Name) {
			mark = iconSuccess
		}
		t.Row(p.Name, strconv.Itoa(p.Len()), strconv.Itoa(p.ConnectionCount()), mark)
	}
	var missing []string
	for _, name := range selector {
		if _, ok := ds.Province(name); !ok {
			missing = append(missing, name)
			t.Row(name, "-", "-", iconError)
		}
	}
	fmt.Fprintln(stdout, t.Render())

	printDetail("%d provinces", ds.Len())
	for _, name := range missing {
		printWarning("selector province %q is not in the dataset", name)
	}
	return nil
}
