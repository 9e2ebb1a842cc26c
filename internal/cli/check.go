package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/provmap/pkg/dataset"
)

// checkCommand validates the dataset without rendering anything.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report dangling connections and skipped dataset entries",
		Long: `Check the dataset for problems that affect rendering:

  - entries skipped while loading (bad coordinates, malformed records,
    duplicate city names)
  - connections naming a city that is not in the same province

The command exits with a non-zero status if anything was found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context())
		},
	}
}

func (c *CLI) runCheck(ctx context.Context) error {
	// Quarantined entries are reported as warnings while loading.
	ds, ok := c.loadDataset(ctx)
	if !ok {
		return errReported
	}

	dangling := dataset.Check(ds)
	for _, d := range dangling {
		printWarning("%s: %s lists unknown city %s", d.Province, d.City, d.Target)
	}

	if n := len(ds.Issues()) + len(dangling); n > 0 {
		printError("%d problems in %d provinces", n, ds.Len())
		if len(dangling) > 0 {
			printNextStep("Render without the dangling connections", "provmap render --skip-dangling")
		}
		return errReported
	}
	printSuccess("Dataset OK")
	printDetail("%d provinces", ds.Len())
	return nil
}
