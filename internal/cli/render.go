package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/provmap/pkg/pipeline"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	formats  string
	output   string
	noCache  bool
	refresh  bool
	detailed bool
	fit      bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [province]",
		Short: "Render a province as a map, GeoJSON, tables or a diagram",
		Long: `Render a province of the dataset.

Without a province argument an interactive selector lists the configured
provinces; quitting the selector renders nothing.

Formats: ` + strings.Join(pipeline.Formats, ", ") + `

Results are cached; --refresh re-renders and overwrites cached output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := pipeline.ParseFormats(flags.formats)
			for _, f := range formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			var province string
			if len(args) == 1 {
				province = args[0]
			}
			return c.runRender(cmd.Context(), province, formats, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s), comma-separated (default: html)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached output and render again")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label diagrams with coordinates, degrees and distances")
	cmd.Flags().BoolVar(&flags.fit, "fit", false, "centre the map on the province instead of the configured view")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, province string, formats []string, flags renderFlags) error {
	ds, ok := c.loadDataset(ctx)
	if !ok {
		return errReported
	}

	if province == "" {
		picked, err := pickProvince(c.Config.Provinces, ds)
		if err != nil {
			return err
		}
		if picked == "" {
			printInfo("No province selected")
			return nil
		}
		province = picked
	}

	opts, err := c.pipelineOptions(province)
	if err != nil {
		return err
	}
	opts.Formats = formats
	opts.Detailed = flags.detailed
	opts.Refresh = flags.refresh
	opts.FitView = opts.FitView || flags.fit

	runner, err := c.newRunner(ctx, ds, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	stop := spin(ctx, fmt.Sprintf("Rendering %s...", province))
	result, err := runner.Execute(ctx, opts)
	stop()
	if err != nil {
		opts.Reporter.Error(err)
		return errReported
	}
	prog.done("Rendered " + province)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		province:  province,
		output:    flags.output,
		cacheHit:  result.CacheHit,
		nodes:     result.Stats.Nodes,
		edges:     result.Stats.Edges,
	})
}

// artifactWriteParams describes the files written after a render.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	province  string
	output    string
	cacheHit  bool
	nodes     int
	edges     int
}

// writeArtifacts writes each artifact to disk and prints the paths.
func writeArtifacts(p artifactWriteParams) error {
	paths := outputPaths(p.formats, p.province, p.output)
	printSuccess("Rendered %s", p.province)
	printStats(p.nodes, p.edges, p.cacheHit)
	for _, f := range p.formats {
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPaths picks a file name per format. A single format with an output
// that has an extension is written there verbatim; otherwise output (or the
// province slug) is a base path that gets the format's extension.
func outputPaths(formats []string, province, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = slug(province)
	}
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

// slug turns a province name into a file name: "West Java" → "west-java".
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "province"
	}
	return s
}
