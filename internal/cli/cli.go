// Package cli implements the provmap command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/provmap/pkg/buildinfo"
	"github.com/matzehuels/provmap/pkg/cache"
	"github.com/matzehuels/provmap/pkg/config"
	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/pipeline"
	"github.com/matzehuels/provmap/pkg/report"
	"github.com/matzehuels/provmap/pkg/rows"
)

// appName is the application name used for directories and display.
const appName = "provmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("errors were reported")

// Reported reports whether err was already printed by the CLI, so that the
// caller only needs to set the exit status.
func Reported(err error) bool { return errors.Is(err, errReported) }

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is resolved before any subcommand runs.
	Config *config.Config

	flags globalFlags
}

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath   string
	dataPath     string
	mongoURI     string
	skipDangling bool
	verbose      bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "provmap draws the cities of a province and their connections on a map",
		Long: `provmap reads a dataset of provinces, cities and city connections and
renders the selected province as an interactive deck.gl map, as GeoJSON,
as tables or as a node-link diagram.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&c.flags.configPath, "config", "c", "", "config file (default: ./provmap.toml or $XDG_CONFIG_HOME/provmap/provmap.toml)")
	pf.StringVarP(&c.flags.dataPath, "data", "d", "", "dataset file (default: "+dataset.DefaultFilename+")")
	pf.StringVar(&c.flags.mongoURI, "mongo-uri", "", "read the dataset from MongoDB instead of a file")
	pf.BoolVar(&c.flags.skipDangling, "skip-dangling", false, "skip connections to unknown cities with a warning instead of failing")

	root.AddCommand(c.provincesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.rowsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration and applies the global flags on top.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	if c.flags.dataPath != "" {
		cfg.Data.Path = c.flags.dataPath
		cfg.Data.MongoURI = ""
		cfg.Data.SQLDSN = ""
	}
	if c.flags.mongoURI != "" {
		cfg.Data.MongoURI = c.flags.mongoURI
	}
	if c.flags.skipDangling {
		cfg.Dangling = rows.SkipAndWarn.String()
	}
	c.Config = cfg
	c.Logger.Debug("configuration loaded", "data", cfg.Data.Path, "mongo", cfg.Data.MongoURI != "", "sql", cfg.Data.SQLDSN != "", "dangling", cfg.Dangling)
	return nil
}

// reporter returns the reporter commands hand to the core packages.
func (c *CLI) reporter() report.Reporter { return uiReporter{c: c} }

// =============================================================================
// Dataset & Runner Factories
// =============================================================================

// loadDataset reads the configured dataset once. A failed load has already
// been reported when ok is false; the returned dataset is then empty.
func (c *CLI) loadDataset(ctx context.Context) (ds *dataset.Dataset, ok bool) {
	rec := report.NewRecorder()
	rep := report.Tee(c.reporter(), rec)

	src, closeSrc, err := c.source(ctx)
	if err != nil {
		rep.Error(err)
		return dataset.Empty(), false
	}
	defer closeSrc()

	ds = pipeline.Load(ctx, src, rep, c.Logger)
	return ds, len(rec.Errors()) == 0
}

// serveDataset loads the dataset for the server, reporting through rep
// instead of the terminal.
func (c *CLI) serveDataset(ctx context.Context, rep report.Reporter) *dataset.Dataset {
	src, closeSrc, err := c.source(ctx)
	if err != nil {
		rep.Error(err)
		return dataset.Empty()
	}
	defer closeSrc()
	return pipeline.Load(ctx, src, rep, c.Logger)
}

// source returns the configured dataset source and a function releasing it.
func (c *CLI) source(ctx context.Context) (dataset.Source, func(), error) {
	d := c.Config.Data
	switch {
	case d.MongoURI != "":
		src, err := dataset.ConnectMongo(ctx, d.MongoURI, d.MongoDatabase, d.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close(context.Background()) }, nil
	case d.SQLDSN != "":
		src, err := dataset.OpenSQL(ctx, d.SQLDriver, d.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	}
	return dataset.FileSource{Path: d.Path}, func() {}, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, ds *dataset.Dataset, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if prefix := c.Config.Cache.KeyPrefix; prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	r := pipeline.NewRunner(ds, cc, keyer, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory disables caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.OpenRedis(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// pipelineOptions builds render options for province from the configuration.
func (c *CLI) pipelineOptions(province string) (pipeline.Options, error) {
	policy, err := c.Config.Policy()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Province:    province,
		Policy:      policy,
		View:        c.Config.View.View,
		FitView:     c.Config.View.Fit,
		Style:       c.Config.Style,
		Title:       c.Config.Title,
		MapboxToken: c.Config.Mapbox.Token,
		Reporter:    c.reporter(),
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/provmap/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
