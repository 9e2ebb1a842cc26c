// Package config loads provmap settings.
//
// Settings are resolved in layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (provmap.toml in the working directory or
//     $XDG_CONFIG_HOME/provmap/, or an explicit path)
//  3. a .env file in the working directory, if present
//  4. PROVMAP_* environment variables
//
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/provmap/pkg/dataset"
	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/geo"
	"github.com/matzehuels/provmap/pkg/render/deck"
	"github.com/matzehuels/provmap/pkg/rows"
)

// FileName is the configuration file looked up by [Find].
const FileName = "provmap.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROVMAP_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// DefaultCacheTTL is how long rendered artifacts are kept.
const DefaultCacheTTL = 24 * time.Hour

// Config is the full provmap configuration.
type Config struct {
	Data      Data       `toml:"data"`
	Provinces []string   `toml:"provinces"`
	Dangling  string     `toml:"dangling"`
	Title     string     `toml:"title"`
	View      View       `toml:"view"`
	Style     deck.Style `toml:"style"`
	Mapbox    Mapbox     `toml:"mapbox"`
	Server    Server     `toml:"server"`
	Cache     Cache      `toml:"cache"`
}

// Data selects where the dataset is read from. A non-empty MongoURI takes
// precedence over SQLDSN, which takes precedence over Path.
type Data struct {
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	SQLDriver       string `toml:"sql_driver"`
	SQLDSN          string `toml:"sql_dsn"`
}

// View is the initial camera. With Fit set, the camera is centred on the
// selected province instead.
type View struct {
	geo.View
	Fit bool `toml:"fit"`
}

// Mapbox holds base map credentials.
type Mapbox struct {
	Token string `toml:"token"`
}

// Server configures `provmap serve`.
type Server struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Cache configures artifact caching. KeyPrefix separates deployments that
// share one backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	KeyPrefix     string   `toml:"key_prefix"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration: the West Java selector over
// province_data.json with the standard map styling.
func Default() *Config {
	return &Config{
		Data:      Data{Path: dataset.DefaultFilename},
		Provinces: []string{"West Java"},
		Dangling:  rows.HardFail.String(),
		Title:     deck.DefaultTitle,
		View:      View{View: deck.DefaultView()},
		Style:     deck.DefaultStyle(),
		Server:    Server{Addr: ":8080", ShutdownTimeout: Duration{10 * time.Second}},
		Cache: Cache{
			Backend:   CacheFile,
			TTL:       Duration{DefaultCacheTTL},
			RedisAddr: "localhost:6379",
		},
	}
}

// Policy returns the configured dangling-connection policy.
func (c *Config) Policy() (rows.Policy, error) {
	return rows.ParsePolicy(c.Dangling)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Data.Path == "" && c.Data.MongoURI == "" && c.Data.SQLDSN == "" {
		return perrors.New(perrors.ErrCodeInvalidConfig, "no dataset configured: set data.path, data.mongo_uri or data.sql_dsn")
	}
	if c.Style.Radius <= 0 || c.Style.LineWidth <= 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "style.radius and style.line_width must be positive")
	}
	return nil
}

// Load builds the configuration from all layers. An empty path searches the
// default locations and proceeds with defaults if none exists; an explicit
// path that does not exist is a FILE_NOT_FOUND error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load without the .env layer, reading the environment through
// lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Find()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first existing default config file, or "".
func Find() string {
	candidates := []string{FileName}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Dir returns the provmap config directory ($XDG_CONFIG_HOME/provmap).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "provmap"), nil
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		return perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return perrors.New(perrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("DATA", &c.Data.Path)
	str("MONGO_URI", &c.Data.MongoURI)
	str("MONGO_DATABASE", &c.Data.MongoDatabase)
	str("MONGO_COLLECTION", &c.Data.MongoCollection)
	str("SQL_DRIVER", &c.Data.SQLDriver)
	str("SQL_DSN", &c.Data.SQLDSN)
	str("DANGLING", &c.Dangling)
	str("TITLE", &c.Title)
	str("MAPBOX_TOKEN", &c.Mapbox.Token)
	str("ADDR", &c.Server.Addr)
	str("CACHE", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_PREFIX", &c.Cache.KeyPrefix)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)

	if v, ok := lookup(EnvPrefix + "PROVINCES"); ok {
		c.Provinces = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%sREDIS_DB", EnvPrefix)
		}
		c.Cache.RedisDB = n
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", EnvPrefix)
		}
	}
	if v, ok := lookup(EnvPrefix + "FIT_VIEW"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%sFIT_VIEW", EnvPrefix)
		}
		c.View.Fit = b
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
