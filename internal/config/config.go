// Package config resolves the settings of an autodocs run from three
// layers: built-in defaults, an optional project config file, and the
// command-line flags the user actually set. Later layers win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/autodocs/internal/render"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{"autodocs.yml", "autodocs.yaml", "autodocs.toml"}

// Config is the resolved, read-only configuration for a run.
type Config struct {
	OutputDir    string      `yaml:"outputDir" toml:"outputDir"`
	Formats      []string    `yaml:"formats" toml:"formats"`
	Exclude      []string    `yaml:"exclude" toml:"exclude"`
	TemplatePath string      `yaml:"templatePath" toml:"templatePath"`
	Workers      int         `yaml:"workers" toml:"workers"`
	Strict       bool        `yaml:"strict" toml:"strict"`
	LogLevel     string      `yaml:"logLevel" toml:"logLevel"`
	Prose        ProseConfig `yaml:"prose" toml:"prose"`
	Watch        WatchConfig `yaml:"watch" toml:"watch"`
}

// ProseConfig configures the prose service client. An empty Endpoint
// runs without a prose service.
type ProseConfig struct {
	Endpoint string        `yaml:"endpoint" toml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputDir: "docs/autodocs",
		Formats:   []string{"markdown", "html", "json"},
		Exclude:   []string{".git", "node_modules", "vendor"},
		LogLevel:  "info",
		Prose: ProseConfig{
			Timeout: 60 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Find returns the first config file from FileNames present in dir, or ""
// when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadFile decodes path on top of base. The format follows the file
// extension: .toml is TOML, anything else YAML. Keys absent from the file
// keep their base values.
func LoadFile(base Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := base.clone()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Load reads the config file found in dir over the defaults. It returns
// the defaults (not an error) when dir has no config file.
func Load(dir string) (Config, error) {
	path := Find(dir)
	if path == "" {
		return Defaults(), nil
	}
	return LoadFile(Defaults(), path)
}

// Flag names registered by RegisterFlags.
const (
	FlagOutput        = "output"
	FlagFormat        = "format"
	FlagExclude       = "exclude"
	FlagTemplate      = "template"
	FlagWorkers       = "workers"
	FlagStrict        = "strict"
	FlagLogLevel      = "log-level"
	FlagProseEndpoint = "prose-endpoint"
	FlagProseTimeout  = "prose-timeout"
	FlagDebounce      = "debounce"
	FlagConfig        = "config"
)

// RegisterFlags adds the configuration flags to fs, with the built-in
// defaults as their default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(FlagConfig, "", "config file (default: autodocs.yml, autodocs.yaml or autodocs.toml in the working directory)")
	fs.StringP(FlagOutput, "o", d.OutputDir, "output directory for generated documentation")
	fs.StringSliceP(FlagFormat, "f", d.Formats, "output formats (markdown, html, json)")
	fs.StringSlice(FlagExclude, d.Exclude, "glob patterns of paths to skip")
	fs.String(FlagTemplate, "", "HTML page template (default: built-in)")
	fs.Int(FlagWorkers, d.Workers, "concurrent files (0: number of CPUs)")
	fs.Bool(FlagStrict, d.Strict, "report ambiguous Python/Go input as grammar errors")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagProseEndpoint, "", "JSON-RPC endpoint of the prose service (empty: placeholders only)")
	fs.Duration(FlagProseTimeout, d.Prose.Timeout, "timeout for one prose request")
	fs.Duration(FlagDebounce, d.Watch.Debounce, "watch mode debounce interval")
}

// ApplyFlags overrides cfg with every flag the user set on fs. Flags left
// at their defaults do not override file values. Flags not registered on
// fs are ignored.
func ApplyFlags(cfg Config, fs *pflag.FlagSet) (Config, error) {
	out := cfg.clone()
	var errs []error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}

	if changed(FlagOutput) {
		out.OutputDir, _ = fs.GetString(FlagOutput)
	}
	if changed(FlagFormat) {
		v, err := fs.GetStringSlice(FlagFormat)
		errs = append(errs, err)
		out.Formats = v
	}
	if changed(FlagExclude) {
		v, err := fs.GetStringSlice(FlagExclude)
		errs = append(errs, err)
		out.Exclude = v
	}
	if changed(FlagTemplate) {
		out.TemplatePath, _ = fs.GetString(FlagTemplate)
	}
	if changed(FlagWorkers) {
		v, err := fs.GetInt(FlagWorkers)
		errs = append(errs, err)
		out.Workers = v
	}
	if changed(FlagStrict) {
		v, err := fs.GetBool(FlagStrict)
		errs = append(errs, err)
		out.Strict = v
	}
	if changed(FlagLogLevel) {
		out.LogLevel, _ = fs.GetString(FlagLogLevel)
	}
	if changed(FlagProseEndpoint) {
		out.Prose.Endpoint, _ = fs.GetString(FlagProseEndpoint)
	}
	if changed(FlagProseTimeout) {
		v, err := fs.GetDuration(FlagProseTimeout)
		errs = append(errs, err)
		out.Prose.Timeout = v
	}
	if changed(FlagDebounce) {
		v, err := fs.GetDuration(FlagDebounce)
		errs = append(errs, err)
		out.Watch.Debounce = v
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("read flags: %w", err)
	}
	return out, nil
}

// Resolve builds the run configuration: defaults, then the config file
// (the --config flag if set, else one found in dir), then the set flags.
// The result is validated.
func Resolve(dir string, fs *pflag.FlagSet) (Config, error) {
	path := ""
	if f := fs.Lookup(FlagConfig); f != nil && f.Changed {
		path = f.Value.String()
	} else {
		path = Find(dir)
	}

	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFile(cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg, err := ApplyFlags(cfg, fs)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value that can be checked without I/O.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("outputDir must not be empty"))
	}
	if _, err := c.RenderFormats(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ExcludeGlobs(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Prose.Timeout < 0 {
		errs = append(errs, fmt.Errorf("prose.timeout must be >= 0, got %s", c.Prose.Timeout))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must be >= 0, got %s", c.Watch.Debounce))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RenderFormats parses Formats.
func (c Config) RenderFormats() ([]render.Format, error) {
	return render.ParseFormats(c.Formats)
}

// ExcludeGlobs compiles Exclude with '/' as the separator.
func (c Config) ExcludeGlobs() ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(c.Exclude))
	for _, pattern := range c.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Level returns the slog level for LogLevel, or info when it is invalid.
func (c Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Template reads TemplatePath. An empty path yields "", which selects the
// built-in template.
func (c Config) Template() (string, error) {
	if c.TemplatePath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func (c Config) clone() Config {
	out := c
	out.Formats = append([]string(nil), c.Formats...)
	out.Exclude = append([]string(nil), c.Exclude...)
	return out
}
