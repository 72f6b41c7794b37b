package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

// CurrentVersion is the only configuration format version accepted by Load.
const CurrentVersion = "1.0"

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "plantdoc.yaml"

// Config is the plantdoc configuration file.
type Config struct {
	Version  string         `yaml:"version"`
	Paths    PathsConfig    `yaml:"paths"`
	Renderer RendererConfig `yaml:"renderer"`
	Pages    PagesConfig    `yaml:"pages"`
	Catalog  CatalogConfig  `yaml:"catalog,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch,omitempty"`
}

// PathsConfig locates diagram sources and generated output. Relative
// directories are resolved against BaseDirectory.
type PathsConfig struct {
	BaseDirectory   string `yaml:"base_directory"`
	SourceDir       string `yaml:"source_dir"`
	ImageDir        string `yaml:"image_dir"`
	PageDir         string `yaml:"page_dir"`
	SourceExtension string `yaml:"source_extension"`
}

// RendererConfig describes the external diagram renderer.
type RendererConfig struct {
	Binary    string      `yaml:"binary"`
	Format    ImageFormat `yaml:"format"`
	ExtraArgs []string    `yaml:"extra_args,omitempty"`
}

// PagesConfig controls generated Markdown pages and the index.
type PagesConfig struct {
	Extension   string `yaml:"extension"`
	IndexFile   string `yaml:"index_file"`
	FrontMatter bool   `yaml:"front_matter"`
	VerifyLinks *bool  `yaml:"verify_links,omitempty"`
}

// CatalogConfig points at an optional catalog file replacing the embedded one.
type CatalogConfig struct {
	File string `yaml:"file,omitempty"`
}

// MetricsConfig enables writing run metrics in Prometheus text format.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Interval string `yaml:"interval,omitempty"`
}

// SourcePath returns the resolved diagram source directory.
func (p PathsConfig) SourcePath() string { return p.resolve(p.SourceDir) }

// ImagePath returns the resolved image output directory.
func (p PathsConfig) ImagePath() string { return p.resolve(p.ImageDir) }

// PagePath returns the resolved page output directory.
func (p PathsConfig) PagePath() string { return p.resolve(p.PageDir) }

func (p PathsConfig) resolve(dir string) string {
	if filepath.IsAbs(dir) || p.BaseDirectory == "" {
		return filepath.Clean(dir)
	}
	return filepath.Join(p.BaseDirectory, dir)
}

// VerifyLinksEnabled reports whether generated links are checked after a run (default true).
func (p PagesConfig) VerifyLinksEnabled() bool {
	return p.VerifyLinks == nil || *p.VerifyLinks
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
				WithContext("path", configPath).Build()
		}
		return nil, derrors.ConfigError("failed to read config file").WithCause(err).
			WithContext("path", configPath).Build()
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.ConfigError("failed to unmarshal config").WithCause(err).
			WithContext("path", configPath).Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, derrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).
			WithContext("path", configPath).Build()
	}

	res := NormalizeConfig(&cfg)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}
	ApplyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve loads configPath, falling back to Default when the file is absent
// and required is false. The tool must run with no arguments and no config file.
func Resolve(configPath string, required bool) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) && !required {
		loadEnvFiles()
		return Default(), nil
	}
	return Load(configPath)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	ApplyDefaults(cfg)
	return cfg
}

// loadEnvFiles loads the first of .env/.env.local that exists. Variables
// already present in the process environment are never overwritten.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", name, err)
			continue
		}
		return
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).Build()
	}

	verify := true
	example := Config{
		Version: CurrentVersion,
		Paths: PathsConfig{
			BaseDirectory:   defaultBaseDirectory,
			SourceDir:       defaultSourceDir,
			ImageDir:        defaultImageDir,
			PageDir:         defaultPageDir,
			SourceExtension: defaultSourceExtension,
		},
		Renderer: RendererConfig{Binary: defaultRendererBinary, Format: FormatPNG},
		Pages: PagesConfig{
			Extension:   defaultPageExtension,
			IndexFile:   defaultIndexFile,
			VerifyLinks: &verify,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Watch:   WatchConfig{Debounce: defaultDebounce},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return derrors.InternalError("failed to marshal example config").WithCause(err).Build()
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return derrors.FileSystemError("failed to create config directory").WithCause(err).Build()
		}
	}
	// #nosec G306 -- configuration file is meant to be readable
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return derrors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("path", configPath).Build()
	}
	return nil
}
