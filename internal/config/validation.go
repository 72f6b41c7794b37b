package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(cfg *Config) error {
	if cfg.Renderer.Format != FormatPNG {
		return invalid("renderer.format", string(cfg.Renderer.Format), "only png is supported")
	}
	if strings.TrimSpace(cfg.Renderer.Binary) == "" {
		return invalid("renderer.binary", cfg.Renderer.Binary, "must not be empty")
	}
	if cfg.Paths.SourcePath() == cfg.Paths.PagePath() {
		return invalid("paths.page_dir", cfg.Paths.PageDir, "must differ from paths.source_dir")
	}
	if strings.ContainsAny(cfg.Pages.IndexFile, `/\`) || cfg.Pages.IndexFile != filepath.Base(cfg.Pages.IndexFile) {
		return invalid("pages.index_file", cfg.Pages.IndexFile, "must be a plain file name")
	}
	if _, err := cfg.Watch.DebounceDuration(); err != nil {
		return invalid("watch.debounce", cfg.Watch.Debounce, err.Error())
	}
	if _, err := cfg.Watch.IntervalDuration(); err != nil {
		return invalid("watch.interval", cfg.Watch.Interval, err.Error())
	}
	return nil
}

// DebounceDuration parses watch.debounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	return parsePositiveDuration(w.Debounce)
}

// IntervalDuration parses watch.interval; zero disables periodic regeneration.
func (w WatchConfig) IntervalDuration() (time.Duration, error) {
	return parsePositiveDuration(w.Interval)
}

func parsePositiveDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

func invalid(field, value, reason string) error {
	return derrors.ValidationError(fmt.Sprintf("invalid %s %q: %s", field, value, reason)).
		WithContext("field", field).Build()
}
