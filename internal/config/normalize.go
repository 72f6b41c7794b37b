package config

import (
	"fmt"
	"strings"
)

// ImageFormat is the renderer output format. Only PNG pages are generated.
type ImageFormat string

const FormatPNG ImageFormat = "png"

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

var (
	logLevels  = map[string]LogLevel{"debug": LogLevelDebug, "info": LogLevelInfo, "warn": LogLevelWarn, "warning": LogLevelWarn, "error": LogLevelError}
	logFormats = map[string]LogFormat{"json": LogFormatJSON, "text": LogFormatText}
)

// NormalizeConfig canonicalizes enumerations and path spellings in place.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}

	if raw := strings.TrimSpace(string(c.Logging.Level)); raw != "" {
		if lvl, ok := logLevels[strings.ToLower(raw)]; ok {
			c.Logging.Level = lvl
		} else {
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(LogLevelInfo)))
			c.Logging.Level = LogLevelInfo
		}
	}
	if raw := strings.TrimSpace(string(c.Logging.Format)); raw != "" {
		if f, ok := logFormats[strings.ToLower(raw)]; ok {
			c.Logging.Format = f
		} else {
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(LogFormatText)))
			c.Logging.Format = LogFormatText
		}
	}

	c.Renderer.Format = ImageFormat(strings.ToLower(strings.TrimSpace(string(c.Renderer.Format))))
	c.Paths.SourceExtension = normalizeExtension(c.Paths.SourceExtension)
	c.Pages.Extension = normalizeExtension(c.Pages.Extension)
	return res
}

// normalizeExtension lowercases and guarantees a leading dot ("puml" -> ".puml").
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s: unknown value %q, using %q", field, value, fallback)
}
