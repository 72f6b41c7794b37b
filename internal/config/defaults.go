package config

const (
	defaultBaseDirectory   = "docs/plantuml"
	defaultSourceDir       = "puml"
	defaultImageDir        = "images"
	defaultPageDir         = "md"
	defaultSourceExtension = ".puml"
	defaultRendererBinary  = "plantuml"
	defaultPageExtension   = ".md"
	defaultIndexFile       = "README.md"
	defaultDebounce        = "300ms"
)

// ApplyDefaults fills every unset field. It runs after normalization so
// canonical values drive the defaults.
func ApplyDefaults(cfg *Config) {
	applyPathDefaults(&cfg.Paths)

	if cfg.Renderer.Binary == "" {
		cfg.Renderer.Binary = defaultRendererBinary
	}
	if cfg.Renderer.Format == "" {
		cfg.Renderer.Format = FormatPNG
	}

	if cfg.Pages.Extension == "" {
		cfg.Pages.Extension = defaultPageExtension
	}
	if cfg.Pages.IndexFile == "" {
		cfg.Pages.IndexFile = defaultIndexFile
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}

	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce
	}
}

func applyPathDefaults(p *PathsConfig) {
	// An explicit empty base directory is only meaningful when every
	// directory is set; otherwise fall back to the documented layout.
	if p.BaseDirectory == "" && (p.SourceDir == "" || p.ImageDir == "" || p.PageDir == "") {
		p.BaseDirectory = defaultBaseDirectory
	}
	if p.SourceDir == "" {
		p.SourceDir = defaultSourceDir
	}
	if p.ImageDir == "" {
		p.ImageDir = defaultImageDir
	}
	if p.PageDir == "" {
		p.PageDir = defaultPageDir
	}
	if p.SourceExtension == "" {
		p.SourceExtension = defaultSourceExtension
	}
}
