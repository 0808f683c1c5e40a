package config

const (
	defaultDataDir        = "~/.local/share/spectra"
	defaultExportDir      = "~/spectra-exports"
	defaultHDU            = -1
	defaultMaxFileMiB     = 512
	defaultRequestTimeout = 30
	defaultUserAgent      = "spectra/dev"
	defaultAxisUnit       = "nm"
	defaultDisplayMode    = "flux"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns the built-in configuration, before path expansion.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
		},
		Ingest: Ingest{
			DefaultHDU: defaultHDU,
			MaxFileMiB: defaultMaxFileMiB,
		},
		Archive: Archive{
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Display: Display{
			AxisUnit: defaultAxisUnit,
			Mode:     defaultDisplayMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
