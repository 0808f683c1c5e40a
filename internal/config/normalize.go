package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}

	if c.Ingest.MaxFileMiB <= 0 {
		c.Ingest.MaxFileMiB = defaultMaxFileMiB
	}
	if c.Archive.RequestTimeout <= 0 {
		c.Archive.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Archive.UserAgent) == "" {
		c.Archive.UserAgent = defaultUserAgent
	}

	c.Display.AxisUnit = strings.ToLower(strings.TrimSpace(c.Display.AxisUnit))
	if c.Display.AxisUnit == "" {
		c.Display.AxisUnit = defaultAxisUnit
	}
	c.Display.Mode = strings.ToLower(strings.TrimSpace(c.Display.Mode))
	if c.Display.Mode == "" {
		c.Display.Mode = defaultDisplayMode
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
