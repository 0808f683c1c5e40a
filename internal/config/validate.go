package config

import (
	"fmt"

	"spectrasuite/internal/units"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := units.Parse(c.Display.AxisUnit); !ok {
		return fmt.Errorf("display.axis_unit: unknown unit %q", c.Display.AxisUnit)
	}
	switch c.Display.Mode {
	case "flux", "transmission", "absorbance", "optical_depth":
	default:
		return fmt.Errorf("display.mode: unknown mode %q", c.Display.Mode)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// AxisUnit resolves the configured display unit.
func (c *Config) AxisUnit() units.Unit {
	unit, _ := units.Parse(c.Display.AxisUnit)
	return unit
}
