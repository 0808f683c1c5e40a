package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"spectrasuite/internal/config"
	"spectrasuite/internal/logging"
	"spectrasuite/internal/session"
	"spectrasuite/internal/store"
	"spectrasuite/internal/units"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.SessionDBPath())
}

// withSession loads the persisted session, runs fn, and saves the session
// back when fn reports it mutated state.
func (c *commandContext) withSession(ctx context.Context, fn func(*session.Session) (bool, error)) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.HasSession(ctx)
	if err != nil {
		return err
	}
	sess, err := st.LoadSession(ctx, c.ensureLogger())
	if err != nil {
		return err
	}
	if !saved {
		applyDisplayDefaults(sess, cfg)
	}

	mutated, err := fn(sess)
	if mutated {
		if saveErr := st.SaveSession(ctx, sess); saveErr != nil {
			if err != nil {
				return err
			}
			return saveErr
		}
	}
	return err
}

// applyDisplayDefaults seeds a never-saved session with the configured
// display preferences; a restored session keeps its own.
func applyDisplayDefaults(sess *session.Session, cfg *config.Config) {
	if unit, ok := units.Parse(cfg.Display.AxisUnit); ok {
		sess.SetAxisUnit(unit)
	}
	sess.SetDisplayMode(session.DisplayMode(cfg.Display.Mode))
}
