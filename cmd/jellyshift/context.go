package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"jellyshift/internal/config"
	"jellyshift/internal/library"
	"jellyshift/internal/logging"
)

type commandContext struct {
	configFlag *string
	rootFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, rootFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		rootFlag:   rootFlag,
	}
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
		if c.rootFlag != nil && strings.TrimSpace(*c.rootFlag) != "" {
			root, err := config.ExpandPath(strings.TrimSpace(*c.rootFlag))
			if err != nil {
				c.configErr = fmt.Errorf("resolve root path: %w", err)
				return
			}
			cfg.Paths.Root = root
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// configPathValue returns the --config flag value, "" when unset.
func (c *commandContext) configPathValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// withStore opens the library database with its exclusive lock, runs fn,
// and releases the lock afterwards.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(*config.Config, *library.Store, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.buildLogger(cfg)
	if err != nil {
		return err
	}
	store, err := library.Open(cmd.Context(), cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("close library database", logging.Error(closeErr))
		}
	}()
	return fn(cfg, store, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
