package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = "."
	}
	if c.Paths.Root, err = expandPath(c.Paths.Root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.MetadataDir) == "" {
		c.Paths.MetadataDir = defaultMetadataDir
	}
	if strings.TrimSpace(c.Paths.CollectionDir) == "" {
		c.Paths.CollectionDir = defaultCollectionDir
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.ProgramData = strings.TrimRight(strings.TrimSpace(c.Server.ProgramData), "/\\")
	if c.Server.ProgramData == "" {
		c.Server.ProgramData = defaultProgramData
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
