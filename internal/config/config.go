package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the Jellyfin data tree on the machine running the tool.
// Root can differ from the server's own program-data path when the
// server runs in a container.
type Paths struct {
	Root          string `toml:"root"`
	DataDir       string `toml:"data_dir"`
	MetadataDir   string `toml:"metadata_dir"`
	CollectionDir string `toml:"collection_dir"`
}

// Server mirrors the settings of the Jellyfin instance that owns the
// database. ProgramData is the data path from the server's perspective;
// CaseSensitive must match the server's identifier hashing mode.
type Server struct {
	ProgramData   string `toml:"program_data"`
	CaseSensitive bool   `toml:"case_sensitive"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for jellyshift.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/jellyshift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("jellyshift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DataPath returns the directory holding library.db.
func (c *Config) DataPath() string {
	return resolveSubdir(c.Paths.Root, c.Paths.DataDir)
}

// DatabasePath returns the library database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataPath(), "library.db")
}

// MetadataPath returns the identifier-keyed metadata folder root.
func (c *Config) MetadataPath() string {
	return resolveSubdir(c.Paths.Root, c.Paths.MetadataDir)
}

// CollectionPath returns the collection definition root.
func (c *Config) CollectionPath() string {
	return resolveSubdir(c.Paths.Root, c.Paths.CollectionDir)
}

// resolveSubdir joins dir under root unless dir is already absolute.
func resolveSubdir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
