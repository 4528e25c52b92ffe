package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"jellyshift/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory with the
// standard Jellyfin data layout (data/, metadata/, root/) created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Root = base
	cfg.Server.ProgramData = "/config"
	cfg.Server.CaseSensitive = true

	for _, opt := range opts {
		opt(&cfg)
	}

	for _, dir := range []string{cfg.DataPath(), cfg.MetadataPath(), cfg.CollectionPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return &cfg
}

// WithCaseInsensitive switches the config to case-insensitive hashing.
func WithCaseInsensitive() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.CaseSensitive = false
	}
}

// WithProgramData overrides the server-internal data path.
func WithProgramData(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.ProgramData = path
	}
}

// MetadataFolder creates a sharded metadata folder for the given hex
// identifier under the config's metadata root and drops a marker file
// into it. Returns the folder path.
func MetadataFolder(t testing.TB, cfg *config.Config, kind, hex string) string {
	t.Helper()
	dir := filepath.Join(cfg.MetadataPath(), kind, hex[:2], hex)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create metadata folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "poster.jpg"), []byte(hex), 0o644); err != nil {
		t.Fatalf("write poster: %v", err)
	}
	return dir
}
