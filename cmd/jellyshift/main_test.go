package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jellyshift/internal/config"
	"jellyshift/internal/itemid"
	"jellyshift/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	dbPath     string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	dbPath := testsupport.CreateLibraryDB(t, cfg)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{cfg: cfg, dbPath: dbPath, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func hashID(t *testing.T, env *cliTestEnv, path, typeName string) itemid.ID {
	t.Helper()
	hasher := itemid.Hasher{
		ProgramData:   env.cfg.Server.ProgramData,
		CaseSensitive: env.cfg.Server.CaseSensitive,
	}
	id, err := hasher.Hash(path, typeName)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

const movieType = "MediaBrowser.Controller.Entities.Movie"

func TestCLIMigrateEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	oldID := hashID(t, env, "/media/old/Movie/a.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: oldID, Type: movieType, Path: "/media/old/Movie/a.mkv"})
	testsupport.MetadataFolder(t, env.cfg, "library", oldID.Hex())

	kodiPath := filepath.Join(t.TempDir(), "kodi.sql")
	out, _, err := runCLI(t, []string{"migrate", "--kodi-sql", kodiPath, "/media/old", "/media/new"}, env.configPath)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	requireContains(t, out, "Migrated 1 items")
	requireContains(t, out, "moved 1 metadata folders")

	newID := hashID(t, env, "/media/new/Movie/a.mkv", movieType)
	var path string
	testsupport.QueryRow(t, env.dbPath,
		`SELECT Path FROM TypedBaseItems WHERE guid = ?`,
		[]any{newID.BytesLE()}, &path)
	if path != "/media/new/Movie/a.mkv" {
		t.Fatalf("migrated path: %q", path)
	}

	script, err := os.ReadFile(kodiPath)
	if err != nil {
		t.Fatalf("read kodi script: %v", err)
	}
	requireContains(t, string(script), oldID.Hex())
	requireContains(t, string(script), newID.Hex())

	// Second run over the same roots has nothing left to do.
	out, _, err = runCLI(t, []string{"migrate", "--dry-run", "/media/old", "/media/new"}, env.configPath)
	if err != nil {
		t.Fatalf("migrate dry-run: %v", err)
	}
	requireContains(t, out, "Would migrate 0 items")
}

func TestCLIMigrateDryRunLeavesDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	oldID := hashID(t, env, "/media/old/Movie/a.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: oldID, Type: movieType, Path: "/media/old/Movie/a.mkv"})

	out, _, err := runCLI(t, []string{"migrate", "--dry-run", "/media/old", "/media/new"}, env.configPath)
	if err != nil {
		t.Fatalf("migrate dry-run: %v", err)
	}
	requireContains(t, out, "Would migrate 1 items")

	var path string
	testsupport.QueryRow(t, env.dbPath,
		`SELECT Path FROM TypedBaseItems WHERE guid = ?`,
		[]any{oldID.BytesLE()}, &path)
	if path != "/media/old/Movie/a.mkv" {
		t.Fatalf("dry run modified database: %q", path)
	}
}

func TestCLIPlanOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	oldID := hashID(t, env, "/media/old/Movie/a.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: oldID, Type: movieType, Path: "/media/old/Movie/a.mkv"})

	out, _, err := runCLI(t, []string{"plan", "/media/old", "/media/new"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "/media/old/Movie/a.mkv")
	requireContains(t, out, "/media/new/Movie/a.mkv")
	requireContains(t, out, "1 items to migrate")
}

func TestCLIVerify(t *testing.T) {
	env := setupCLITestEnv(t)

	good := hashID(t, env, "/media/lib/a.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: good, Type: movieType, Path: "/media/lib/a.mkv"})

	out, _, err := runCLI(t, []string{"verify"}, env.configPath)
	if err != nil {
		t.Fatalf("verify clean: %v", err)
	}
	requireContains(t, out, "All item identifiers match")

	stale := hashID(t, env, "/media/gone/b.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: stale, Type: movieType, Path: "/media/lib/b.mkv"})

	out, _, err = runCLI(t, []string{"verify"}, env.configPath)
	if err == nil {
		t.Fatal("expected verify to fail on mismatch")
	}
	requireContains(t, out, "/media/lib/b.mkv")
}

func TestCLIVerifyFix(t *testing.T) {
	env := setupCLITestEnv(t)

	stale := hashID(t, env, "/media/gone/b.mkv", movieType)
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{ID: stale, Type: movieType, Path: "/media/lib/b.mkv"})

	out, _, err := runCLI(t, []string{"verify", "--fix"}, env.configPath)
	if err != nil {
		t.Fatalf("verify --fix: %v", err)
	}
	requireContains(t, out, "Re-keyed 1 items in place")

	fixed := hashID(t, env, "/media/lib/b.mkv", movieType)
	var path string
	testsupport.QueryRow(t, env.dbPath,
		`SELECT Path FROM TypedBaseItems WHERE guid = ?`,
		[]any{fixed.BytesLE()}, &path)
	if path != "/media/lib/b.mkv" {
		t.Fatalf("repaired item path: %q", path)
	}

	out, _, err = runCLI(t, []string{"verify"}, env.configPath)
	if err != nil {
		t.Fatalf("verify after fix: %v", err)
	}
	requireContains(t, out, "All item identifiers match")
}

func TestCLIPrune(t *testing.T) {
	env := setupCLITestEnv(t)

	track := hashID(t, env, "/media/music/01.flac", "MediaBrowser.Controller.Entities.Audio.Audio")
	testsupport.SeedItem(t, env.dbPath, testsupport.ItemRow{
		ID: track, Type: "MediaBrowser.Controller.Entities.Audio.Audio", Path: "/media/music/01.flac",
	})
	folder := testsupport.MetadataFolder(t, env.cfg, "library", track.Hex())

	out, _, err := runCLI(t, []string{"prune", "--class", "audio"}, env.configPath)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	requireContains(t, out, "Removed 1 Audio items")
	requireContains(t, out, "1 metadata folders")

	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Fatalf("metadata folder still present, stat err: %v", err)
	}

	_, _, err = runCLI(t, []string{"prune", "--class", "books"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown class to fail")
	}
}

func TestCLIUnknownRootsFail(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"migrate", "/media/old", "/media/old/sub"}, env.configPath)
	if err == nil {
		t.Fatal("expected overlapping roots to fail")
	}
}
