package kodi_test

import (
	"strings"
	"testing"

	"jellyshift/internal/itemid"
	"jellyshift/internal/kodi"
)

func id(t *testing.T, hex string) itemid.ID {
	t.Helper()
	parsed, err := itemid.ParseHex(hex)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestWriteScript(t *testing.T) {
	mapping := kodi.Mapping{
		id(t, "d881459520ab3360d16093dacbc9c9a0"): id(t, "ce60620e45d23571b4e9bc309e8ab429"),
		id(t, "133316df98b896951e52af8948f9836e"): id(t, "948940b2048b3ca8d55b31ea49120cca"),
	}

	var sb strings.Builder
	if err := kodi.WriteScript(&sb, mapping); err != nil {
		t.Fatalf("WriteScript returned error: %v", err)
	}
	got := sb.String()

	want := `PRAGMA synchronous = NORMAL;  -- def: FULL
PRAGMA journal_mode = WAL;    -- def: DELETE
PRAGMA page_size = 4096;      -- def: 1024
BEGIN TRANSACTION;
UPDATE files SET strFilename=replace(strFilename, "133316df98b896951e52af8948f9836e", "948940b2048b3ca8d55b31ea49120cca") WHERE strFilename like "%id=133316df98b896951e52af8948f9836e%";
UPDATE files SET strFilename=replace(strFilename, "d881459520ab3360d16093dacbc9c9a0", "ce60620e45d23571b4e9bc309e8ab429") WHERE strFilename like "%id=d881459520ab3360d16093dacbc9c9a0%";
END TRANSACTION;
`
	if got != want {
		t.Fatalf("script mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteScriptEmptyMapping(t *testing.T) {
	var sb strings.Builder
	if err := kodi.WriteScript(&sb, nil); err != nil {
		t.Fatal(err)
	}
	got := sb.String()
	if !strings.Contains(got, "BEGIN TRANSACTION;") || !strings.Contains(got, "END TRANSACTION;") {
		t.Fatalf("expected transaction wrapper even for empty mapping, got %q", got)
	}
	if strings.Contains(got, "UPDATE") {
		t.Fatalf("expected no statements, got %q", got)
	}
}
