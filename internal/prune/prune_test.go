package prune_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"jellyshift/internal/itemid"
	"jellyshift/internal/library"
	"jellyshift/internal/logging"
	"jellyshift/internal/prune"
	"jellyshift/internal/testsupport"
)

const (
	typeAudio       = "MediaBrowser.Controller.Entities.Audio.Audio"
	typeMusicAlbum  = "MediaBrowser.Controller.Entities.Audio.MusicAlbum"
	typeMusicFolder = "MediaBrowser.Controller.Entities.Folder"
	typeMovie       = "MediaBrowser.Controller.Entities.Movie"
	typeAggregate   = "MediaBrowser.Controller.Entities.AggregateFolder"
)

func mustParse(t *testing.T, hex string) itemid.ID {
	t.Helper()
	id, err := itemid.ParseHex(hex)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestRunDeletesClassAndParentChain(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dbPath := testsupport.CreateLibraryDB(t, cfg)

	aggregate := mustParse(t, "a0000000000000000000000000000001")
	musicRoot := mustParse(t, "a0000000000000000000000000000002")
	album := mustParse(t, "a0000000000000000000000000000003")
	track := mustParse(t, "a0000000000000000000000000000004")
	movie := mustParse(t, "a0000000000000000000000000000005")

	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: aggregate, Type: typeAggregate, Path: "/config/root"})
	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: musicRoot, ParentID: aggregate, Type: typeMusicFolder, Path: "/config/root/music"})
	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: album, ParentID: musicRoot, Type: typeMusicAlbum, Path: "/media/music/Album"})
	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: track, ParentID: album, Type: typeAudio, Path: "/media/music/Album/01.flac", UserData: true})
	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: movie, ParentID: aggregate, Type: typeMovie, Path: "/media/movies/a.mkv"})

	albumFolder := testsupport.MetadataFolder(t, cfg, "library", album.Hex())

	store, err := library.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	p := prune.New(cfg, store, logging.NewNop())
	result, err := p.Run(context.Background(), "audio", prune.Options{Vacuum: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := map[string]int{
		typeAudio:       1,
		typeMusicAlbum:  1,
		typeMusicFolder: 1,
	}
	for typeName, count := range want {
		if result.ItemsDeleted[typeName] != count {
			t.Fatalf("ItemsDeleted[%s]: got %d want %d", typeName, result.ItemsDeleted[typeName], count)
		}
	}
	if result.Total() != 3 {
		t.Fatalf("Total: got %d", result.Total())
	}
	if result.FoldersRemoved != 1 {
		t.Fatalf("FoldersRemoved: got %d", result.FoldersRemoved)
	}
	if _, err := os.Stat(albumFolder); !os.IsNotExist(err) {
		t.Fatalf("album metadata folder still present, stat err: %v", err)
	}

	// Aggregate folder and the unrelated movie survive.
	for _, id := range []itemid.ID{aggregate, movie} {
		item, err := store.ItemByGUID(context.Background(), id.BytesLE())
		if err != nil {
			t.Fatal(err)
		}
		if item == nil {
			t.Fatalf("item %s deleted", id)
		}
	}
	gone, err := store.ItemByGUID(context.Background(), track.BytesLE())
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Fatal("track row survived prune")
	}

	// Child rows of the deleted track are gone too.
	var userData int
	testsupport.QueryRow(t, dbPath,
		`SELECT COUNT(1) FROM UserDatas WHERE key = ?`,
		[]any{track.String()}, &userData)
	if userData != 0 {
		t.Fatalf("user data rows remain: %d", userData)
	}
}

func TestRunKeepFoldersLeavesMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dbPath := testsupport.CreateLibraryDB(t, cfg)

	track := mustParse(t, "b0000000000000000000000000000001")
	testsupport.SeedItem(t, dbPath, testsupport.ItemRow{ID: track, Type: typeAudio, Path: "/media/music/01.flac"})
	folder := testsupport.MetadataFolder(t, cfg, "library", track.Hex())

	store, err := library.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	result, err := prune.New(cfg, store, logging.NewNop()).
		Run(context.Background(), "audio", prune.Options{KeepFolders: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.FoldersRemoved != 0 {
		t.Fatalf("FoldersRemoved: got %d", result.FoldersRemoved)
	}
	if _, err := os.Stat(folder); err != nil {
		t.Fatalf("metadata folder should remain: %v", err)
	}
}

func TestRunUnknownClass(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dbPath := testsupport.CreateLibraryDB(t, cfg)

	store, err := library.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = prune.New(cfg, store, logging.NewNop()).
		Run(context.Background(), "books", prune.Options{})
	if !errors.Is(err, prune.ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestClasses(t *testing.T) {
	got := prune.Classes()
	if len(got) != 1 || got[0] != "audio" {
		t.Fatalf("Classes: got %v", got)
	}
}
