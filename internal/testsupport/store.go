package testsupport

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"jellyshift/internal/config"
	"jellyshift/internal/itemid"
)

// librarySchema mirrors the library.db tables the migration touches,
// reduced to the columns the tool reads or writes.
const librarySchema = `
CREATE TABLE TypedBaseItems (
	guid BLOB PRIMARY KEY NOT NULL,
	type TEXT NOT NULL,
	data TEXT,
	Path TEXT,
	Images TEXT,
	name TEXT,
	ParentId BLOB,
	SeasonId BLOB,
	SeriesId BLOB,
	TopParentId TEXT,
	PresentationUniqueKey TEXT,
	SeriesPresentationUniqueKey TEXT,
	UserDataKey TEXT
);
CREATE TABLE AncestorIds (ItemId BLOB, AncestorId BLOB, AncestorIdText TEXT);
CREATE TABLE ItemValues (ItemId BLOB, Type INT, Value TEXT, CleanValue TEXT);
CREATE TABLE People (ItemId BLOB, Name TEXT, Role TEXT, PersonType TEXT, SortOrder INT, ListOrder INT);
CREATE TABLE Chapters2 (ItemId BLOB, ChapterIndex INT, StartPositionTicks BIGINT, Name TEXT, ImagePath TEXT);
CREATE TABLE mediastreams (ItemId BLOB, StreamIndex INT, StreamType TEXT, Path TEXT);
CREATE TABLE mediaattachments (ItemId BLOB, AttachmentIndex INT, Codec TEXT);
CREATE TABLE UserDatas (key TEXT, userId INT, played INT, playbackPositionTicks BIGINT);
`

// CreateLibraryDB writes an empty library.db with the expected schema
// into the config's data directory and returns its path.
func CreateLibraryDB(t testing.TB, cfg *config.Config) string {
	t.Helper()
	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(librarySchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	return dbPath
}

// ItemRow seeds one TypedBaseItems row plus optional child rows.
type ItemRow struct {
	ID       itemid.ID
	ParentID itemid.ID
	Type     string
	Name     string
	Path     string
	Data     string
	Images   string

	// Child rows keyed by the item.
	StreamPaths []string
	ChapterName string
	PersonName  string
	UserData    bool
}

// SeedItem inserts the row and its children into the fixture database.
func SeedItem(t testing.TB, dbPath string, row ItemRow) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	var parent any
	if !row.ParentID.IsZero() {
		parent = row.ParentID.BytesLE()
	}
	_, err = db.Exec(
		`INSERT INTO TypedBaseItems (guid, type, name, Path, data, Images, ParentId, TopParentId, UserDataKey, PresentationUniqueKey)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID.BytesLE(), row.Type, row.Name, row.Path,
		nullable(row.Data), nullable(row.Images), parent,
		row.ID.Hex(), row.ID.String(), row.ID.Hex(),
	)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	for i, streamPath := range row.StreamPaths {
		if _, err := db.Exec(
			`INSERT INTO mediastreams (ItemId, StreamIndex, StreamType, Path) VALUES (?, ?, ?, ?)`,
			row.ID.BytesLE(), i, "Video", streamPath,
		); err != nil {
			t.Fatalf("seed stream: %v", err)
		}
	}
	if row.ChapterName != "" {
		if _, err := db.Exec(
			`INSERT INTO Chapters2 (ItemId, ChapterIndex, StartPositionTicks, Name) VALUES (?, 0, 0, ?)`,
			row.ID.BytesLE(), row.ChapterName,
		); err != nil {
			t.Fatalf("seed chapter: %v", err)
		}
	}
	if row.PersonName != "" {
		if _, err := db.Exec(
			`INSERT INTO People (ItemId, Name) VALUES (?, ?)`,
			row.ID.BytesLE(), row.PersonName,
		); err != nil {
			t.Fatalf("seed person: %v", err)
		}
	}
	if row.UserData {
		if _, err := db.Exec(
			`INSERT INTO UserDatas (key, userId, played) VALUES (?, 1, 1)`,
			row.ID.String(),
		); err != nil {
			t.Fatalf("seed user data: %v", err)
		}
	}
	if !row.ParentID.IsZero() {
		if _, err := db.Exec(
			`INSERT INTO AncestorIds (ItemId, AncestorId, AncestorIdText) VALUES (?, ?, ?)`,
			row.ID.BytesLE(), row.ParentID.BytesLE(), row.ParentID.Hex(),
		); err != nil {
			t.Fatalf("seed ancestor: %v", err)
		}
	}
}

// QueryRow runs a single-row query against the fixture database and
// scans the result, failing the test on error.
func QueryRow(t testing.TB, dbPath, query string, args []any, dest ...any) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()
	if err := db.QueryRow(query, args...).Scan(dest...); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
