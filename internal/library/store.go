package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// ErrDatabaseLocked indicates another process holds the library lock.
var ErrDatabaseLocked = errors.New("library database is locked by another process")

// Store wraps the Jellyfin library database. The database is treated as
// exclusively owned for the lifetime of one run; the server must be
// stopped before opening it.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to library.db at the given path, takes an exclusive
// lock beside it, applies session pragmas, and verifies the expected
// schema. The file must already exist; this tool never creates a
// library database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("library database: %w", err)
	}

	lock := flock.New(dbPath + ".jellyshift.lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseLocked, lock.Path())
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Same session tuning the original migration used; durability is
	// traded away because the documented recovery for any failure is
	// restore-from-backup.
	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.verifySchema(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection and releases the lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		s.lock = nil
	}
	return err
}

// Vacuum compacts the database after a successful migration.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
