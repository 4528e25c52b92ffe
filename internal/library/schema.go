package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch indicates the database does not carry the schema of
// the Jellyfin version this tool targets.
var ErrSchemaMismatch = errors.New("library schema mismatch")

// requiredTables is the fixed set of tables the migration touches. The
// schema is assumed frozen to the one known server version; anything
// else aborts the run rather than risking a partial rewrite.
var requiredTables = []string{
	"TypedBaseItems",
	"AncestorIds",
	"ItemValues",
	"People",
	"Chapters2",
	"mediastreams",
	"mediaattachments",
	"UserDatas",
}

func (s *Store) verifySchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan schema row: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	var missing []string
	for _, table := range requiredTables {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing tables %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}

// maintenanceIndexes speed up the re-keying pass; they are created
// before the update loop and dropped afterwards so the database layout
// is left exactly as the server expects.
var maintenanceIndexes = map[string]string{
	"idx_jellyshift_tbi_parent":    "CREATE INDEX IF NOT EXISTS idx_jellyshift_tbi_parent ON TypedBaseItems(ParentId)",
	"idx_jellyshift_tbi_season":    "CREATE INDEX IF NOT EXISTS idx_jellyshift_tbi_season ON TypedBaseItems(SeasonId)",
	"idx_jellyshift_tbi_series":    "CREATE INDEX IF NOT EXISTS idx_jellyshift_tbi_series ON TypedBaseItems(SeriesId)",
	"idx_jellyshift_tbi_topparent": "CREATE INDEX IF NOT EXISTS idx_jellyshift_tbi_topparent ON TypedBaseItems(TopParentId)",
	"idx_jellyshift_tbi_udk":       "CREATE INDEX IF NOT EXISTS idx_jellyshift_tbi_udk ON TypedBaseItems(UserDataKey)",
	"idx_jellyshift_anc_item":      "CREATE INDEX IF NOT EXISTS idx_jellyshift_anc_item ON AncestorIds(ItemId)",
}

// CreateMaintenanceIndexes adds temporary indexes used by the update pass.
func (s *Store) CreateMaintenanceIndexes(ctx context.Context) error {
	for name, stmt := range maintenanceIndexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

// DropMaintenanceIndexes removes the temporary indexes.
func (s *Store) DropMaintenanceIndexes(ctx context.Context) error {
	for name := range maintenanceIndexes {
		if _, err := s.db.ExecContext(ctx, "DROP INDEX IF EXISTS "+name); err != nil {
			return fmt.Errorf("drop index %s: %w", name, err)
		}
	}
	return nil
}
