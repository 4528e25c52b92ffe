package library

import (
	"context"
	"fmt"

	"jellyshift/internal/itemid"
)

// ItemUpdate carries everything needed to re-key one item: the path
// change plus the identifier change in all of its renderings.
type ItemUpdate struct {
	OldID   itemid.ID
	NewID   itemid.ID
	OldPath string
	NewPath string

	// NewImages, when non-nil, replaces the Images column (the metadata
	// migrator rewrites embedded shard paths).
	NewImages *string
}

// ApplyItem rewrites every reference to one item inside a single
// transaction: the primary row, parent-reference columns across
// TypedBaseItems, and all child tables keyed by the identifier. A
// failure at any statement rolls the whole item back, so the database
// never holds a mixed old-path/new-identifier state.
func (s *Store) ApplyItem(ctx context.Context, up ItemUpdate) error {
	oldRaw, newRaw := up.OldID.BytesLE(), up.NewID.BytesLE()
	oldHex, newHex := up.OldID.Hex(), up.NewID.Hex()
	oldStr, newStr := up.OldID.String(), up.NewID.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	type statement struct {
		name  string
		query string
		args  []any
	}

	statements := []statement{
		{
			"primary row",
			`UPDATE TypedBaseItems SET guid = ?, Path = ? WHERE guid = ?`,
			[]any{newRaw, up.NewPath, oldRaw},
		},
		{
			// data embeds both the physical path and, for folders, the
			// identifier in string form.
			"serialized data",
			`UPDATE TypedBaseItems SET data = replace(replace(data, ?, ?), ?, ?) WHERE guid = ?`,
			[]any{up.OldPath, up.NewPath, oldStr, newStr, newRaw},
		},
		{
			// Collection folder rows live at virtual paths and embed
			// the guid strings of the folders they link, so the item's
			// own-row replacement above never reaches them.
			"collection folder references",
			`UPDATE TypedBaseItems SET data = replace(data, ?, ?)
			 WHERE type = 'MediaBrowser.Controller.Entities.CollectionFolder' AND data LIKE ?`,
			[]any{oldStr, newStr, "%" + oldStr + "%"},
		},
		{
			"parent references",
			`UPDATE TypedBaseItems SET ParentId = ? WHERE ParentId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"season references",
			`UPDATE TypedBaseItems SET SeasonId = ? WHERE SeasonId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"series references",
			`UPDATE TypedBaseItems SET SeriesId = ? WHERE SeriesId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"top parent references",
			`UPDATE TypedBaseItems SET TopParentId = ? WHERE TopParentId = ?`,
			[]any{newHex, oldHex},
		},
		{
			"user data keys",
			`UPDATE TypedBaseItems SET UserDataKey = ? WHERE UserDataKey = ?`,
			[]any{newStr, oldStr},
		},
		{
			// PresentationUniqueKey may be the plain hex guid or carry a
			// season suffix; external-id keys are longer than 36 chars
			// and must stay untouched.
			"presentation keys",
			`UPDATE TypedBaseItems SET PresentationUniqueKey = replace(PresentationUniqueKey, ?, ?)
			 WHERE PresentationUniqueKey IS NOT NULL AND length(PresentationUniqueKey) < 37
			   AND PresentationUniqueKey LIKE ?`,
			[]any{oldHex, newHex, oldHex + "%"},
		},
		{
			"series presentation keys",
			`UPDATE TypedBaseItems SET SeriesPresentationUniqueKey = ?
			 WHERE length(SeriesPresentationUniqueKey) = 32 AND SeriesPresentationUniqueKey = ?`,
			[]any{newHex, oldHex},
		},
		{
			"ancestor references",
			`UPDATE AncestorIds SET AncestorId = ?, AncestorIdText = ? WHERE AncestorId = ?`,
			[]any{newRaw, newHex, oldRaw},
		},
		{
			"ancestor item rows",
			`UPDATE AncestorIds SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"item values",
			`UPDATE ItemValues SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"people",
			`UPDATE People SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"chapters",
			`UPDATE Chapters2 SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"media streams",
			`UPDATE mediastreams SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"media stream paths",
			`UPDATE mediastreams SET Path = replace(Path, ?, ?) WHERE ItemId = ? AND Path LIKE ? ESCAPE '\'`,
			[]any{up.OldPath, up.NewPath, newRaw, likePrefix(up.OldPath)},
		},
		{
			"media attachments",
			`UPDATE mediaattachments SET ItemId = ? WHERE ItemId = ?`,
			[]any{newRaw, oldRaw},
		},
		{
			"user data",
			`UPDATE UserDatas SET key = ? WHERE key = ?`,
			[]any{newStr, oldStr},
		},
	}
	if up.NewImages != nil {
		statements = append(statements, statement{
			"images",
			`UPDATE TypedBaseItems SET Images = ? WHERE guid = ?`,
			[]any{*up.NewImages, newRaw},
		})
	}

	for _, st := range statements {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return fmt.Errorf("update %s for %s: %w", st.name, up.OldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item %s: %w", up.OldID, err)
	}
	return nil
}

// RewritePathPrefixes sweeps residual textual references to the old
// root out of serialized columns. Collection folder rows embed physical
// media paths in their data blob without carrying the path themselves,
// so the per-item pass cannot reach them.
func (s *Store) RewritePathPrefixes(ctx context.Context, oldRoot, newRoot string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sweep tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sweeps := []struct {
		name  string
		query string
		args  []any
	}{
		{
			"item data",
			`UPDATE TypedBaseItems SET data = replace(data, ?, ?) WHERE data LIKE ? ESCAPE '\'`,
			[]any{oldRoot, newRoot, "%" + likePrefix(oldRoot)},
		},
		{
			"item images",
			`UPDATE TypedBaseItems SET Images = replace(Images, ?, ?) WHERE Images LIKE ? ESCAPE '\'`,
			[]any{oldRoot, newRoot, likePrefix(oldRoot)},
		},
	}
	for _, sw := range sweeps {
		if _, err := tx.ExecContext(ctx, sw.query, sw.args...); err != nil {
			return fmt.Errorf("sweep %s: %w", sw.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sweep: %w", err)
	}
	return nil
}

// DeleteItems removes the given identifiers and their child rows in one
// transaction. Used by the prune operation.
func (s *Store) DeleteItems(ctx context.Context, ids []itemid.ID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	childTables := []string{"AncestorIds", "ItemValues", "People", "Chapters2", "mediastreams", "mediaattachments"}
	for _, id := range ids {
		raw := id.BytesLE()
		if _, err := tx.ExecContext(ctx, `DELETE FROM TypedBaseItems WHERE guid = ?`, raw); err != nil {
			return fmt.Errorf("delete item %s: %w", id, err)
		}
		for _, table := range childTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE ItemId = ?`, raw); err != nil {
				return fmt.Errorf("delete %s rows for %s: %w", table, id, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM UserDatas WHERE key = ?`, id.String()); err != nil {
			return fmt.Errorf("delete user data for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}
