package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ItemsUnderPath returns every item whose stored path begins with the
// given root. SQLite LIKE matching is a coarse filter; callers apply
// exact boundary matching on the returned paths.
func (s *Store) ItemsUnderPath(ctx context.Context, root string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM TypedBaseItems WHERE Path LIKE ? ESCAPE '\' ORDER BY Path`,
		likePrefix(root),
	)
	if err != nil {
		return nil, fmt.Errorf("select items under %s: %w", root, err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// AllItemsWithPath returns every item carrying a non-empty path,
// used by the verify pass.
func (s *Store) AllItemsWithPath(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM TypedBaseItems WHERE Path IS NOT NULL AND Path != '' ORDER BY Path`,
	)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// ItemsByTypes returns all rows of the given .NET type names.
func (s *Store) ItemsByTypes(ctx context.Context, typeNames []string) ([]*Item, error) {
	if len(typeNames) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(typeNames))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(typeNames))
	for i, name := range typeNames {
		args[i] = name
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM TypedBaseItems WHERE type IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("select items by type: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// ItemByGUID fetches a single row by identifier. Returns nil when the
// row does not exist.
func (s *Store) ItemByGUID(ctx context.Context, guid []byte) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM TypedBaseItems WHERE guid = ?`, guid)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// likePrefix escapes LIKE metacharacters so a root containing % or _
// cannot widen the match.
func likePrefix(root string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(root)
	return escaped + "%"
}
