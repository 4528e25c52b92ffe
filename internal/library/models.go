package library

import (
	"database/sql"
	"fmt"

	"jellyshift/internal/itemid"
)

// Item is one TypedBaseItems row, limited to the columns the migration
// needs to recompute identifiers and relocate metadata.
type Item struct {
	ID       itemid.ID
	ParentID itemid.ID // zero when the row has no parent
	Type     string    // dotted .NET type name, the hash input
	Name     string
	Path     string
	Images   string // pipe-separated image list; empty when NULL
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		guid   []byte
		parent []byte
		typ    string
		name   sql.NullString
		path   sql.NullString
		images sql.NullString
	)
	if err := scanner.Scan(&guid, &parent, &typ, &name, &path, &images); err != nil {
		return nil, err
	}

	id, err := itemid.FromBytesLE(guid)
	if err != nil {
		return nil, fmt.Errorf("item guid: %w", err)
	}
	item := &Item{
		ID:     id,
		Type:   typ,
		Name:   name.String,
		Path:   path.String,
		Images: images.String,
	}
	if len(parent) == 16 {
		parentID, err := itemid.FromBytesLE(parent)
		if err != nil {
			return nil, fmt.Errorf("item parent guid: %w", err)
		}
		item.ParentID = parentID
	}
	return item, nil
}

const itemColumns = "guid, ParentId, type, name, Path, Images"
