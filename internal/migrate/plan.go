package migrate

import (
	"jellyshift/internal/itemid"
	"jellyshift/internal/kodi"
	"jellyshift/internal/pathmap"
)

// Change describes one item's pending migration: the path move plus the
// identifier recomputed from the new path.
type Change struct {
	Type    string
	Name    string
	OldPath string
	NewPath string
	OldID   itemid.ID
	NewID   itemid.ID
	Images  string
}

// Plan is the dry-run result: every change the apply phase would make.
type Plan struct {
	// Mapper is nil for repair plans, which move no paths.
	Mapper  *pathmap.Mapper
	Changes []Change

	// Unchanged counts scanned items that already carry the expected
	// identifier and path.
	Unchanged int
}

// Mapping returns the transient old-to-new identifier table, used for
// metadata folder moves and the companion-client script.
func (p *Plan) Mapping() kodi.Mapping {
	mapping := make(kodi.Mapping, len(p.Changes))
	for _, change := range p.Changes {
		if change.OldID == change.NewID {
			continue
		}
		mapping[change.OldID] = change.NewID
	}
	return mapping
}
