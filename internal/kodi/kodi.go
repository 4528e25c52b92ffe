package kodi

import (
	"fmt"
	"io"
	"sort"

	"jellyshift/internal/itemid"
)

// Mapping is the transient old-to-new identifier table built during a
// migration run.
type Mapping map[itemid.ID]itemid.ID

// WriteScript emits a SQLite script that rewrites the old identifiers
// embedded in a Jellyfin-for-Kodi MyVideos database's stored URLs. The
// script is applied out-of-band by the administrator; this tool never
// opens the Kodi database itself.
//
// Output is deterministic: statements are ordered by old identifier.
func WriteScript(w io.Writer, mapping Mapping) error {
	header := []string{
		"PRAGMA synchronous = NORMAL;  -- def: FULL",
		"PRAGMA journal_mode = WAL;    -- def: DELETE",
		"PRAGMA page_size = 4096;      -- def: 1024",
		"BEGIN TRANSACTION;",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write kodi script: %w", err)
		}
	}

	ordered := make([]itemid.ID, 0, len(mapping))
	for oldID := range mapping {
		ordered = append(ordered, oldID)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Hex() < ordered[j].Hex() })

	for _, oldID := range ordered {
		newID := mapping[oldID]
		_, err := fmt.Fprintf(
			w,
			"UPDATE files SET strFilename=replace(strFilename, %q, %q) WHERE strFilename like %q;\n",
			oldID.Hex(), newID.Hex(), "%id="+oldID.Hex()+"%",
		)
		if err != nil {
			return fmt.Errorf("write kodi script: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w, "END TRANSACTION;"); err != nil {
		return fmt.Errorf("write kodi script: %w", err)
	}
	return nil
}
