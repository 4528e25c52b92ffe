package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"jellyshift/internal/itemid"
)

// RewriteImageRefs rewrites the shard segment of every image reference
// in a TypedBaseItems Images value. Entries are pipe separated, each
// `path*attrs`; only metadata-anchored paths carrying the old
// identifier's shard segment change. References whose image exists in
// neither the old nor the new location are dropped; a reference whose
// folder was already moved is adopted as-is. References outside the
// metadata root (media folders, web links) and references to other
// items' folders stay untouched. Returns the rewritten value and
// whether anything changed.
func (m *Mover) RewriteImageRefs(images, programData string, oldID, newID itemid.ID) (string, bool) {
	if images == "" || oldID == newID {
		return images, false
	}

	oldSeg := "/" + oldID.Shard() + "/" + oldID.Hex()
	newSeg := "/" + newID.Shard() + "/" + newID.Hex()

	var kept []string
	changed := false
	for _, entry := range strings.Split(images, "|") {
		refPath, attrs, hasAttrs := strings.Cut(entry, "*")
		physical := m.physicalImagePath(refPath, programData)
		if physical == "" || !strings.Contains(refPath, oldSeg) {
			kept = append(kept, entry)
			continue
		}

		newPhysical := strings.ReplaceAll(physical, oldSeg, newSeg)
		if !fileExists(physical) && !fileExists(newPhysical) {
			changed = true
			continue
		}

		rewritten := strings.ReplaceAll(refPath, oldSeg, newSeg)
		if hasAttrs {
			rewritten += "*" + attrs
		}
		kept = append(kept, rewritten)
		changed = true
	}
	if !changed {
		return images, false
	}
	return strings.Join(kept, "|"), true
}

// physicalImagePath maps a stored image reference onto the metadata
// root. Returns "" for references that do not live under the metadata
// tree.
func (m *Mover) physicalImagePath(refPath, programData string) string {
	if rest, ok := strings.CutPrefix(refPath, "%MetadataPath%"); ok {
		return filepath.Join(m.root, filepath.FromSlash(rest))
	}
	if programData != "" {
		if rest, ok := strings.CutPrefix(refPath, programData+"/metadata"); ok {
			return filepath.Join(m.root, filepath.FromSlash(rest))
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
