package pathmap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOverlappingRoots indicates the old and new roots nest inside each
// other. Rewriting into an overlapping root can re-match paths that were
// already rewritten, so the mapper refuses the pair outright.
var ErrOverlappingRoots = errors.New("old and new roots overlap")

// Mapper rewrites stored paths from one library root to another.
type Mapper struct {
	oldRoot string
	newRoot string
}

// NewMapper validates and normalizes the root pair. Both roots must be
// absolute and must not overlap.
func NewMapper(oldRoot, newRoot string) (*Mapper, error) {
	oldClean, err := normalizeRoot(oldRoot)
	if err != nil {
		return nil, fmt.Errorf("old root: %w", err)
	}
	newClean, err := normalizeRoot(newRoot)
	if err != nil {
		return nil, fmt.Errorf("new root: %w", err)
	}
	if oldClean == newClean || isDescendant(oldClean, newClean) || isDescendant(newClean, oldClean) {
		return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingRoots, oldClean, newClean)
	}
	return &Mapper{oldRoot: oldClean, newRoot: newClean}, nil
}

// OldRoot returns the normalized source root.
func (m *Mapper) OldRoot() string { return m.oldRoot }

// NewRoot returns the normalized destination root.
func (m *Mapper) NewRoot() string { return m.newRoot }

// Rewrite maps a stored path onto the new root. The second return value
// reports whether the path was under the old root; unmatched paths are
// returned unchanged. A path equal to the root itself is in scope.
func (m *Mapper) Rewrite(path string) (string, bool) {
	if path == m.oldRoot {
		return m.newRoot, true
	}
	if isDescendant(m.oldRoot, path) {
		return m.newRoot + path[len(m.oldRoot):], true
	}
	return path, false
}

// Invert returns the reverse mapper, used to validate round-trip
// behavior and to undo a migration.
func (m *Mapper) Invert() *Mapper {
	return &Mapper{oldRoot: m.newRoot, newRoot: m.oldRoot}
}

func normalizeRoot(root string) (string, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return "", errors.New("root must not be empty")
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("root %q must be absolute", root)
	}
	return cleaned, nil
}

// isDescendant reports whether path sits strictly below root, matching
// only at a separator boundary so /media/older never matches /media/old.
func isDescendant(root, path string) bool {
	if !strings.HasPrefix(path, root) {
		return false
	}
	rest := path[len(root):]
	return len(rest) > 0 && (rest[0] == '/' || rest[0] == filepath.Separator)
}
