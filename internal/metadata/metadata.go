package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jellyshift/internal/fileutil"
	"jellyshift/internal/itemid"
)

// ErrDestinationExists indicates the target metadata folder is already
// occupied. Overwriting or merging would silently destroy cached
// artwork, so this always aborts the run.
var ErrDestinationExists = errors.New("destination metadata folder already exists")

// Mover relocates identifier-keyed metadata folders. Folders live at
// <root>/<kind>/<hex[:2]>/<hex> where kind is a first-level directory
// such as library or People.
type Mover struct {
	root string
}

// NewMover returns a Mover anchored at the metadata root.
func NewMover(root string) *Mover {
	return &Mover{root: filepath.Clean(root)}
}

// Root returns the metadata root directory.
func (m *Mover) Root() string { return m.root }

// Sources returns every existing folder keyed by the identifier across
// all kind directories. A missing root yields no sources.
func (m *Mover) Sources(id itemid.ID) ([]string, error) {
	kinds, err := m.kinds()
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, kind := range kinds {
		dir := m.folder(kind, id)
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat metadata folder %s: %w", dir, err)
		}
		if info.IsDir() {
			sources = append(sources, dir)
		}
	}
	return sources, nil
}

// CheckDestination verifies no folder keyed by newID exists yet in any
// kind directory that holds a folder for oldID. Run before the item's
// database update so a collision aborts with the database untouched.
func (m *Mover) CheckDestination(oldID, newID itemid.ID) error {
	sources, err := m.Sources(oldID)
	if err != nil {
		return err
	}
	for _, src := range sources {
		kind := m.kindOf(src)
		dst := m.folder(kind, newID)
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat metadata destination %s: %w", dst, err)
		}
	}
	return nil
}

// Move relocates every metadata folder keyed by oldID to the newID
// location. Missing sources are a no-op since metadata is regenerable;
// an occupied destination is an error. The emptied shard directory is
// pruned best-effort.
func (m *Mover) Move(oldID, newID itemid.ID) (int, error) {
	sources, err := m.Sources(oldID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, src := range sources {
		kind := m.kindOf(src)
		dst := m.folder(kind, newID)
		if _, err := os.Stat(dst); err == nil {
			return moved, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		} else if !errors.Is(err, os.ErrNotExist) {
			return moved, fmt.Errorf("stat metadata destination %s: %w", dst, err)
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return moved, fmt.Errorf("create metadata shard for %s: %w", dst, err)
		}
		if err := fileutil.MoveDir(src, dst); err != nil {
			return moved, fmt.Errorf("move metadata folder %s to %s: %w", src, dst, err)
		}
		moved++

		// Remove the old shard directory if this was its last entry.
		_ = os.Remove(filepath.Dir(src))
	}
	return moved, nil
}

// Remove deletes every metadata folder keyed by the identifier,
// pruning emptied shards. Used by the prune operation.
func (m *Mover) Remove(id itemid.ID) (int, error) {
	sources, err := m.Sources(id)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, src := range sources {
		if err := os.RemoveAll(src); err != nil {
			return removed, fmt.Errorf("remove metadata folder %s: %w", src, err)
		}
		removed++
		_ = os.Remove(filepath.Dir(src))
	}
	return removed, nil
}

func (m *Mover) folder(kind string, id itemid.ID) string {
	hex := id.Hex()
	return filepath.Join(m.root, kind, hex[:2], hex)
}

func (m *Mover) kindOf(folder string) string {
	rel, err := filepath.Rel(m.root, folder)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func (m *Mover) kinds() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata root %s: %w", m.root, err)
	}
	var kinds []string
	for _, entry := range entries {
		if entry.IsDir() {
			kinds = append(kinds, entry.Name())
		}
	}
	return kinds, nil
}
