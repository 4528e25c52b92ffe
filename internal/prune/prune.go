package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"jellyshift/internal/config"
	"jellyshift/internal/itemid"
	"jellyshift/internal/library"
	"jellyshift/internal/logging"
	"jellyshift/internal/metadata"
)

// ErrUnknownClass reports a media class name with no registered type set.
var ErrUnknownClass = errors.New("unknown media class")

const aggregateFolderType = "MediaBrowser.Controller.Entities.AggregateFolder"

// classes maps a media class name to the .NET type names it covers.
var classes = map[string][]string{
	"audio": {
		"MediaBrowser.Controller.Entities.Audio.Audio",
		"MediaBrowser.Controller.Entities.Audio.MusicAlbum",
		"MediaBrowser.Controller.Entities.Audio.MusicArtist",
		"MediaBrowser.Controller.Entities.Audio.MusicGenre",
	},
}

// Classes returns the known media class names in sorted order.
func Classes() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pruner deletes every library row of a media class together with the
// folder chain that exists only to contain it, then drops the orphaned
// metadata folders.
type Pruner struct {
	store  *library.Store
	mover  *metadata.Mover
	logger *slog.Logger
}

func New(cfg *config.Config, store *library.Store, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		mover:  metadata.NewMover(cfg.MetadataPath()),
		logger: logger,
	}
}

// Options control a prune run.
type Options struct {
	// KeepFolders leaves metadata folders of deleted items on disk.
	KeepFolders bool
	Vacuum      bool
}

// Result summarizes what a prune run removed.
type Result struct {
	ItemsDeleted   map[string]int // type name -> rows deleted
	FoldersRemoved int
}

// Total returns the overall number of deleted rows.
func (r *Result) Total() int {
	total := 0
	for _, count := range r.ItemsDeleted {
		total += count
	}
	return total
}

// Run deletes all items of the given class plus their parent folder
// chain. Parents are resolved recursively and the walk stops at the
// aggregate folder forming the root of the virtual directory tree.
func (p *Pruner) Run(ctx context.Context, class string, opts Options) (*Result, error) {
	typeNames, ok := classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	items, err := p.store.ItemsByTypes(ctx, typeNames)
	if err != nil {
		return nil, err
	}
	p.logger.Info("collected class items",
		logging.String("class", class),
		logging.Int("items", len(items)))

	result := &Result{ItemsDeleted: make(map[string]int)}
	seen := make(map[itemid.ID]bool)
	var deleteIDs []itemid.ID
	var pending []itemid.ID

	for _, item := range items {
		result.ItemsDeleted[item.Type]++
		seen[item.ID] = true
		deleteIDs = append(deleteIDs, item.ID)
		if !item.ParentID.IsZero() {
			pending = append(pending, item.ParentID)
		}
	}

	// Walk up the parent chain until every branch reaches the
	// aggregate folder.
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		parent, err := p.store.ItemByGUID(ctx, id.BytesLE())
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.Type == aggregateFolderType {
			continue
		}
		result.ItemsDeleted[parent.Type]++
		deleteIDs = append(deleteIDs, parent.ID)
		if !parent.ParentID.IsZero() {
			pending = append(pending, parent.ParentID)
		}
	}

	if err := p.store.DeleteItems(ctx, deleteIDs); err != nil {
		return nil, err
	}

	if !opts.KeepFolders {
		for _, id := range deleteIDs {
			removed, err := p.mover.Remove(id)
			if err != nil {
				return nil, err
			}
			result.FoldersRemoved += removed
		}
	}

	if opts.Vacuum {
		if err := p.store.Vacuum(ctx); err != nil {
			return nil, err
		}
	}

	p.logger.Info("prune complete",
		logging.String("class", class),
		logging.Int("items", result.Total()),
		logging.Int("metadata_folders", result.FoldersRemoved))
	return result, nil
}
