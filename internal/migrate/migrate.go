package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"jellyshift/internal/collections"
	"jellyshift/internal/config"
	"jellyshift/internal/itemid"
	"jellyshift/internal/library"
	"jellyshift/internal/logging"
	"jellyshift/internal/metadata"
	"jellyshift/internal/pathmap"
)

// Migrator runs the path and identifier migration over one library.
type Migrator struct {
	cfg    *config.Config
	store  *library.Store
	mover  *metadata.Mover
	hasher itemid.Hasher
	logger *slog.Logger
}

// New constructs a Migrator over an open store.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Migrator{
		cfg:   cfg,
		store: store,
		mover: metadata.NewMover(cfg.MetadataPath()),
		hasher: itemid.Hasher{
			ProgramData:   cfg.Server.ProgramData,
			CaseSensitive: cfg.Server.CaseSensitive,
		},
		logger: logger.With(logging.String("component", "migrate")),
	}
}

// Options controls the apply phase.
type Options struct {
	// SkipMetadata leaves metadata folders and image references alone.
	SkipMetadata bool
	// Vacuum compacts the database after a successful run.
	Vacuum bool
}

// Result summarizes a completed apply.
type Result struct {
	ItemsMigrated   int
	FoldersMoved    int
	CollectionFiles int
}

// Plan computes every pending change without writing anything.
func (m *Migrator) Plan(ctx context.Context, oldRoot, newRoot string) (*Plan, error) {
	mapper, err := pathmap.NewMapper(oldRoot, newRoot)
	if err != nil {
		return nil, Wrap(ErrValidation, "plan", "invalid root pair", err)
	}

	items, err := m.store.ItemsUnderPath(ctx, mapper.OldRoot())
	if err != nil {
		return nil, Wrap(ErrDatabase, "plan", "scan items", err)
	}

	plan := &Plan{Mapper: mapper}
	for _, item := range items {
		newPath, matched := mapper.Rewrite(item.Path)
		if !matched {
			// LIKE prefix filter is coarser than the boundary match.
			continue
		}
		newID, err := m.hasher.Hash(newPath, item.Type)
		if err != nil {
			return nil, Wrap(ErrValidation, "plan", fmt.Sprintf("hash %s", newPath), err)
		}
		if newID == item.ID && item.Path == newPath {
			plan.Unchanged++
			continue
		}
		// An identifier already matching the new location (partially
		// completed run) still needs its Path column rewritten, so the
		// change is kept with OldID == NewID.
		plan.Changes = append(plan.Changes, Change{
			Type:    item.Type,
			Name:    item.Name,
			OldPath: item.Path,
			NewPath: newPath,
			OldID:   item.ID,
			NewID:   newID,
			Images:  item.Images,
		})
	}

	m.logger.Info("migration planned",
		logging.String("old_root", mapper.OldRoot()),
		logging.String("new_root", mapper.NewRoot()),
		logging.Int("changes", len(plan.Changes)),
		logging.Int("unchanged", plan.Unchanged),
	)
	return plan, nil
}

// Apply executes a plan: collection files, per-item database updates,
// metadata folder moves, residual sweep, optional vacuum. The first
// error aborts the run; recovery is restore-from-backup.
func (m *Migrator) Apply(ctx context.Context, plan *Plan, opts Options) (*Result, error) {
	result := &Result{}

	// Repair plans carry no root pair, so there are no path prefixes to
	// rewrite in collection files or serialized columns.
	if plan.Mapper != nil {
		changedFiles, err := m.rewriteCollections(plan)
		if err != nil {
			return result, err
		}
		result.CollectionFiles = changedFiles
	}

	if err := m.store.CreateMaintenanceIndexes(ctx); err != nil {
		return result, Wrap(ErrDatabase, "apply", "create maintenance indexes", err)
	}

	for _, change := range plan.Changes {
		if err := m.applyChange(ctx, change, opts, result); err != nil {
			return result, err
		}
	}

	if plan.Mapper != nil {
		if err := m.store.RewritePathPrefixes(ctx, plan.Mapper.OldRoot(), plan.Mapper.NewRoot()); err != nil {
			return result, Wrap(ErrDatabase, "apply", "sweep serialized paths", err)
		}
	}

	if err := m.store.DropMaintenanceIndexes(ctx); err != nil {
		return result, Wrap(ErrDatabase, "apply", "drop maintenance indexes", err)
	}

	if opts.Vacuum {
		m.logger.Info("vacuuming database")
		if err := m.store.Vacuum(ctx); err != nil {
			return result, Wrap(ErrDatabase, "apply", "vacuum", err)
		}
	}

	m.logger.Info("migration applied",
		logging.Int("items", result.ItemsMigrated),
		logging.Int("metadata_folders", result.FoldersMoved),
		logging.Int("collection_files", result.CollectionFiles),
	)
	return result, nil
}

func (m *Migrator) applyChange(ctx context.Context, change Change, opts Options, result *Result) error {
	logger := m.logger.With(
		logging.String("old_id", change.OldID.Hex()),
		logging.String("new_id", change.NewID.Hex()),
	)
	logger.Debug("migrating item",
		logging.String("name", change.Name),
		logging.String("path", change.OldPath),
	)

	update := library.ItemUpdate{
		OldID:   change.OldID,
		NewID:   change.NewID,
		OldPath: change.OldPath,
		NewPath: change.NewPath,
	}

	// A path-only change (OldID == NewID) keeps its metadata folders
	// where they are.
	moveMetadata := !opts.SkipMetadata && change.OldID != change.NewID

	if moveMetadata {
		// Collision check runs before the database write so an occupied
		// destination aborts with this item's rows untouched.
		if err := m.mover.CheckDestination(change.OldID, change.NewID); err != nil {
			return Wrap(ErrFilesystem, "apply", fmt.Sprintf("metadata destination for %s", change.NewID), err)
		}
		if rewritten, changed := m.mover.RewriteImageRefs(change.Images, m.cfg.Server.ProgramData, change.OldID, change.NewID); changed {
			update.NewImages = &rewritten
		}
	}

	if err := m.store.ApplyItem(ctx, update); err != nil {
		return Wrap(ErrDatabase, "apply", fmt.Sprintf("update item %s", change.OldID), err)
	}
	result.ItemsMigrated++

	if moveMetadata {
		moved, err := m.mover.Move(change.OldID, change.NewID)
		if err != nil {
			return Wrap(ErrFilesystem, "apply", fmt.Sprintf("move metadata for %s", change.OldID), err)
		}
		result.FoldersMoved += moved
	}
	return nil
}

func (m *Migrator) rewriteCollections(plan *Plan) (int, error) {
	root := m.cfg.CollectionPath()
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("collection root absent, skipping", logging.String("root", root))
			return 0, nil
		}
		return 0, Wrap(ErrFilesystem, "apply", "stat collection root", err)
	}
	changed, err := collections.RewritePaths(root, plan.Mapper.OldRoot(), plan.Mapper.NewRoot())
	if err != nil {
		return changed, Wrap(ErrFilesystem, "apply", "rewrite collection files", err)
	}
	return changed, nil
}
