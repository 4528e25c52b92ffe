package migrate

import (
	"context"

	"jellyshift/internal/itemid"
	"jellyshift/internal/logging"
)

// Mismatch is an item whose stored identifier disagrees with the hash
// of its current path and type.
type Mismatch struct {
	Name     string
	Type     string
	Path     string
	StoredID itemid.ID
	WantID   itemid.ID
}

// Verify re-derives the identifier for every item carrying a path and
// reports disagreements. Read-only; the invariant check from the
// migration run as a standalone operation.
func (m *Migrator) Verify(ctx context.Context) ([]Mismatch, error) {
	items, err := m.store.AllItemsWithPath(ctx)
	if err != nil {
		return nil, Wrap(ErrDatabase, "verify", "scan items", err)
	}

	var mismatches []Mismatch
	for _, item := range items {
		want, err := m.hasher.Hash(item.Path, item.Type)
		if err != nil {
			return nil, Wrap(ErrValidation, "verify", "hash "+item.Path, err)
		}
		if want != item.ID {
			mismatches = append(mismatches, Mismatch{
				Name:     item.Name,
				Type:     item.Type,
				Path:     item.Path,
				StoredID: item.ID,
				WantID:   want,
			})
		}
	}

	m.logger.Info("verification finished",
		logging.Int("items", len(items)),
		logging.Int("mismatches", len(mismatches)),
	)
	return mismatches, nil
}

// PlanRepair builds a plan that re-keys every mismatched item in place,
// without any path move: the remedy after the server's case sensitivity
// or program-data mapping changed under existing media. The returned
// plan carries no root pair and is applied with the same per-item
// update set as a migration.
func (m *Migrator) PlanRepair(ctx context.Context) (*Plan, error) {
	items, err := m.store.AllItemsWithPath(ctx)
	if err != nil {
		return nil, Wrap(ErrDatabase, "repair", "scan items", err)
	}

	plan := &Plan{}
	for _, item := range items {
		want, err := m.hasher.Hash(item.Path, item.Type)
		if err != nil {
			return nil, Wrap(ErrValidation, "repair", "hash "+item.Path, err)
		}
		if want == item.ID {
			plan.Unchanged++
			continue
		}
		plan.Changes = append(plan.Changes, Change{
			Type:    item.Type,
			Name:    item.Name,
			OldPath: item.Path,
			NewPath: item.Path,
			OldID:   item.ID,
			NewID:   want,
			Images:  item.Images,
		})
	}

	m.logger.Info("repair planned",
		logging.Int("changes", len(plan.Changes)),
		logging.Int("unchanged", plan.Unchanged),
	)
	return plan, nil
}
