package category

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

var (
	ErrDispositionRequired = errors.New(config.ErrDispositionNeeded)
	ErrSelfReassign        = errors.New(config.ErrSelfReassign)
)

// DispositionKind says what happens to birthdays referencing a deleted category.
type DispositionKind int

const (
	// DispositionNone only succeeds when no birthday references the category.
	DispositionNone DispositionKind = iota
	DispositionReassign
	DispositionOrphan
)

// Disposition is the caller's decision for affected birthdays.
type Disposition struct {
	Kind   DispositionKind
	Target string // Reassign only
}

// Reassign moves affected birthdays to target before deleting.
func Reassign(target string) Disposition {
	return Disposition{Kind: DispositionReassign, Target: target}
}

// Orphan deletes without touching affected birthdays.
func Orphan() Disposition {
	return Disposition{Kind: DispositionOrphan}
}

// DeleteResult reports what a completed deletion did.
type DeleteResult struct {
	Affected   int
	Reassigned []engine.Birthday
}

// Workflow deletes categories without silently losing birthday references.
type Workflow struct {
	Store     *Store
	Birthdays storage.Repository
}

func NewWorkflow(store *Store, birthdays storage.Repository) *Workflow {
	return &Workflow{Store: store, Birthdays: birthdays}
}

// ComputeAffected returns the birthdays whose category equals categoryID exactly.
func ComputeAffected(birthdays []engine.Birthday, categoryID string) []engine.Birthday {
	out := make([]engine.Birthday, 0)
	for _, b := range birthdays {
		if b.Category == categoryID {
			out = append(out, b)
		}
	}
	return out
}

// Orphans returns the birthdays with a category that resolves to no visible one.
// Birthdays without a category are not orphans.
func Orphans(birthdays []engine.Birthday, visible []engine.Category) []engine.Birthday {
	ids := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		ids[c.ID] = struct{}{}
	}

	out := make([]engine.Birthday, 0)
	for _, b := range birthdays {
		if b.Category == "" {
			continue
		}
		if _, ok := ids[b.Category]; !ok {
			out = append(out, b)
		}
	}
	return out
}

// Affected loads the birthdays referencing categoryID.
func (w *Workflow) Affected(ctx context.Context, categoryID string) ([]engine.Birthday, error) {
	all, err := w.Birthdays.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeAffected(all, categoryID), nil
}

// Orphans loads the birthdays whose category is no longer visible.
func (w *Workflow) Orphans(ctx context.Context) ([]engine.Birthday, error) {
	all, err := w.Birthdays.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Orphans(all, w.Store.Visible()), nil
}

// Delete soft-deletes categoryID. When birthdays reference it, d must be
// Reassign or Orphan, otherwise ErrDispositionRequired is returned and nothing
// changes. A reassignment updates every affected birthday before the
// tombstone is written; a storage failure midway aborts the deletion.
func (w *Workflow) Delete(ctx context.Context, categoryID string, d Disposition) (DeleteResult, error) {
	log := slog.With(config.LogKeyComponent, config.CompCategory, config.LogKeyCategoryID, categoryID)

	if categoryID == "" {
		return DeleteResult{}, ErrIDEmpty
	}
	if !w.Store.IsVisible(categoryID) {
		return DeleteResult{}, ErrUnknownCategory
	}

	affected, err := w.Affected(ctx, categoryID)
	if err != nil {
		return DeleteResult{}, err
	}
	result := DeleteResult{Affected: len(affected)}

	if len(affected) > 0 {
		switch d.Kind {
		case DispositionReassign:
			if d.Target == categoryID {
				return result, ErrSelfReassign
			}
			if !w.Store.IsVisible(d.Target) {
				return result, ErrUnknownCategory
			}
			for _, b := range affected {
				b.Category = d.Target
				if err := w.Birthdays.Update(ctx, b); err != nil {
					return result, err
				}
				result.Reassigned = append(result.Reassigned, b)
			}
			log.Info(config.MsgReassigned, config.LogKeyTarget, d.Target, config.LogKeyAffected, len(affected))
		case DispositionOrphan:
		default:
			return result, ErrDispositionRequired
		}
	}

	if err := w.Store.SoftDelete(ctx, categoryID); err != nil {
		return result, err
	}
	return result, nil
}
