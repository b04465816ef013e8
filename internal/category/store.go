package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

var (
	ErrIDEmpty         = errors.New(config.ErrCategoryIDEmpty)
	ErrNameEmpty       = errors.New(config.ErrCategoryNameEmpty)
	ErrExists          = errors.New(config.ErrCategoryExists)
	ErrUnknownCategory = errors.New(config.ErrUnknownCategory)
)

// Store is the category overlay. Every mutation persists the new layers before
// it becomes visible, so a failed save leaves the in-memory view unchanged.
//
// The built-in catalog is never written to storage. Only the user's changes
// are: custom categories, per-id overrides and tombstones. A later release can
// then rename or add a default and every installation picks it up, unless the
// user has overridden or deleted that id, in which case their choice wins.
//
// Deletion is a tombstone rather than a removal so that Restore brings a
// category back with the name and colour the user last gave it, and so that
// birthdays still pointing at the id can be listed as orphans.
type Store struct {
	repo storage.CategoryStateRepository

	mu    sync.RWMutex
	state storage.CategoryState
}

func NewStore(repo storage.CategoryStateRepository) *Store {
	return &Store{repo: repo}
}

// Load replaces the in-memory layers with the persisted ones.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.repo.LoadCategoryState(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state = cloneState(state)
	s.mu.Unlock()
	return nil
}

// Visible merges the layers: defaults in catalog order then custom categories
// in creation order, overrides applied by id, tombstoned ids removed.
func (s *Store) Visible() []engine.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return merge(s.state)
}

// IsVisible reports whether id resolves to a visible category.
func (s *Store) IsVisible(id string) bool {
	_, ok := s.Resolve(id)
	return ok
}

// Resolve returns the visible category with the given id.
func (s *Store) Resolve(id string) (engine.Category, bool) {
	for _, c := range s.Visible() {
		if c.ID == id {
			return c, true
		}
	}
	return engine.Category{}, false
}

// Normalize maps an empty or non-visible id to the default category id.
func (s *Store) Normalize(id string) string {
	if id == "" || !s.IsVisible(id) {
		return config.DefaultCategoryID
	}
	return id
}

// Known reports whether id exists in the catalog or the custom list,
// whether or not it is currently deleted.
func (s *Store) Known(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.knownLocked(id)
}

// Deleted returns the tombstoned categories with their current fields, in
// deletion order. Ids that no longer exist in any layer are skipped.
func (s *Store) Deleted() []engine.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := merge(storage.CategoryState{Custom: s.state.Custom, Modified: s.state.Modified})
	out := make([]engine.Category, 0, len(s.state.DeletedIDs))
	for _, id := range s.state.DeletedIDs {
		for _, c := range all {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// AddCustom appends c to the custom list. The id is chosen by the caller,
// usually with NewCustomID.
func (s *Store) AddCustom(ctx context.Context, c engine.Category) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.mutate(ctx, func(state *storage.CategoryState) error {
		if IsDefault(c.ID) || containsCategory(state.Custom, c.ID) {
			return fmt.Errorf("%w: %s", ErrExists, c.ID)
		}
		state.Custom = append(state.Custom, c)
		return nil
	}, config.MsgCategoryAdded, c.ID)
}

// Update upserts an override for c.ID. It applies uniformly to default and
// custom categories.
func (s *Store) Update(ctx context.Context, c engine.Category) error {
	if err := validate(c); err != nil {
		return err
	}
	return s.mutate(ctx, func(state *storage.CategoryState) error {
		if !IsDefault(c.ID) && !containsCategory(state.Custom, c.ID) {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, c.ID)
		}
		if i := indexOf(state.Modified, c.ID); i >= 0 {
			state.Modified[i] = c
		} else {
			state.Modified = append(state.Modified, c)
		}
		return nil
	}, config.MsgCategoryUpdated, c.ID)
}

// SoftDelete tombstones id. Deleting an already deleted id is a no-op.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDEmpty
	}
	return s.mutate(ctx, func(state *storage.CategoryState) error {
		if !slices.Contains(state.DeletedIDs, id) {
			state.DeletedIDs = append(state.DeletedIDs, id)
		}
		return nil
	}, config.MsgCategoryDeleted, id)
}

// Restore removes the tombstone of id, if any.
func (s *Store) Restore(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDEmpty
	}
	return s.mutate(ctx, func(state *storage.CategoryState) error {
		state.DeletedIDs = slices.DeleteFunc(state.DeletedIDs, func(d string) bool { return d == id })
		return nil
	}, config.MsgCategoryRestored, id)
}

// State returns a copy of the user-owned layers.
func (s *Store) State() storage.CategoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

func (s *Store) mutate(ctx context.Context, apply func(*storage.CategoryState) error, msg, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// apply works on a copy. The slices are cloned, so an append that reuses
	// spare capacity cannot leak into s.state before the save succeeds.
	next := cloneState(s.state)
	if err := apply(&next); err != nil {
		return err
	}
	if err := s.repo.SaveCategoryState(ctx, next); err != nil {
		return err
	}
	s.state = next

	slog.Info(msg, config.LogKeyComponent, config.CompCategory, config.LogKeyCategoryID, id)
	return nil
}

func (s *Store) knownLocked(id string) bool {
	return IsDefault(id) || containsCategory(s.state.Custom, id)
}

func merge(state storage.CategoryState) []engine.Category {
	base := make([]engine.Category, 0, len(defaultCatalog)+len(state.Custom))
	base = append(base, defaultCatalog...)
	base = append(base, state.Custom...)

	out := make([]engine.Category, 0, len(base))
	for _, c := range base {
		if slices.Contains(state.DeletedIDs, c.ID) {
			continue
		}
		if i := indexOf(state.Modified, c.ID); i >= 0 {
			// The override replaces display fields only. Position stays that
			// of the base layer so a rename does not reorder pickers.
			o := state.Modified[i]
			c.Name, c.Icon, c.Color = o.Name, o.Icon, o.Color
		}
		out = append(out, c)
	}
	return out
}

func validate(c engine.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrIDEmpty
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameEmpty
	}
	return nil
}

func indexOf(list []engine.Category, id string) int {
	return slices.IndexFunc(list, func(c engine.Category) bool { return c.ID == id })
}

func containsCategory(list []engine.Category, id string) bool {
	return indexOf(list, id) >= 0
}

func cloneState(in storage.CategoryState) storage.CategoryState {
	return storage.CategoryState{
		Custom:     slices.Clone(in.Custom),
		Modified:   slices.Clone(in.Modified),
		DeletedIDs: slices.Clone(in.DeletedIDs),
	}
}
