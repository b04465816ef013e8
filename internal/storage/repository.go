package storage

import (
	"context"
	"errors"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

var ErrNotFound = errors.New(config.ErrNotFound)

// Repository is the birthday store. Scheduled messages are embedded in their
// birthday record, so every message mutation is a read-modify-write of the
// whole birthday.
type Repository interface {
	GetAll(ctx context.Context) ([]engine.Birthday, error)
	Add(ctx context.Context, b engine.Birthday) error
	Update(ctx context.Context, b engine.Birthday) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// CategoryState holds the user-owned layers of the category overlay.
// The built-in catalog is never stored.
type CategoryState struct {
	Custom     []engine.Category `json:"custom"`
	Modified   []engine.Category `json:"modified"`
	DeletedIDs []string          `json:"deletedIds"`
}

// CategoryStateRepository persists the overlay layers.
type CategoryStateRepository interface {
	LoadCategoryState(ctx context.Context) (CategoryState, error)
	SaveCategoryState(ctx context.Context, state CategoryState) error
}

// Find returns the birthday with the given id from a GetAll snapshot.
func Find(ctx context.Context, repo Repository, id string) (engine.Birthday, error) {
	all, err := repo.GetAll(ctx)
	if err != nil {
		return engine.Birthday{}, err
	}
	for _, b := range all {
		if b.ID == id {
			return b, nil
		}
	}
	return engine.Birthday{}, ErrNotFound
}
