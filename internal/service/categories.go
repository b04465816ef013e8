package service

import (
	"context"
	"strings"

	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// AddCategory creates a custom category with an id derived from its name.
func (s *Service) AddCategory(ctx context.Context, name, icon, color string) (engine.Category, error) {
	c := engine.Category{
		ID:    category.NewCustomID(name, s.Clock.Now()),
		Name:  strings.TrimSpace(name),
		Icon:  icon,
		Color: color,
	}
	if err := s.Categories.AddCustom(ctx, c); err != nil {
		return engine.Category{}, err
	}
	return c, nil
}

// UpdateCategory overrides the display fields of a default or custom category.
func (s *Service) UpdateCategory(ctx context.Context, c engine.Category) error {
	return s.Categories.Update(ctx, c)
}

// RestoreCategory undoes a category deletion.
func (s *Service) RestoreCategory(ctx context.Context, id string) error {
	return s.Categories.Restore(ctx, id)
}

// CategoryAffected lists the birthdays that reference a category.
func (s *Service) CategoryAffected(ctx context.Context, id string) ([]engine.Birthday, error) {
	return s.Workflow.Affected(ctx, id)
}

// DeleteCategory runs the deletion workflow. After a reassignment the
// calendar events of moved birthdays are refreshed and the notification
// schedule is rebuilt.
func (s *Service) DeleteCategory(ctx context.Context, id string, d category.Disposition) (category.DeleteResult, error) {
	res, err := s.Workflow.Delete(ctx, id, d)
	if err != nil {
		return res, err
	}
	if len(res.Reassigned) == 0 {
		return res, nil
	}

	for _, b := range res.Reassigned {
		s.syncAfterStore(ctx, b)
	}
	if _, err := s.Lifecycle.RescheduleAll(ctx); err != nil {
		return res, err
	}
	return res, nil
}
