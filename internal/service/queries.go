package service

import (
	"context"
	"sort"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// Upcoming is a birthday with its next occurrence.
type Upcoming struct {
	Birthday  engine.Birthday
	Next      time.Time
	DaysUntil int
	AgeNext   int
	AgeKnown  bool
}

// CategoryCount is one row of CategoryStats.
type CategoryCount struct {
	Category engine.Category
	Count    int
}

// Upcoming lists birthdays by days until their next occurrence, ties by
// name. A positive limit truncates the list.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]Upcoming, error) {
	all, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	out := make([]Upcoming, 0, len(all))
	for _, b := range all {
		next := engine.NextOccurrence(b.BirthDate, now)
		age, ok := engine.Age(b.BirthDate, next)
		out = append(out, Upcoming{
			Birthday:  b,
			Next:      next,
			DaysUntil: engine.DaysUntil(b.BirthDate, now),
			AgeNext:   age,
			AgeKnown:  ok,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntil != out[j].DaysUntil {
			return out[i].DaysUntil < out[j].DaysUntil
		}
		return out[i].Birthday.Name < out[j].Birthday.Name
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CategoryStats counts birthdays per visible category, in visible order.
// Birthdays without a category or with an orphaned one are counted in a
// trailing synthetic bucket, present only when non-empty.
func (s *Service) CategoryStats(ctx context.Context) ([]CategoryCount, error) {
	all, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := s.Categories.Visible()

	stats := make([]CategoryCount, 0, len(visible)+1)
	for _, c := range visible {
		stats = append(stats, CategoryCount{Category: c, Count: len(category.ComputeAffected(all, c.ID))})
	}

	uncategorized := len(category.Orphans(all, visible)) + len(category.ComputeAffected(all, ""))
	if uncategorized > 0 {
		stats = append(stats, CategoryCount{
			Category: engine.Category{ID: config.UncategorizedID, Name: s.UncategorizedLabel},
			Count:    uncategorized,
		})
	}
	return stats, nil
}

// Orphans returns the birthdays whose category is no longer visible.
func (s *Service) Orphans(ctx context.Context) ([]engine.Birthday, error) {
	return s.Workflow.Orphans(ctx)
}
