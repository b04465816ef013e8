// Package service is the application layer: it owns the rules that span
// storage, categories, the calendar feed and notification scheduling.
//
// Storage errors are returned to the caller. Calendar and notification
// failures are logged and never block a local change.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/calendar"
	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

// Service coordinates birthday mutations and their side effects.
type Service struct {
	Store      storage.Repository
	Categories *category.Store
	Workflow   *category.Workflow
	Calendar   calendar.Sync // optional
	Lifecycle  *notify.Manager
	Importer   *importer.Importer
	IDs        storage.IDGenerator
	Clock      engine.Clock

	// UncategorizedLabel names the synthetic bucket of CategoryStats.
	UncategorizedLabel string
}

// New wires a service. cal may be nil when calendar sync is not available.
func New(store storage.Repository, cats *category.Store, cal calendar.Sync, lifecycle *notify.Manager) *Service {
	return &Service{
		Store:              store,
		Categories:         cats,
		Workflow:           category.NewWorkflow(cats, store),
		Calendar:           cal,
		Lifecycle:          lifecycle,
		Importer:           importer.New(importer.NewHTTPFetcher()),
		IDs:                storage.UUIDGenerator{},
		Clock:              engine.RealClock{},
		UncategorizedLabel: config.FallbackUncategorized,
	}
}

// Get returns one birthday.
func (s *Service) Get(ctx context.Context, id string) (engine.Birthday, error) {
	return storage.Find(ctx, s.Store, id)
}

// List returns every birthday in storage order.
func (s *Service) List(ctx context.Context) ([]engine.Birthday, error) {
	return s.Store.GetAll(ctx)
}

// Add creates a birthday: it assigns ids, normalizes the category, derives
// the zodiac sign, syncs the calendar, persists, then schedules its messages.
func (s *Service) Add(ctx context.Context, b engine.Birthday) (engine.Birthday, error) {
	if err := b.Validate(); err != nil {
		return engine.Birthday{}, err
	}
	b = b.Clone()
	b.ID = s.IDs.NewID()
	b.Category = s.Categories.Normalize(b.Category)
	if b.ZodiacSign == "" {
		b.ZodiacSign = engine.ZodiacSign(b.BirthDate)
	}
	b.CalendarEventID = ""

	if err := s.prepareMessages(&b, nil); err != nil {
		return engine.Birthday{}, err
	}

	s.syncCalendar(ctx, &b)
	if err := s.Store.Add(ctx, b); err != nil {
		s.unsyncCalendar(ctx, b.CalendarEventID)
		return engine.Birthday{}, err
	}

	s.Lifecycle.ScheduleBirthday(ctx, b)
	slog.Info(config.MsgBirthdayAdded,
		config.LogKeyComponent, config.CompService,
		config.LogKeyBirthdayID, b.ID)
	return b, nil
}

// Update replaces the editable fields of an existing birthday. The calendar
// event reference is owned by the service and is kept from storage.
func (s *Service) Update(ctx context.Context, b engine.Birthday) (engine.Birthday, error) {
	if err := b.Validate(); err != nil {
		return engine.Birthday{}, err
	}
	existing, err := s.Get(ctx, b.ID)
	if err != nil {
		return engine.Birthday{}, err
	}

	b = b.Clone()
	b.Category = s.Categories.Normalize(b.Category)
	if b.ZodiacSign == "" || !b.BirthDate.Equal(existing.BirthDate) {
		b.ZodiacSign = engine.ZodiacSign(b.BirthDate)
	}
	b.CalendarEventID = existing.CalendarEventID
	if err := s.prepareMessages(&b, existing.ScheduledMessages); err != nil {
		return engine.Birthday{}, err
	}

	s.syncCalendar(ctx, &b)
	if err := s.Store.Update(ctx, b); err != nil {
		return engine.Birthday{}, err
	}

	s.Lifecycle.RefreshBirthday(ctx, b)
	slog.Info(config.MsgBirthdayUpdated,
		config.LogKeyComponent, config.CompService,
		config.LogKeyBirthdayID, b.ID)
	return b, nil
}

// prepareMessages validates every message time and fills in the fields the
// service owns, before anything is persisted or scheduled.
//
// A message without an id, or repeating an id already used earlier on the
// same birthday, receives a fresh one: the notification id is derived from
// the (birthday, message) pair, so two messages sharing an id would collapse
// into a single pending entry. A message that already existed in previous
// keeps its creation date; new ones are stamped with the service clock.
func (s *Service) prepareMessages(b *engine.Birthday, previous []engine.ScheduledMessage) error {
	created := make(map[string]time.Time, len(previous))
	for _, m := range previous {
		created[m.ID] = m.CreatedDate
	}

	now := s.Clock.Now()
	seen := make(map[string]bool, len(b.ScheduledMessages))
	for i := range b.ScheduledMessages {
		m := &b.ScheduledMessages[i]
		if _, err := engine.ParseTimeOfDay(m.ScheduledTime); err != nil {
			return err
		}
		if m.ID == "" || seen[m.ID] {
			m.ID = s.IDs.NewID()
		}
		seen[m.ID] = true
		m.BirthdayID = b.ID

		if m.CreatedDate.IsZero() {
			if at, ok := created[m.ID]; ok && !at.IsZero() {
				m.CreatedDate = at
			} else {
				m.CreatedDate = now
			}
		}
	}
	return nil
}

// Delete removes a birthday, then cancels its notifications and deletes its
// calendar event.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}

	s.Lifecycle.CancelBirthday(ctx, id)
	s.unsyncCalendar(ctx, existing.CalendarEventID)

	slog.Info(config.MsgBirthdayDeleted,
		config.LogKeyComponent, config.CompService,
		config.LogKeyBirthdayID, id)
	return nil
}

// ClearAll empties storage, drops calendar events best-effort and rebuilds
// the (now empty) notification schedule.
func (s *Service) ClearAll(ctx context.Context) error {
	all, err := s.Store.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := s.Store.Clear(ctx); err != nil {
		return err
	}

	for _, b := range all {
		s.unsyncCalendar(ctx, b.CalendarEventID)
	}
	if _, err := s.Lifecycle.RescheduleAll(ctx); err != nil {
		return err
	}

	slog.Info(config.MsgClearAll,
		config.LogKeyComponent, config.CompService,
		config.LogKeyCount, len(all))
	return nil
}

// Reschedule rebuilds every pending notification from storage.
func (s *Service) Reschedule(ctx context.Context) (int, error) {
	return s.Lifecycle.RescheduleAll(ctx)
}

// syncCalendar creates or updates the event of b when sync is enabled and
// records the event id on success.
func (s *Service) syncCalendar(ctx context.Context, b *engine.Birthday) {
	if s.Calendar == nil || !s.Calendar.Enabled() {
		return
	}
	log := slog.With(config.LogKeyComponent, config.CompCalendar, config.LogKeyBirthdayID, b.ID)

	if b.CalendarEventID != "" {
		err := s.Calendar.Update(ctx, *b, b.CalendarEventID)
		if err == nil {
			return
		}
		if !errors.Is(err, calendar.ErrEventNotFound) {
			log.Debug(config.MsgCalendarFail, config.LogKeyError, err)
			return
		}
	}

	eventID, err := s.Calendar.Create(ctx, *b)
	if err != nil {
		log.Debug(config.MsgCalendarFail, config.LogKeyError, err)
		return
	}
	b.CalendarEventID = eventID
}

func (s *Service) unsyncCalendar(ctx context.Context, eventID string) {
	if eventID == "" || s.Calendar == nil || !s.Calendar.Enabled() {
		return
	}
	if err := s.Calendar.Delete(ctx, eventID); err != nil {
		slog.Debug(config.MsgCalendarFail,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyEventID, eventID,
			config.LogKeyError, err)
	}
}
