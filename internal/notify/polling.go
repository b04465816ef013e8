package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

// PollingScheduler is the non-native strategy. Nothing is ever pending:
// Check re-evaluates every active message and fires the ones whose instant
// fell inside the catch window and that were not sent today.
type PollingScheduler struct {
	Backend     WebBackend
	Store       storage.Repository
	Clock       engine.Clock
	CatchWindow time.Duration
}

// NewPollingScheduler wires a polling strategy with the real clock and the
// default catch window.
func NewPollingScheduler(backend WebBackend, store storage.Repository) *PollingScheduler {
	return &PollingScheduler{
		Backend:     backend,
		Store:       store,
		Clock:       engine.RealClock{},
		CatchWindow: config.CatchWindow,
	}
}

func (s *PollingScheduler) Mode() Mode { return ModePoll }

// Schedule reports whether the message is eligible for polling delivery.
// No external state is created.
func (s *PollingScheduler) Schedule(_ context.Context, _ engine.Birthday, m engine.ScheduledMessage) bool {
	if !m.Active {
		return false
	}
	_, err := engine.ParseTimeOfDay(m.ScheduledTime)
	return err == nil
}

func (s *PollingScheduler) Cancel(context.Context, string, string)       {}
func (s *PollingScheduler) CancelAllForBirthday(context.Context, string) {}
func (s *PollingScheduler) CancelAllPending(context.Context)             {}

// Pending synthesizes the list of what would fire next, ascending by fire
// instant. Ties keep birthday then message iteration order.
func (s *PollingScheduler) Pending(ctx context.Context) []PendingNotification {
	birthdays, ok := s.load(ctx)
	if !ok {
		return []PendingNotification{}
	}

	now := s.Clock.Now()
	out := make([]PendingNotification, 0)
	for _, b := range birthdays {
		for _, m := range b.ActiveMessages() {
			tod, err := engine.ParseTimeOfDay(m.ScheduledTime)
			if err != nil {
				continue
			}
			at := engine.NextFireInstant(b.BirthDate, tod, now)
			title, body := Render(b, m, at)
			out = append(out, PendingNotification{
				ID:         StableID(b.ID, m.ID),
				Title:      title,
				Body:       body,
				At:         at,
				BirthdayID: b.ID,
				MessageID:  m.ID,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

// ScheduledCount counts active messages directly. It does not simulate a
// schedule, so it may differ from len(Pending) (e.g. invalid times are counted).
func (s *PollingScheduler) ScheduledCount(ctx context.Context) int {
	birthdays, ok := s.load(ctx)
	if !ok {
		return 0
	}
	count := 0
	for _, b := range birthdays {
		count += len(b.ActiveMessages())
	}
	return count
}

// ShouldFire decides whether a message fires at now: its instant for the
// current year has passed by less than window, and it was not already sent
// on now's calendar day.
func ShouldFire(birthDate time.Time, m engine.ScheduledMessage, now time.Time, window time.Duration) bool {
	if !m.Active {
		return false
	}
	tod, err := engine.ParseTimeOfDay(m.ScheduledTime)
	if err != nil {
		return false
	}

	at := engine.FireInstantInYear(birthDate, tod, now.Year(), now.Location())
	if at.After(now) || now.Sub(at) >= window {
		return false
	}
	return m.LastSentDate == nil || !engine.SameDay(*m.LastSentDate, now)
}

// Check runs one poll. It is a no-op without permission; otherwise it fires
// every due message and persists lastSentDate on its birthday, then returns
// the number of notifications displayed.
//
// Display failures are swallowed like every other external call: the message
// is simply retried on the next tick while the catch window is still open.
// Storage failures are different. A failed load aborts the check, and a
// failed lastSentDate write does not stop the other messages from firing but
// is reported in the returned error, because the same message may fire again
// on the next tick.
func (s *PollingScheduler) Check(ctx context.Context) (int, error) {
	log := slog.With(config.LogKeyComponent, config.CompPoller)

	if s.Backend == nil || s.Backend.Permission() != PermissionGranted {
		return 0, nil
	}
	if s.Store == nil {
		return 0, nil
	}
	birthdays, err := s.Store.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrLoadBirthdays, err)
	}

	now := s.Clock.Now()
	fired := 0
	var errs []error
	for _, b := range birthdays {
		// Work on a copy so that several messages firing on the same birthday
		// in one tick accumulate their lastSentDate updates.
		current := b.Clone()
		for i, m := range current.ScheduledMessages {
			if !ShouldFire(current.BirthDate, m, now, s.CatchWindow) {
				continue
			}

			title, body := Render(current, m, now)
			tag := Tag(current.ID, m.ID)
			if err := s.Backend.Show(ctx, title, ShowOptions{Body: body, Tag: tag}); err != nil {
				log.Debug(config.MsgShowFail, config.LogKeyTag, tag, config.LogKeyError, err)
				continue
			}
			fired++

			sent := now
			current.ScheduledMessages[i].LastSentDate = &sent
			if err := s.Store.Update(ctx, current); err != nil {
				log.Error(config.MsgMarkSentFail,
					config.LogKeyBirthdayID, current.ID,
					config.LogKeyMessageID, m.ID,
					config.LogKeyError, err)
				errs = append(errs, fmt.Errorf("%s: %s: %w", config.ErrMarkSent, tag, err))
				continue
			}
			log.Info(config.MsgFired, config.LogKeyTag, tag)
		}
	}
	return fired, errors.Join(errs...)
}

// load backs the error-free Scheduler queries, which degrade to empty results.
func (s *PollingScheduler) load(ctx context.Context) ([]engine.Birthday, bool) {
	if s.Store == nil {
		return nil, false
	}
	birthdays, err := s.Store.GetAll(ctx)
	if err != nil {
		slog.Debug(config.MsgLoadFail,
			config.LogKeyComponent, config.CompPoller,
			config.LogKeyError, err)
		return nil, false
	}
	return birthdays, true
}
