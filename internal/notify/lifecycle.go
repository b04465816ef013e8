package notify

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

// Manager keeps the delivery strategy consistent with stored birthdays.
type Manager struct {
	Scheduler Scheduler
	Store     storage.Repository
}

func NewManager(s Scheduler, store storage.Repository) *Manager {
	return &Manager{Scheduler: s, Store: store}
}

// CancelMessage cancels the pending notification of one message.
func (m *Manager) CancelMessage(ctx context.Context, birthdayID, messageID string) {
	m.Scheduler.Cancel(ctx, birthdayID, messageID)
}

// CancelBirthday cancels every pending notification of a birthday.
func (m *Manager) CancelBirthday(ctx context.Context, birthdayID string) {
	m.Scheduler.CancelAllForBirthday(ctx, birthdayID)
}

// ScheduleBirthday schedules every active message of b and returns how many
// were accepted.
func (m *Manager) ScheduleBirthday(ctx context.Context, b engine.Birthday) int {
	scheduled := 0
	for _, msg := range b.ActiveMessages() {
		if m.Scheduler.Schedule(ctx, b, msg) {
			scheduled++
		}
	}
	return scheduled
}

// RefreshBirthday replaces the pending notifications of b after an edit.
func (m *Manager) RefreshBirthday(ctx context.Context, b engine.Birthday) int {
	m.Scheduler.CancelAllForBirthday(ctx, b.ID)
	return m.ScheduleBirthday(ctx, b)
}

// RefreshMessage replaces the pending notification of one message. An
// inactive message is only cancelled.
func (m *Manager) RefreshMessage(ctx context.Context, b engine.Birthday, msg engine.ScheduledMessage) bool {
	m.Scheduler.Cancel(ctx, b.ID, msg.ID)
	if !msg.Active {
		return false
	}
	return m.Scheduler.Schedule(ctx, b, msg)
}

// RescheduleAll cancels everything pending (native only), then schedules every
// active message of every birthday again. Cancellation completes before the
// first new schedule call. It returns how many messages were scheduled; only a
// storage failure is returned as an error.
func (m *Manager) RescheduleAll(ctx context.Context) (int, error) {
	// The native backend may still hold entries for messages that were
	// deleted or edited while it was not listening. Per-birthday cancellation
	// cannot reach those because their birthday may be gone, so the whole
	// queue is cleared. Poll mode has nothing pending to clear.
	if m.Scheduler.Mode() == ModeNative {
		m.Scheduler.CancelAllPending(ctx)
	}

	birthdays, err := m.Store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, b := range birthdays {
		scheduled += m.ScheduleBirthday(ctx, b)
	}

	slog.Info(config.MsgRescheduled,
		config.LogKeyComponent, config.CompLifecycle,
		config.LogKeyMode, m.Scheduler.Mode(),
		config.LogKeyCount, scheduled)
	return scheduled, nil
}
