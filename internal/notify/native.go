package notify

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// NativeScheduler submits one absolute-time entry per active message to a
// NativeBackend and cancels entries by recomputing their stable id.
type NativeScheduler struct {
	Backend NativeBackend
	Clock   engine.Clock
}

// NewNativeScheduler wires a native strategy with the real clock.
func NewNativeScheduler(backend NativeBackend) *NativeScheduler {
	return &NativeScheduler{Backend: backend, Clock: engine.RealClock{}}
}

func (s *NativeScheduler) Mode() Mode { return ModeNative }

// Schedule returns true once the backend accepted the entry.
func (s *NativeScheduler) Schedule(ctx context.Context, b engine.Birthday, m engine.ScheduledMessage) bool {
	log := slog.With(
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyBirthdayID, b.ID,
		config.LogKeyMessageID, m.ID,
	)

	if !m.Active {
		return false
	}
	tod, err := engine.ParseTimeOfDay(m.ScheduledTime)
	if err != nil {
		log.Debug(config.MsgInvalidTime, config.LogKeyValue, m.ScheduledTime)
		return false
	}

	perm, err := s.Backend.RequestPermission(ctx)
	if err != nil {
		log.Debug(config.MsgPermissionFail, config.LogKeyError, err)
		return false
	}
	if perm != PermissionGranted {
		log.Debug(config.MsgPermissionDenied, config.LogKeyPermission, perm)
		return false
	}

	// Placeholders are resolved for the fire day so {age} is the age reached then.
	at := engine.NextFireInstant(b.BirthDate, tod, s.Clock.Now())
	title, body := Render(b, m, at)
	entry := PendingNotification{
		ID:         StableID(b.ID, m.ID),
		Title:      title,
		Body:       body,
		At:         at,
		BirthdayID: b.ID,
		MessageID:  m.ID,
	}

	if err := s.Backend.Schedule(ctx, entry); err != nil {
		log.Debug(config.MsgScheduleFail, config.LogKeyError, err)
		return false
	}

	log.Debug(config.MsgScheduled,
		config.LogKeyNotifID, entry.ID,
		config.LogKeyFireAt, entry.At)
	return true
}

// Cancel removes the entry of one pair. Cancelling an unknown id is not an error.
func (s *NativeScheduler) Cancel(ctx context.Context, birthdayID, messageID string) {
	s.cancel(ctx, []int32{StableID(birthdayID, messageID)})
}

// CancelAllForBirthday cancels, in one batch, every pending entry whose
// metadata references birthdayID.
func (s *NativeScheduler) CancelAllForBirthday(ctx context.Context, birthdayID string) {
	var ids []int32
	for _, p := range s.listPending(ctx) {
		if p.BirthdayID == birthdayID {
			ids = append(ids, p.ID)
		}
	}
	s.cancel(ctx, ids)
}

// CancelAllPending empties the backend queue in one batch.
func (s *NativeScheduler) CancelAllPending(ctx context.Context) {
	pending := s.listPending(ctx)
	ids := make([]int32, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	s.cancel(ctx, ids)
}

// Pending reflects the backend queue verbatim.
func (s *NativeScheduler) Pending(ctx context.Context) []PendingNotification {
	return s.listPending(ctx)
}

// ScheduledCount is the backend queue length.
func (s *NativeScheduler) ScheduledCount(ctx context.Context) int {
	return len(s.listPending(ctx))
}

func (s *NativeScheduler) listPending(ctx context.Context) []PendingNotification {
	pending, err := s.Backend.ListPending(ctx)
	if err != nil {
		slog.Debug(config.MsgListPendingFail,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyError, err)
		return []PendingNotification{}
	}
	return pending
}

func (s *NativeScheduler) cancel(ctx context.Context, ids []int32) {
	if len(ids) == 0 {
		return
	}
	if err := s.Backend.Cancel(ctx, ids); err != nil {
		slog.Debug(config.MsgCancelFail,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyCount, len(ids),
			config.LogKeyError, err)
	}
}
