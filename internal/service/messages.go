package service

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// AddMessage appends a scheduled message to a birthday and schedules it when
// active.
func (s *Service) AddMessage(ctx context.Context, birthdayID string, m engine.ScheduledMessage) (engine.ScheduledMessage, error) {
	if _, err := engine.ParseTimeOfDay(m.ScheduledTime); err != nil {
		return engine.ScheduledMessage{}, err
	}
	b, err := s.Get(ctx, birthdayID)
	if err != nil {
		return engine.ScheduledMessage{}, err
	}

	if m.ID == "" || b.MessageIndex(m.ID) >= 0 {
		m.ID = s.IDs.NewID()
	}
	m.BirthdayID = b.ID
	m.CreatedDate = s.Clock.Now()
	m.LastSentDate = nil
	b.ScheduledMessages = append(b.ScheduledMessages, m)

	if err := s.Store.Update(ctx, b); err != nil {
		return engine.ScheduledMessage{}, err
	}
	s.afterMessageChange(ctx, b, m)
	return m, nil
}

// UpdateMessage replaces a message by id. Its creation date and last sent
// date are kept from storage.
func (s *Service) UpdateMessage(ctx context.Context, birthdayID string, m engine.ScheduledMessage) error {
	if _, err := engine.ParseTimeOfDay(m.ScheduledTime); err != nil {
		return err
	}
	b, err := s.Get(ctx, birthdayID)
	if err != nil {
		return err
	}
	i := b.MessageIndex(m.ID)
	if i < 0 {
		return engine.ErrMessageNotFound
	}

	prev := b.ScheduledMessages[i]
	m.BirthdayID = b.ID
	m.CreatedDate = prev.CreatedDate
	m.LastSentDate = prev.LastSentDate
	b.ScheduledMessages[i] = m

	if err := s.Store.Update(ctx, b); err != nil {
		return err
	}
	s.afterMessageChange(ctx, b, m)
	return nil
}

// SetMessageActive toggles a message; deactivation cancels its notification.
func (s *Service) SetMessageActive(ctx context.Context, birthdayID, messageID string, active bool) error {
	b, err := s.Get(ctx, birthdayID)
	if err != nil {
		return err
	}
	i := b.MessageIndex(messageID)
	if i < 0 {
		return engine.ErrMessageNotFound
	}
	m := b.ScheduledMessages[i]
	m.Active = active
	return s.UpdateMessage(ctx, birthdayID, m)
}

// DeleteMessage removes a message and cancels its notification by
// recomputing its stable id.
func (s *Service) DeleteMessage(ctx context.Context, birthdayID, messageID string) error {
	b, err := s.Get(ctx, birthdayID)
	if err != nil {
		return err
	}
	i := b.MessageIndex(messageID)
	if i < 0 {
		return engine.ErrMessageNotFound
	}
	b.ScheduledMessages = append(b.ScheduledMessages[:i], b.ScheduledMessages[i+1:]...)

	if err := s.Store.Update(ctx, b); err != nil {
		return err
	}
	s.Lifecycle.CancelMessage(ctx, b.ID, messageID)
	s.syncAfterStore(ctx, b)
	return nil
}

func (s *Service) afterMessageChange(ctx context.Context, b engine.Birthday, m engine.ScheduledMessage) {
	s.Lifecycle.RefreshMessage(ctx, b, m)
	s.syncAfterStore(ctx, b)
}

// syncAfterStore refreshes the calendar alarms of an already stored birthday.
// A newly created event id is written back.
func (s *Service) syncAfterStore(ctx context.Context, b engine.Birthday) {
	before := b.CalendarEventID
	s.syncCalendar(ctx, &b)
	if b.CalendarEventID == before {
		return
	}
	if err := s.Store.Update(ctx, b); err != nil {
		slog.Error(config.MsgEventIDSaveFail,
			config.LogKeyComponent, config.CompService,
			config.LogKeyBirthdayID, b.ID,
			config.LogKeyError, err)
	}
}
