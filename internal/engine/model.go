package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

var (
	ErrEmptyName        = errors.New(config.ErrEmptyName)
	ErrMissingBirthDate = errors.New(config.ErrMissingBirthDate)
	ErrMessageNotFound  = errors.New(config.ErrMessageNotFound)
)

// Birthday is the persisted record for one person.
// BirthDate carries a significant year (used for age) and month/day (used for recurrence).
type Birthday struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birthDate"`

	// Category references a category id; it may point at a deleted category
	// (an orphaned reference), which is detected at read time.
	Category string `json:"category"`

	// ZodiacSign is derived from BirthDate when absent and cached afterwards.
	ZodiacSign string `json:"zodiacSign,omitempty"`

	Notes         string `json:"notes,omitempty"`
	Photo         string `json:"photo,omitempty"` // data URI or URL
	RememberPhoto bool   `json:"rememberPhoto,omitempty"`

	// CalendarEventID is only set once an external calendar sync succeeded.
	CalendarEventID string `json:"calendarEventId,omitempty"`

	ScheduledMessages []ScheduledMessage `json:"scheduledMessages,omitempty"`
}

// ScheduledMessage is a user-authored reminder fired every year on the birthday
// at ScheduledTime (local HH:MM).
type ScheduledMessage struct {
	ID            string     `json:"id"`
	BirthdayID    string     `json:"birthdayId"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	ScheduledTime string     `json:"scheduledTime"`
	Active        bool       `json:"active"`
	MessageType   string     `json:"messageType,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	CreatedDate   time.Time  `json:"createdDate"`
	LastSentDate  *time.Time `json:"lastSentDate,omitempty"`
}

// Category is a birthday grouping. Provenance (default or custom) is tracked
// by the category store, not by the record itself.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Validate checks the fields required before a birthday is persisted.
func (b Birthday) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.BirthDate.IsZero() {
		return ErrMissingBirthDate
	}
	return nil
}

// ActiveMessages returns the messages the scheduler is allowed to see.
func (b Birthday) ActiveMessages() []ScheduledMessage {
	out := make([]ScheduledMessage, 0, len(b.ScheduledMessages))
	for _, m := range b.ScheduledMessages {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// MessageIndex returns the position of the message with the given id, or -1.
func (b Birthday) MessageIndex(messageID string) int {
	for i, m := range b.ScheduledMessages {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so that callers can mutate messages without
// aliasing the original slice.
func (b Birthday) Clone() Birthday {
	out := b
	if b.ScheduledMessages != nil {
		out.ScheduledMessages = make([]ScheduledMessage, len(b.ScheduledMessages))
		copy(out.ScheduledMessages, b.ScheduledMessages)
		for i, m := range out.ScheduledMessages {
			if m.LastSentDate != nil {
				sent := *m.LastSentDate
				out.ScheduledMessages[i].LastSentDate = &sent
			}
		}
	}
	return out
}
