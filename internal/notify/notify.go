// Package notify schedules and delivers the per-birthday scheduled messages.
//
// Two delivery strategies implement Scheduler and are selected once at startup:
// NativeScheduler hands absolute fire instants to a backend that owns a
// pending queue, while PollingScheduler keeps nothing pending and instead
// re-evaluates every active message on each Poller tick.
package notify

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// Permission mirrors the notification permission states exposed by
// browsers and mobile platforms.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Mode identifies the delivery strategy.
type Mode string

const (
	ModeNative Mode = config.DeliveryModeNative
	ModePoll   Mode = config.DeliveryModePoll
)

// PendingNotification is one entry of a native pending queue, or one
// synthesized "would fire next" entry in polling mode.
type PendingNotification struct {
	ID         int32
	Title      string
	Body       string
	At         time.Time
	BirthdayID string
	MessageID  string
}

// ShowOptions carries the body and the coalescing tag of a displayed notification.
type ShowOptions struct {
	Body string
	Tag  string
}

// NativeBackend is an OS-style scheduler that accepts absolute timestamps.
type NativeBackend interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Schedule(ctx context.Context, n PendingNotification) error
	Cancel(ctx context.Context, ids []int32) error
	ListPending(ctx context.Context) ([]PendingNotification, error)
}

// WebBackend displays notifications immediately; it has no pending queue.
type WebBackend interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, title string, opts ShowOptions) error
}

// Scheduler is the capability-selected delivery strategy.
// None of its methods return errors: external failures degrade to false,
// an empty list, zero, or a no-op, and are logged at debug level.
type Scheduler interface {
	Mode() Mode
	Schedule(ctx context.Context, b engine.Birthday, m engine.ScheduledMessage) bool
	Cancel(ctx context.Context, birthdayID, messageID string)
	CancelAllForBirthday(ctx context.Context, birthdayID string)
	CancelAllPending(ctx context.Context)
	Pending(ctx context.Context) []PendingNotification
	ScheduledCount(ctx context.Context) int
}

// StableID derives the numeric notification id of a (birthday, message) pair.
// It only depends on its inputs so cancellation can recompute it after a restart.
//
// Native notification APIs key entries by a signed 32-bit integer, and some
// reject negative values. The mask clears the sign bit, which leaves 31 bits
// of hash: collisions are possible in theory and ignored in practice for an
// address book sized input.
func StableID(birthdayID, messageID string) int32 {
	sum := sha256.Sum256([]byte(birthdayID + config.PairSeparator + messageID))
	return int32(binary.BigEndian.Uint32(sum[:4]) & config.StableIDMask)
}

// Tag is the coalescing key handed to the display backend.
func Tag(birthdayID, messageID string) string {
	return birthdayID + config.PairSeparator + messageID
}

// Render formats the title and body of a message as seen at instant at.
// An empty title template falls back to a generic birthday title.
func Render(b engine.Birthday, m engine.ScheduledMessage, at time.Time) (title, body string) {
	title = engine.FormatMessage(m.Title, b, at)
	if title == "" {
		title = fmt.Sprintf(config.FallbackNotifTitle, b.Name)
	}
	return title, engine.FormatMessage(m.Message, b, at)
}
