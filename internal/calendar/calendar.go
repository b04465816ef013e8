// Package calendar is the calendar sync collaborator. Synced birthdays become
// yearly recurring events of an iCalendar feed, with one alarm per active
// scheduled message.
package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

var (
	ErrEventNotFound = errors.New(config.ErrEventNotFound)
	ErrEventIDEmpty  = errors.New(config.ErrEventIDEmpty)
)

// Sync is queried with Enabled before every call; failures are never fatal
// to the caller.
type Sync interface {
	Enabled() bool
	Create(ctx context.Context, b engine.Birthday) (string, error)
	Update(ctx context.Context, b engine.Birthday, eventID string) error
	Delete(ctx context.Context, eventID string) error
}

// Publisher receives every re-rendered feed.
type Publisher interface {
	Update(data []byte)
}

// Feed keeps one event per synced birthday and republishes the rendered
// calendar after each change.
type Feed struct {
	Clock     engine.Clock
	Publisher Publisher

	// Summary allows the UI to inject a localized event title.
	Summary func(name string) string

	enabled atomic.Bool

	mu     sync.Mutex
	events map[string]engine.Birthday
	order  []string
}

func NewFeed(pub Publisher, enabled bool) *Feed {
	f := &Feed{
		Clock:     engine.RealClock{},
		Publisher: pub,
		events:    make(map[string]engine.Birthday),
	}
	f.enabled.Store(enabled)
	return f
}

func (f *Feed) Enabled() bool { return f.enabled.Load() }

func (f *Feed) SetEnabled(v bool) { f.enabled.Store(v) }

// EventID derives the event id of a birthday. It is stable across restarts.
func EventID(birthdayID string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf(config.FormatHashInput, config.UIDSalt, birthdayID)))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

func (f *Feed) Create(_ context.Context, b engine.Birthday) (string, error) {
	if b.ID == "" {
		return "", ErrEventIDEmpty
	}
	id := EventID(b.ID)

	f.mu.Lock()
	if _, exists := f.events[id]; !exists {
		f.order = append(f.order, id)
	}
	f.events[id] = b.Clone()
	f.mu.Unlock()

	f.publish()
	return id, nil
}

func (f *Feed) Update(_ context.Context, b engine.Birthday, eventID string) error {
	f.mu.Lock()
	if _, exists := f.events[eventID]; !exists {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	f.events[eventID] = b.Clone()
	f.mu.Unlock()

	f.publish()
	return nil
}

func (f *Feed) Delete(_ context.Context, eventID string) error {
	f.mu.Lock()
	if _, exists := f.events[eventID]; !exists {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	delete(f.events, eventID)
	for i, id := range f.order {
		if id == eventID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	f.mu.Unlock()

	f.publish()
	return nil
}

// Seed rebuilds the feed from stored birthdays that carry an event id,
// typically once at startup. It publishes once.
func (f *Feed) Seed(birthdays []engine.Birthday) {
	f.mu.Lock()
	f.events = make(map[string]engine.Birthday)
	f.order = f.order[:0]
	for _, b := range birthdays {
		if b.CalendarEventID == "" {
			continue
		}
		if _, exists := f.events[b.CalendarEventID]; !exists {
			f.order = append(f.order, b.CalendarEventID)
		}
		f.events[b.CalendarEventID] = b.Clone()
	}
	f.mu.Unlock()

	f.publish()
}

// Len returns the number of events in the feed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// Render encodes the feed. An empty feed renders a minimal valid calendar.
func (f *Feed) Render() ([]byte, error) {
	f.mu.Lock()
	snapshot := make([]eventEntry, 0, len(f.order))
	for _, id := range f.order {
		snapshot = append(snapshot, eventEntry{id: id, birthday: f.events[id]})
	}
	f.mu.Unlock()

	// Clients flag a calendar without any component as a broken
	// subscription. The stub keeps the feed valid until the first birthday
	// is synced.
	if len(snapshot) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := f.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, e := range snapshot {
		event := f.buildEvent(e.id, e.birthday, now)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

type eventEntry struct {
	id       string
	birthday engine.Birthday
}

func (f *Feed) buildEvent(id string, b engine.Birthday, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, id)

	summary := fmt.Sprintf(config.FallbackSummary, b.Name)
	if f.Summary != nil {
		summary = f.Summary(b.Name)
	}
	event.Props.SetText(config.PropSummary, summary)

	// One all-day event anchored on the birth date with a yearly rule, rather
	// than one event per year. Clients expand it themselves, so the feed never
	// needs regenerating when the year rolls over.
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(b.BirthDate)
	event.Props.Set(dtStartProp)

	rrule := ical.NewProp(config.PropRRule)
	rrule.Value = config.ICalRRule
	event.Props.Set(rrule)

	if b.Category != "" {
		event.Props.SetText(config.PropCategories, b.Category)
	}
	if b.Notes != "" {
		event.Props.SetText(config.PropDescription, b.Notes)
	}

	// Alarm text is rendered for the next occurrence, so an age placeholder
	// reads correctly for the coming birthday. It goes stale a year later,
	// but every edit and every restart republishes the feed.
	next := engine.NextOccurrence(b.BirthDate, now)
	for _, m := range b.ActiveMessages() {
		tod, err := engine.ParseTimeOfDay(m.ScheduledTime)
		if err != nil {
			continue
		}
		addAlarm(event, alarmTrigger(tod), engine.FormatMessage(m.Title, b, next))
	}
	return event
}

// alarmTrigger is the offset of a time of day from the start of an all-day event.
func alarmTrigger(tod engine.TimeOfDay) string {
	return config.ISOTimePrefix +
		strconv.Itoa(tod.Hour) + config.ISOHour +
		strconv.Itoa(tod.Minute) + config.ISOMinute
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	triggerProp.Params.Set(config.ICalRelated, config.ICalStart)
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func (f *Feed) publish() {
	if f.Publisher == nil {
		return
	}
	data, err := f.Render()
	if err != nil {
		slog.Error(config.MsgCalendarFail,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyError, err)
		return
	}
	f.Publisher.Update(data)
}
