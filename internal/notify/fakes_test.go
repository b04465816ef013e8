package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

// -----------------------------------------------------------------------------
// Mocks & Fakes
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockNativeBackend simulates an OS scheduler using testify/mock.
type MockNativeBackend struct {
	mock.Mock
}

func (m *MockNativeBackend) RequestPermission(ctx context.Context) (Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).(Permission), args.Error(1)
}

func (m *MockNativeBackend) Schedule(ctx context.Context, n PendingNotification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNativeBackend) Cancel(ctx context.Context, ids []int32) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockNativeBackend) ListPending(ctx context.Context) ([]PendingNotification, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]PendingNotification), args.Error(1)
	}
	return nil, args.Error(1)
}

type shown struct {
	Title string
	Opts  ShowOptions
}

// fakeWebBackend records displayed notifications.
type fakeWebBackend struct {
	mu         sync.Mutex
	permission Permission
	grantOnAsk bool
	asked      int
	showErr    error
	shown      []shown
}

func (f *fakeWebBackend) Permission() Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permission
}

func (f *fakeWebBackend) RequestPermission(context.Context) (Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked++
	if f.grantOnAsk {
		f.permission = PermissionGranted
	} else {
		f.permission = PermissionDenied
	}
	return f.permission, nil
}

func (f *fakeWebBackend) Show(_ context.Context, title string, opts ShowOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.showErr != nil {
		return f.showErr
	}
	f.shown = append(f.shown, shown{Title: title, Opts: opts})
	return nil
}

func (f *fakeWebBackend) Shown() []shown {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]shown, len(f.shown))
	copy(out, f.shown)
	return out
}

var errStorage = errors.New("disk unavailable")

// memStore is an in-memory storage.Repository.
type memStore struct {
	mu        sync.Mutex
	birthdays []engine.Birthday
	getErr    error
	updateErr error
	updates   int
}

func newMemStore(birthdays ...engine.Birthday) *memStore {
	return &memStore{birthdays: birthdays}
}

func (s *memStore) GetAll(context.Context) ([]engine.Birthday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]engine.Birthday, 0, len(s.birthdays))
	for _, b := range s.birthdays {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (s *memStore) Add(_ context.Context, b engine.Birthday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.birthdays = append(s.birthdays, b.Clone())
	return nil
}

func (s *memStore) Update(_ context.Context, b engine.Birthday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.birthdays {
		if s.birthdays[i].ID == b.ID {
			s.birthdays[i] = b.Clone()
			s.updates++
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.birthdays {
		if s.birthdays[i].ID == id {
			s.birthdays = append(s.birthdays[:i], s.birthdays[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.birthdays = nil
	return nil
}

func (s *memStore) get(id string) engine.Birthday {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.birthdays {
		if b.ID == id {
			return b.Clone()
		}
	}
	return engine.Birthday{}
}

// birthdayWith builds a birthday on June 15th 1990 with the given messages.
func birthdayWith(id, name string, messages ...engine.ScheduledMessage) engine.Birthday {
	for i := range messages {
		messages[i].BirthdayID = id
	}
	return engine.Birthday{
		ID:                id,
		Name:              name,
		BirthDate:         time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		ZodiacSign:        "Gemini",
		ScheduledMessages: messages,
	}
}

func activeMessage(id, at string) engine.ScheduledMessage {
	return engine.ScheduledMessage{
		ID:            id,
		Title:         "{name}'s birthday",
		Message:       "{name} turns {age} today",
		ScheduledTime: at,
		Active:        true,
	}
}
