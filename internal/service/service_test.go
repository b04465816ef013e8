package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-reminders/internal/calendar"
	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
)

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// seqIDs hands out predictable ids.
type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// MockCalendar is a testify mock of calendar.Sync.
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) Enabled() bool { return m.Called().Bool(0) }

func (m *MockCalendar) Create(ctx context.Context, b engine.Birthday) (string, error) {
	args := m.Called(ctx, b)
	return args.String(0), args.Error(1)
}

func (m *MockCalendar) Update(ctx context.Context, b engine.Birthday, eventID string) error {
	return m.Called(ctx, b, eventID).Error(0)
}

func (m *MockCalendar) Delete(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

type fixture struct {
	svc   *Service
	repo  *storage.SQLiteRepository
	queue *notify.TimerQueue
	feed  *calendar.Feed
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "service-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cats := category.NewStore(repo)
	require.NoError(t, cats.Load(ctx))

	feed := calendar.NewFeed(nil, true)
	feed.Clock = engine.FixedClock{At: testNow}

	queue := notify.NewTimerQueue(config.QueueBufferSize)
	native := &notify.NativeScheduler{Backend: queue, Clock: engine.FixedClock{At: testNow}}

	svc := New(repo, cats, feed, notify.NewManager(native, repo))
	svc.IDs = &seqIDs{}
	svc.Clock = engine.FixedClock{At: testNow}

	return &fixture{svc: svc, repo: repo, queue: queue, feed: feed}
}

func (f *fixture) pending(t *testing.T) []notify.PendingNotification {
	t.Helper()
	p, err := f.queue.ListPending(context.Background())
	require.NoError(t, err)
	return p
}

func newBirthday(name string, month time.Month, day int, messages ...engine.ScheduledMessage) engine.Birthday {
	return engine.Birthday{
		Name:              name,
		BirthDate:         time.Date(1990, month, day, 0, 0, 0, 0, time.UTC),
		ScheduledMessages: messages,
	}
}

func message(at string) engine.ScheduledMessage {
	return engine.ScheduledMessage{
		Title:         "{name}",
		Message:       "{name} turns {age}",
		ScheduledTime: at,
		Active:        true,
	}
}

// -----------------------------------------------------------------------------
// Birthday lifecycle
// -----------------------------------------------------------------------------

func TestAdd_AssignsDerivedFieldsAndSchedules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	b, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)

	assert.Equal(t, "id-1", b.ID)
	assert.Equal(t, config.DefaultCategoryID, b.Category, "Missing category is normalized")
	assert.Equal(t, "Gemini", b.ZodiacSign)
	assert.Equal(t, "id-2", b.ScheduledMessages[0].ID)
	assert.Equal(t, b.ID, b.ScheduledMessages[0].BirthdayID)
	assert.Equal(t, testNow, b.ScheduledMessages[0].CreatedDate)
	assert.Equal(t, calendar.EventID(b.ID), b.CalendarEventID)

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.CalendarEventID, stored.CalendarEventID)

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, notify.StableID(b.ID, "id-2"), pending[0].ID)
	assert.True(t, pending[0].At.Equal(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, f.feed.Len())
}

func TestAdd_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, newBirthday("  ", time.June, 15))
	assert.ErrorIs(t, err, engine.ErrEmptyName)

	_, err = f.svc.Add(ctx, engine.Birthday{Name: "No date"})
	assert.ErrorIs(t, err, engine.ErrMissingBirthDate)

	_, err = f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("9 o'clock")))
	assert.ErrorIs(t, err, engine.ErrInvalidTimeOfDay)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdd_UnknownCategoryFallsBackToDefault(t *testing.T) {
	f := setup(t)
	b := newBirthday("Ada", time.June, 15)
	b.Category = "does-not-exist"

	got, err := f.svc.Add(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultCategoryID, got.Category)
}

func TestAdd_CalendarFailureStillSaves(t *testing.T) {
	f := setup(t)
	cal := new(MockCalendar)
	cal.On("Enabled").Return(true)
	cal.On("Create", mock.Anything, mock.Anything).Return("", errors.New("quota"))
	f.svc.Calendar = cal

	b, err := f.svc.Add(context.Background(), newBirthday("Ada", time.June, 15))
	require.NoError(t, err)
	assert.Empty(t, b.CalendarEventID)

	_, err = f.svc.Get(context.Background(), b.ID)
	assert.NoError(t, err)
}

func TestAdd_CalendarDisabledIsNotCalled(t *testing.T) {
	f := setup(t)
	cal := new(MockCalendar)
	cal.On("Enabled").Return(false)
	f.svc.Calendar = cal

	_, err := f.svc.Add(context.Background(), newBirthday("Ada", time.June, 15))
	require.NoError(t, err)
	cal.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_RecomputesZodiacAndReschedules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)

	b.BirthDate = time.Date(1990, time.December, 25, 0, 0, 0, 0, time.UTC)
	b.Category = "friends"
	b.CalendarEventID = "tampered"
	updated, err := f.svc.Update(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, "Capricorn", updated.ZodiacSign)
	assert.Equal(t, "friends", updated.Category)
	assert.Equal(t, calendar.EventID(b.ID), updated.CalendarEventID, "Event id is owned by the service")

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].At.Equal(time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC)))
}

func TestUpdate_Missing(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), engine.Birthday{ID: "ghost", Name: "Ghost", BirthDate: testNow})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdate_AssignsIDsToNewMessages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)
	firstID := b.ScheduledMessages[0].ID

	b.ScheduledMessages = append(b.ScheduledMessages, message("12:00"), message("18:30"))
	updated, err := f.svc.Update(ctx, b)
	require.NoError(t, err)

	require.Len(t, updated.ScheduledMessages, 3)
	assert.Equal(t, firstID, updated.ScheduledMessages[0].ID, "Existing ids are kept")
	assert.True(t, updated.ScheduledMessages[0].CreatedDate.Equal(testNow))
	ids := map[string]bool{}
	for _, m := range updated.ScheduledMessages {
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, b.ID, m.BirthdayID)
		assert.False(t, m.CreatedDate.IsZero())
		ids[m.ID] = true
	}
	assert.Len(t, ids, 3, "Message ids must be unique within a birthday")

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	for _, m := range stored.ScheduledMessages {
		assert.NotEmpty(t, m.ID)
	}

	assert.Len(t, f.pending(t), 3, "Every active message gets its own native entry")
}

func TestUpdate_DuplicateMessageIDsAreSplit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)

	dup := message("21:00")
	dup.ID = b.ScheduledMessages[0].ID
	b.ScheduledMessages = append(b.ScheduledMessages, dup)

	updated, err := f.svc.Update(ctx, b)
	require.NoError(t, err)
	require.Len(t, updated.ScheduledMessages, 2)
	assert.NotEqual(t, updated.ScheduledMessages[0].ID, updated.ScheduledMessages[1].ID)
	assert.Len(t, f.pending(t), 2)
}

func TestUpdate_RejectsInvalidMessageTime(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)

	changed := b.Clone()
	changed.Name = "Ada King"
	changed.ScheduledMessages = append(changed.ScheduledMessages, message("bogus"))

	_, err = f.svc.Update(ctx, changed)
	assert.ErrorIs(t, err, engine.ErrInvalidTimeOfDay)

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name, "Nothing is persisted on a rejected update")
	assert.Len(t, stored.ScheduledMessages, 1)
	assert.Len(t, f.pending(t), 1)
}

func TestDelete_CascadesToNotificationsAndCalendar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	keep, err := f.svc.Add(ctx, newBirthday("Alan", time.June, 23, message("08:00")))
	require.NoError(t, err)
	gone, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00"), message("18:00")))
	require.NoError(t, err)
	require.Len(t, f.pending(t), 3)

	require.NoError(t, f.svc.Delete(ctx, gone.ID))

	pending := f.pending(t)
	require.Len(t, pending, 1)
	assert.Equal(t, keep.ID, pending[0].BirthdayID)
	assert.Equal(t, 1, f.feed.Len())

	assert.ErrorIs(t, f.svc.Delete(ctx, gone.ID), storage.ErrNotFound)
}

func TestClearAll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00")))
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, newBirthday("Alan", time.June, 23, message("08:00")))
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearAll(ctx))

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.pending(t))
	assert.Zero(t, f.feed.Len())
}

func TestReschedule_IsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, newBirthday("Ada", time.June, 15, message("09:00"), message("18:00")))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		n, err := f.svc.Reschedule(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.Len(t, f.pending(t), 2)
}
