package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/service"
)

func row(name string, days, age int, known bool) service.Upcoming {
	return service.Upcoming{
		Birthday:  engine.Birthday{Name: name},
		DaysUntil: days,
		AgeNext:   age,
		AgeKnown:  known,
	}
}

func names(rows []service.Upcoming) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Birthday.Name)
	}
	return out
}

// -----------------------------------------------------------------------------
// Sorting Logic Tests
// -----------------------------------------------------------------------------

func TestSortUpcoming_ByDate(t *testing.T) {
	rows := []service.Upcoming{
		row("C_NextYear", 214, 30, true),
		row("B_Later", 14, 40, true),
		row("A_Today", 0, 20, true),
		row("AA_Later", 14, 41, true),
	}

	sortUpcoming(rows, config.ColIDDate, true)
	assert.Equal(t, []string{"A_Today", "AA_Later", "B_Later", "C_NextYear"}, names(rows),
		"Ties on the date are broken by name")

	sortUpcoming(rows, config.ColIDDate, false)
	assert.Equal(t, []string{"C_NextYear", "B_Later", "AA_Later", "A_Today"}, names(rows))
}

func TestSortUpcoming_ByNameIgnoresCase(t *testing.T) {
	rows := []service.Upcoming{row("charlie", 0, 0, true), row("Bob", 0, 0, true), row("alice", 0, 0, true)}

	sortUpcoming(rows, config.ColIDName, true)
	assert.Equal(t, []string{"alice", "Bob", "charlie"}, names(rows))
}

func TestSortUpcoming_ByAgeUnknownLast(t *testing.T) {
	rows := []service.Upcoming{
		row("Old", 0, 50, true),
		row("Unknown", 0, 0, false),
		row("Baby", 0, 0, true),
		row("Young", 0, 10, true),
	}

	sortUpcoming(rows, config.ColIDAge, true)
	assert.Equal(t, []string{"Baby", "Young", "Old", "Unknown"}, names(rows))

	sortUpcoming(rows, config.ColIDAge, false)
	assert.Equal(t, "Unknown", rows[0].Birthday.Name)
	assert.Equal(t, "Baby", rows[3].Birthday.Name)
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name string
		row  service.Upcoming
		want string
	}{
		{"Standard transition", row("a", 0, 26, true), "25 → 26"},
		{"First birthday", row("a", 0, 1, true), "0 → 1"},
		{"Born this year", row("a", 0, 0, true), config.AgeBirth},
		{"Future birth date", row("a", 0, 0, false), config.AgeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAge(tt.row))
		})
	}
}

func TestCellText(t *testing.T) {
	env := setupTestApp(t, config.DeliveryModePoll)

	u := service.Upcoming{
		Birthday: engine.Birthday{Name: "Ada", Category: "family"},
		Next:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		AgeNext:  35,
		AgeKnown: true,
	}
	assert.Equal(t, "Ada", env.app.cellText(u, config.ColIDName))
	assert.Equal(t, "2025-06-15", env.app.cellText(u, config.ColIDDate))
	assert.Equal(t, "34 → 35", env.app.cellText(u, config.ColIDAge))
	assert.Contains(t, env.app.cellText(u, config.ColIDCategory), "Family")

	u.Birthday.Category = "deleted-long-ago"
	assert.Equal(t, "Uncategorized", env.app.cellText(u, config.ColIDCategory))
}

// -----------------------------------------------------------------------------
// Window
// -----------------------------------------------------------------------------

func TestUpcomingWindow_Singleton(t *testing.T) {
	env := setupTestApp(t, config.DeliveryModePoll)
	storedBirthday(t, env.repo, "b1", "09:00")

	env.app.ShowUpcomingWindow()
	first := env.app.upcomingWindow
	require.NotNil(t, first)
	assert.Equal(t, "Upcoming birthdays", first.Title())

	env.app.ShowUpcomingWindow()
	assert.Same(t, first, env.app.upcomingWindow, "A second open focuses the existing window")

	first.Close()
	assert.Nil(t, env.app.upcomingWindow)
}
