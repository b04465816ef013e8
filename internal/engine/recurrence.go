package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

var ErrInvalidTimeOfDay = errors.New(config.ErrInvalidTimeOfDay)

// TimeOfDay is a local wall-clock time without a date component.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse(config.TimeOfDayLayout, value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the time of day as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// startOfDay truncates t to local midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextOccurrence returns the next date (midnight, in now's location) falling on
// birthDate's month/day that is not before today.
//
// Birthdays are calendar dates, not instants. Only the month and day of
// birthDate are read, and they are rebuilt in the caller's location: if it is
// June 15th in Tokyo it is the birthday there, even while UTC still says
// June 14th. Converting birthDate with In() first would shift stored midnight
// values across the date line.
func NextOccurrence(birthDate, now time.Time) time.Time {
	loc := now.Location()
	// Go's time.Date normalizes Feb 29 to March 1st in non-leap years, which
	// is the date most people born on a leap day celebrate on anyway.
	candidate := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)

	// Today still counts as upcoming, hence the comparison with midnight
	// rather than with now.
	if candidate.Before(startOfDay(now)) {
		candidate = time.Date(now.Year()+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}
	return candidate
}

// DaysUntil returns the whole number of days between today and the next occurrence.
// The division is rounded so that a DST transition (23h or 25h days) does not
// shift the result.
func DaysUntil(birthDate, now time.Time) int {
	next := NextOccurrence(birthDate, now)
	diff := next.Sub(startOfDay(now))
	days := int(math.Round(diff.Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Age returns the completed years at now. ok is false when birthDate lies
// after now (the age is unavailable rather than negative).
func Age(birthDate, now time.Time) (age int, ok bool) {
	by, bm, bd := birthDate.Date()
	ny, nm, nd := now.Date()

	if by > ny || (by == ny && (bm > nm || (bm == nm && bd > nd))) {
		return 0, false
	}

	age = ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age, true
}

// FireInstantInYear builds the fire instant of a message for the given year,
// in now's location.
func FireInstantInYear(birthDate time.Time, tod TimeOfDay, year int, loc *time.Location) time.Time {
	return time.Date(year, birthDate.Month(), birthDate.Day(), tod.Hour, tod.Minute, 0, 0, loc)
}

// NextFireInstant returns the first instant strictly after now that falls on
// birthDate's month/day at the given time of day.
//
// Strictly after matters for native delivery: a message delivered at 09:00
// reschedules itself from inside its own callback, and an instant equal to
// now would fire it a second time instead of moving it to next year.
func NextFireInstant(birthDate time.Time, tod TimeOfDay, now time.Time) time.Time {
	at := FireInstantInYear(birthDate, tod, now.Year(), now.Location())
	if !at.After(now) {
		at = FireInstantInYear(birthDate, tod, now.Year()+1, now.Location())
	}
	return at
}

// SameDay reports whether a and b share year, month and day (calendar
// comparison, not instant comparison). b's location is used for both.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
