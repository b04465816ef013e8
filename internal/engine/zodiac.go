package engine

import "time"

// zodiacStart marks the first day of each western sign within a calendar year.
type zodiacStart struct {
	month time.Month
	day   int
	sign  string
}

// Ordered by start date; Capricorn wraps around the new year.
var zodiacTable = []zodiacStart{
	{time.January, 20, "Aquarius"},
	{time.February, 19, "Pisces"},
	{time.March, 21, "Aries"},
	{time.April, 20, "Taurus"},
	{time.May, 21, "Gemini"},
	{time.June, 21, "Cancer"},
	{time.July, 23, "Leo"},
	{time.August, 23, "Virgo"},
	{time.September, 23, "Libra"},
	{time.October, 23, "Scorpio"},
	{time.November, 22, "Sagittarius"},
	{time.December, 22, "Capricorn"},
}

// ZodiacSign returns the western zodiac sign for the month/day of birthDate.
func ZodiacSign(birthDate time.Time) string {
	m, d := birthDate.Month(), birthDate.Day()
	sign := "Capricorn"
	for _, z := range zodiacTable {
		if m > z.month || (m == z.month && d >= z.day) {
			sign = z.sign
		}
	}
	return sign
}
