package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// FormatMessage substitutes {name}, {age} and {zodiac} in template.
// An unavailable age or missing zodiac sign expands to the empty string.
func FormatMessage(template string, b Birthday, now time.Time) string {
	age := ""
	if years, ok := Age(b.BirthDate, now); ok {
		age = strconv.Itoa(years)
	}

	r := strings.NewReplacer(
		config.PlaceholderName, b.Name,
		config.PlaceholderAge, age,
		config.PlaceholderZodiac, b.ZodiacSign,
	)
	return r.Replace(template)
}
