// Package category manages the category overlay: a built-in catalog that is
// never mutated, plus user-owned layers (custom categories, overrides by id and
// deleted-id tombstones) merged at read time.
package category

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
)

// defaultCatalog is ordered: Visible lists defaults in this order.
var defaultCatalog = []engine.Category{
	{ID: "family", Name: "Family", Icon: "👪", Color: "#e57373"},
	{ID: "friends", Name: "Friends", Icon: "🤝", Color: "#64b5f6"},
	{ID: "work", Name: "Work", Icon: "💼", Color: "#81c784"},
	{ID: "school", Name: "School", Icon: "🎓", Color: "#ffb74d"},
	{ID: config.DefaultCategoryID, Name: "Other", Icon: "🎂", Color: "#9575cd"},
}

// Defaults returns a copy of the built-in catalog.
func Defaults() []engine.Category {
	out := make([]engine.Category, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// IsDefault reports whether id belongs to the built-in catalog.
func IsDefault(id string) bool {
	for _, c := range defaultCatalog {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Slugify lowercases name, strips diacritics and collapses every run of
// non-alphanumeric characters into a single separator.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && sb.Len() > 0 {
				sb.WriteString(config.SlugSeparator)
			}
			sb.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}

	if sb.Len() == 0 {
		return config.SlugFallback
	}
	return sb.String()
}

// NewCustomID derives a custom category id from its name and creation time,
// so ids stay unique without a central counter.
func NewCustomID(name string, now time.Time) string {
	return Slugify(name) + config.SlugSeparator + strconv.FormatInt(now.UnixMilli(), 10)
}
