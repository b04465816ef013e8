// Package locale loads the embedded translation catalogs and resolves
// message keys for the tray shell and the command line.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator resolves translation keys for one active language.
// A missing key resolves to the key itself.
type Translator struct {
	bundle    *i18n.Bundle
	languages []string

	mu        sync.RWMutex
	lang      string
	localizer *i18n.Localizer
}

// New loads every embedded catalog and activates lang. An empty or
// unsupported lang falls back to the default language.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.languages = append(t.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	t.SetLanguage(lang)
	return t
}

// Languages lists the language codes of the loaded catalogs.
func (t *Translator) Languages() []string {
	return slices.Clone(t.languages)
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" || !slices.Contains(t.languages, lang) {
		lang = config.DefaultLanguage
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = lang
	t.localizer = i18n.NewLocalizer(t.bundle, lang)
}

// Msg translates a key without template data.
func (t *Translator) Msg(key string) string {
	return t.Format(key, nil)
}

// Format translates a key and fills its template with data.
func (t *Translator) Format(key string, data map[string]any) string {
	if t == nil {
		return key
	}
	t.mu.RLock()
	localizer := t.localizer
	t.mu.RUnlock()

	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// TrayStatus renders the tray status line for count scheduled reminders.
func (t *Translator) TrayStatus(count int) string {
	if count == 0 {
		return t.Msg(config.TKeyTrayStatusZero)
	}
	return t.Format(config.TKeyTrayStatus, map[string]any{"Count": count})
}

// EventSummary renders the title of a calendar event.
func (t *Translator) EventSummary(name string) string {
	return t.Format(config.TKeyEvtSummary, map[string]any{"Name": name})
}
