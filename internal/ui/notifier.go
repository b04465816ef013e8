package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
)

// FyneNotifier displays notifications through the fyne application.
// It implements notify.WebBackend: the permission is a stored preference and
// a tag shown again within Window is suppressed, like a browser replacing a
// notification that carries the same tag.
type FyneNotifier struct {
	App         fyne.App
	Preferences fyne.Preferences
	Clock       engine.Clock
	Window      time.Duration

	mu        sync.Mutex
	lastShown map[string]time.Time
}

func NewFyneNotifier(a fyne.App) *FyneNotifier {
	return &FyneNotifier{
		App:         a,
		Preferences: a.Preferences(),
		Clock:       engine.RealClock{},
		Window:      config.CatchWindow,
		lastShown:   make(map[string]time.Time),
	}
}

func (n *FyneNotifier) Permission() notify.Permission {
	switch p := notify.Permission(n.Preferences.String(config.PrefNotifPermission)); p {
	case notify.PermissionGranted, notify.PermissionDenied:
		return p
	default:
		return notify.PermissionDefault
	}
}

// RequestPermission grants unless the user explicitly disabled notifications.
// Desktop notification centers do not prompt, so the answer is immediate.
func (n *FyneNotifier) RequestPermission(context.Context) (notify.Permission, error) {
	if n.Permission() == notify.PermissionDenied {
		return notify.PermissionDenied, nil
	}
	n.Preferences.SetString(config.PrefNotifPermission, string(notify.PermissionGranted))
	return notify.PermissionGranted, nil
}

// SetEnabled records the user's choice as the stored permission.
func (n *FyneNotifier) SetEnabled(enabled bool) {
	p := notify.PermissionDenied
	if enabled {
		p = notify.PermissionGranted
	}
	n.Preferences.SetString(config.PrefNotifPermission, string(p))
}

func (n *FyneNotifier) Show(_ context.Context, title string, opts notify.ShowOptions) error {
	now := n.Clock.Now()

	n.mu.Lock()
	if opts.Tag != "" {
		if last, ok := n.lastShown[opts.Tag]; ok && now.Sub(last) < n.Window {
			n.mu.Unlock()
			slog.Debug(config.MsgTagCoalesced,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyTag, opts.Tag)
			return nil
		}
		n.lastShown[opts.Tag] = now
		for tag, at := range n.lastShown {
			if now.Sub(at) >= n.Window {
				delete(n.lastShown, tag)
			}
		}
	}
	n.mu.Unlock()

	n.App.SendNotification(fyne.NewNotification(title, opts.Body))
	return nil
}

// DetectMode resolves the delivery mode preference. In auto mode a desktop
// driver, whose process stays alive in the tray, hosts the native timer
// queue; any other driver falls back to polling.
func DetectMode(pref string, a fyne.App) notify.Mode {
	var mode notify.Mode
	switch pref {
	case config.DeliveryModeNative:
		mode = notify.ModeNative
	case config.DeliveryModePoll:
		mode = notify.ModePoll
	default:
		if _, ok := a.(desktop.App); ok {
			mode = notify.ModeNative
		} else {
			mode = notify.ModePoll
		}
	}

	slog.Info(config.MsgModeSelected,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyMode, mode,
		config.LogKeyValue, pref)
	return mode
}
