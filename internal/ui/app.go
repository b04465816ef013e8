// Package ui is the desktop shell: a fyne tray application that hosts the
// notification scheduler, the calendar feed server and a few windows.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-birthday-reminders/internal/calendar"
	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
	"github.com/tartampluch/go-birthday-reminders/internal/locale"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
	"github.com/tartampluch/go-birthday-reminders/internal/server"
	"github.com/tartampluch/go-birthday-reminders/internal/service"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
	"github.com/zalando/go-keyring"
)

// Store is the persistence the shell runs on.
type Store interface {
	storage.Repository
	storage.CategoryStateRepository
}

// ReminderApp wires the birthday service to the tray and to one delivery
// strategy chosen at startup.
type ReminderApp struct {
	App         fyne.App
	Preferences fyne.Preferences
	Tr          *locale.Translator

	Service   *service.Service
	Mode      notify.Mode
	Scheduler notify.Scheduler
	Notifier  *FyneNotifier
	Queue     *notify.TimerQueue // native mode only
	Poller    *notify.Poller     // poll mode only
	Feed      *calendar.Feed
	Server    *server.FeedServer // nil when the calendar feed is disabled

	// PasswordLookup and PasswordStore default to the OS keyring.
	PasswordLookup func(user string) (string, error)
	PasswordStore  func(user, password string) error

	Tray           desktop.App
	Menu           *fyne.Menu
	TrayStatusItem *fyne.MenuItem
	TrayCheckItem  *fyne.MenuItem
	TrayImportItem *fyne.MenuItem
	TraySettings   *fyne.MenuItem

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	configChan chan string

	upcomingWindow fyne.Window
	settingsWindow fyne.Window
}

// NewReminderApp builds the service stack for a fyne application. The
// delivery mode and the feed port are read from the preferences once.
func NewReminderApp(ctx context.Context, a fyne.App, store Store) (*ReminderApp, error) {
	prefs := a.Preferences()
	tr := locale.New(prefs.String(config.PrefLanguage))

	cats := category.NewStore(store)
	if err := cats.Load(ctx); err != nil {
		return nil, err
	}

	app := &ReminderApp{
		App:            a,
		Preferences:    prefs,
		Tr:             tr,
		Notifier:       NewFyneNotifier(a),
		PasswordLookup: keyringPassword,
		PasswordStore:  keyringStore,
		configChan:     make(chan string, config.ChannelBufferSize),
	}
	app.ctx, app.cancel = context.WithCancel(ctx)

	app.Mode = DetectMode(prefs.StringWithFallback(config.PrefDeliveryMode, config.DeliveryModeAuto), a)
	switch app.Mode {
	case notify.ModeNative:
		app.Queue = notify.NewTimerQueue(config.QueueBufferSize)
		app.Scheduler = notify.NewNativeScheduler(app.Queue)
	default:
		polling := notify.NewPollingScheduler(app.Notifier, store)
		app.Scheduler = polling
		app.Poller = notify.NewPoller(polling, config.PollInterval)
		// A failed write means the same message fires again on the next tick,
		// so the tray shows it until a later refresh succeeds.
		app.Poller.OnError = func(error) { app.updateTrayStatus(-1) }
	}

	calendarOn := prefs.BoolWithFallback(config.PrefCalendarSync, true)
	app.Feed = calendar.NewFeed(nil, calendarOn)
	app.Feed.Summary = tr.EventSummary
	if calendarOn {
		app.Server = server.NewFeedServer(prefs.StringWithFallback(config.PrefServerPort, config.DefaultPort))
		app.Feed.Publisher = app.Server
	}

	app.Service = service.New(store, cats, app.Feed, notify.NewManager(app.Scheduler, store))
	app.Service.UncategorizedLabel = tr.Msg(config.TKeyUncategorized)
	return app, nil
}

// Run starts the background services, installs the tray and blocks in the
// fyne event loop.
func (app *ReminderApp) Run() {
	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(theme.InfoIcon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	app.Start()
	app.App.Run()
	app.Shutdown()
}

// Start seeds the calendar feed, starts the feed server and the delivery
// strategy, and rebuilds the native schedule from storage.
func (app *ReminderApp) Start() {
	app.watchPreferences()

	if birthdays, err := app.Service.List(app.ctx); err != nil {
		slog.Error(config.MsgLoadFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	} else {
		app.Feed.Seed(birthdays)
	}

	if app.Server != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			if err := app.Server.Start(app.ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)

				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
			}
		}()
	}

	switch app.Mode {
	case notify.ModeNative:
		app.Queue.Start()
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.deliveryLoop()
		}()
		if _, err := app.Service.Reschedule(app.ctx); err != nil {
			slog.Error(config.MsgLoadFail,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err)
		}
	default:
		app.Poller.Start(app.ctx)
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.backgroundWorker()
	}()

	app.refreshStatus()
}

// Shutdown stops every background goroutine. It is safe to call more than once.
func (app *ReminderApp) Shutdown() {
	app.cancel()
	if app.Poller != nil {
		app.Poller.Stop()
	}
	if app.Queue != nil {
		app.Queue.Stop()
	}
	app.wg.Wait()
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompUI)
}

// CheckNow forces an immediate evaluation: an extra poll, or a full native
// reschedule.
func (app *ReminderApp) CheckNow() {
	switch app.Mode {
	case notify.ModeNative:
		if _, err := app.Service.Reschedule(app.ctx); err != nil {
			slog.Error(config.MsgLoadFail,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err)
		}
	default:
		app.Poller.CheckNow()
	}
	app.refreshStatus()
}

// deliveryLoop shows the entries the native queue emits. Each delivered
// message is scheduled again for its next occurrence.
func (app *ReminderApp) deliveryLoop() {
	for {
		select {
		case <-app.ctx.Done():
			return
		case n, ok := <-app.Queue.C():
			if !ok {
				return
			}
			app.deliver(app.ctx, n)
		}
	}
}

func (app *ReminderApp) deliver(ctx context.Context, n notify.PendingNotification) {
	log := slog.With(
		config.LogKeyComponent, config.CompUI,
		config.LogKeyBirthdayID, n.BirthdayID,
		config.LogKeyMessageID, n.MessageID)

	tag := notify.Tag(n.BirthdayID, n.MessageID)
	if err := app.Notifier.Show(ctx, n.Title, notify.ShowOptions{Body: n.Body, Tag: tag}); err != nil {
		log.Debug(config.MsgShowFail, config.LogKeyError, err)
	} else {
		log.Info(config.MsgFired, config.LogKeyTag, tag)
	}

	b, err := app.Service.Get(ctx, n.BirthdayID)
	if err != nil {
		log.Debug(config.MsgDeliverStale, config.LogKeyError, err)
		return
	}
	i := b.MessageIndex(n.MessageID)
	if i < 0 {
		log.Debug(config.MsgDeliverStale)
		return
	}
	app.Service.Lifecycle.RefreshMessage(ctx, b, b.ScheduledMessages[i])
	app.refreshStatus()
}

// watchPreferences forwards preference changes to the background worker.
func (app *ReminderApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefLanguage:
		default:
		}
	})
}

// backgroundWorker keeps the tray status fresh and applies language changes.
func (app *ReminderApp) backgroundWorker() {
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-app.configChan:
			app.applyLanguage()
		case <-ticker.C:
			app.refreshStatus()
		}
	}
}

func (app *ReminderApp) applyLanguage() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	if lang == app.Tr.Language() {
		return
	}
	app.Tr.SetLanguage(lang)
	slog.Info(config.MsgLanguageChanged,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyLang, app.Tr.Language())
	app.RefreshTrayMenu()
	app.refreshStatus()
}

// setupTrayMenu constructs the system tray menu.
func (app *ReminderApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowUpcomingWindow()
	})
	app.TrayCheckItem = fyne.NewMenuItem(app.Tr.Msg(config.TKeyMenuCheckNow), func() {
		go app.CheckNow()
	})
	app.TrayImportItem = fyne.NewMenuItem(app.Tr.Msg(config.TKeyMenuImport), func() {
		go app.performImport(true)
	})
	app.TraySettings = fyne.NewMenuItem(app.Tr.Msg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayCheckItem,
		app.TrayImportItem,
		app.TraySettings,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *ReminderApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	fyne.Do(func() {
		app.TrayCheckItem.Label = app.Tr.Msg(config.TKeyMenuCheckNow)
		app.TrayImportItem.Label = app.Tr.Msg(config.TKeyMenuImport)
		app.TraySettings.Label = app.Tr.Msg(config.TKeyMenuSettings)
		app.Menu.Refresh()
	})
}

func (app *ReminderApp) refreshStatus() {
	app.updateTrayStatus(app.Scheduler.ScheduledCount(app.ctx))
}

// updateTrayStatus shows how many reminders are scheduled. A negative count
// reports an error.
func (app *ReminderApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	label := config.FallbackTrayError
	if count >= 0 {
		label = app.Tr.TrayStatus(count)
	}

	fyne.Do(func() {
		app.TrayStatusItem.Label = label
		app.Menu.Refresh()
	})
}

// loadImportSource assembles the vCard source from preferences and the keyring.
func (app *ReminderApp) loadImportSource() importer.Source {
	src := importer.Source{
		Mode:      app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if src.WebUser != "" && app.PasswordLookup != nil {
		if p, err := app.PasswordLookup(src.WebUser); err == nil {
			src.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return src
}

// performImport runs the vCard import configured in the settings.
func (app *ReminderApp) performImport(manual bool) (service.ImportResult, error) {
	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.Tr.Msg(config.TKeyNotifImportStart)))
	}

	res, err := app.Service.Import(app.ctx, app.loadImportSource())
	if err != nil {
		slog.Error(config.MsgImportFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleImportError, app.Tr.Msg(importErrorKey(err))))
		}
		app.updateTrayStatus(-1)
		return res, err
	}

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.Tr.Format(config.TKeyImportResult, map[string]any{
			"Imported":   res.Added,
			"Duplicates": res.Duplicates,
			"Skipped":    res.SkippedNoYear,
		})))
	}
	app.refreshStatus()
	return res, nil
}

func keyringPassword(user string) (string, error) {
	return keyring.Get(config.KeyringService, user)
}

func keyringStore(user, password string) error {
	return keyring.Set(config.KeyringService, user, password)
}

// importErrorKey picks the notification text for a failed import. Rejected
// credentials are the one failure the user can fix from the settings window.
func importErrorKey(err error) string {
	if errors.Is(err, importer.ErrUnauthorized) {
		return config.TKeyNotifImportAuth
	}
	return config.TKeyNotifImportError
}
