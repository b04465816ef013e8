package ui

import (
	"errors"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect     *widget.Select
	deliverySelect *widget.Select
	portEntry      *NumericalEntry
	calendarCheck  *widget.Check
	notifCheck     *widget.Check
	sourceSelect   *widget.Select
	urlEntry       *widget.Entry
	userEntry      *widget.Entry
	passEntry      *widget.Entry
	pathEntry      *widget.Entry
}

// deliveryOptions maps the localized labels of the delivery mode select to
// their preference values.
func (app *ReminderApp) deliveryOptions() ([]string, map[string]string) {
	keys := []struct{ tkey, value string }{
		{config.TKeyDeliveryAuto, config.DeliveryModeAuto},
		{config.TKeyDeliveryNative, config.DeliveryModeNative},
		{config.TKeyDeliveryPoll, config.DeliveryModePoll},
	}
	labels := make([]string, 0, len(keys))
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		label := app.Tr.Msg(k.tkey)
		labels = append(labels, label)
		values[label] = k.value
	}
	return labels, values
}

// validatePort accepts a TCP port number in [config.MinPort, config.MaxPort].
func (app *ReminderApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.Tr.Msg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.Tr.Msg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.Tr.Msg(config.TKeyErrPortRange))
	}
	return nil
}

// ShowSettingsWindow displays the preferences. Delivery mode, feed port and
// feed toggle apply on the next start.
func (app *ReminderApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.Tr.Msg(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := app.buildSettingsWidgets()

	itemLang := widget.NewFormItem(app.Tr.Msg(config.TKeyLblLanguage), sw.langSelect)
	itemDelivery := widget.NewFormItem(app.Tr.Msg(config.TKeyLblDelivery), sw.deliverySelect)
	itemDelivery.HintText = app.Tr.Msg(config.TKeyHelpRestart)
	itemPort := widget.NewFormItem(app.Tr.Msg(config.TKeyLblPort), sw.portEntry)
	itemPort.HintText = app.Tr.Msg(config.TKeyHelpRestart)

	generalCard := widget.NewCard(app.Tr.Msg(config.TKeyLblGeneral), "", container.NewVBox(
		widget.NewForm(itemLang, itemDelivery, itemPort),
		sw.calendarCheck,
		sw.notifCheck,
	))
	sourceCard := app.buildSourceCard(w, sw)

	saveAction := func() {
		if err := sw.portEntry.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw)
		w.Close()
	}

	btnSave := widget.NewButtonWithIcon(app.Tr.Msg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.Tr.Msg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footer := widget.NewLabel(app.Tr.Format(config.TKeyLblFooter, map[string]any{"Version": config.Version}))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		generalCard,
		sourceCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footer,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	w.Show()
}

// buildSettingsWidgets creates the widgets pre-filled from preferences.
func (app *ReminderApp) buildSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.Tr.Languages(), nil)
	sw.langSelect.SetSelected(app.Tr.Language())

	labels, values := app.deliveryOptions()
	sw.deliverySelect = widget.NewSelect(labels, nil)
	current := app.Preferences.StringWithFallback(config.PrefDeliveryMode, config.DeliveryModeAuto)
	for label, value := range values {
		if value == current {
			sw.deliverySelect.SetSelected(label)
		}
	}

	sw.portEntry = NewNumericalEntry(len(strconv.Itoa(config.MaxPort)))
	sw.portEntry.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.portEntry.Validator = app.validatePort

	sw.calendarCheck = widget.NewCheck(app.Tr.Msg(config.TKeyLblCalendar), nil)
	sw.calendarCheck.SetChecked(app.Preferences.BoolWithFallback(config.PrefCalendarSync, true))

	sw.notifCheck = widget.NewCheck(app.Tr.Msg(config.TKeyLblNotifications), nil)
	sw.notifCheck.SetChecked(app.Notifier.Permission() != notify.PermissionDenied)

	sw.sourceSelect = widget.NewSelect([]string{
		app.Tr.Msg(config.TKeyModeCardDAV),
		app.Tr.Msg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(app.Preferences.String(config.PrefCardDAVURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" && app.PasswordLookup != nil {
		if pwd, err := app.PasswordLookup(user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefLocalPath))
	return sw
}

// buildSourceCard constructs the vCard source selection.
func (app *ReminderApp) buildSourceCard(w fyne.Window, sw *settingsWidgets) *widget.Card {
	browseBtn := widget.NewButton(app.Tr.Msg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.Tr.Msg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.Tr.Msg(config.TKeyHelpURL)
	webForm := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.Tr.Msg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.Tr.Msg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	localLabel := app.Tr.Msg(config.TKeyModeLocal)
	sw.sourceSelect.OnChanged = func(mode string) {
		if mode == localLabel {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}

	if app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal) == config.SourceModeLocal {
		sw.sourceSelect.SetSelected(localLabel)
	} else {
		sw.sourceSelect.SetSelected(app.Tr.Msg(config.TKeyModeCardDAV))
	}

	return widget.NewCard(app.Tr.Msg(config.TKeyLblSource), "", container.NewVBox(sw.sourceSelect, webForm, localForm))
}

// saveSettings persists the widgets and applies what can change at runtime.
func (app *ReminderApp) saveSettings(sw *settingsWidgets) {
	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUI)

	_, deliveryValues := app.deliveryOptions()
	if mode, ok := deliveryValues[sw.deliverySelect.Selected]; ok {
		app.Preferences.SetString(config.PrefDeliveryMode, mode)
	}

	sourceMode := config.SourceModeWeb
	if sw.sourceSelect.Selected == app.Tr.Msg(config.TKeyModeLocal) {
		sourceMode = config.SourceModeLocal
	}

	app.Preferences.SetString(config.PrefServerPort, sw.portEntry.Text)
	app.Preferences.SetBool(config.PrefCalendarSync, sw.calendarCheck.Checked)
	app.Preferences.SetString(config.PrefSourceMode, sourceMode)
	app.Preferences.SetString(config.PrefCardDAVURL, sw.urlEntry.Text)
	app.Preferences.SetString(config.PrefUsername, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLocalPath, sw.pathEntry.Text)
	app.Notifier.SetEnabled(sw.notifCheck.Checked)

	if sw.userEntry.Text != "" && sw.passEntry.Text != "" && app.PasswordStore != nil {
		if err := app.PasswordStore(sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyringSet,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err)
		}
	}

	if sw.langSelect.Selected != "" {
		app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
		app.applyLanguage()
	}
}
