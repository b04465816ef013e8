package ui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/service"
)

// ShowUpcomingWindow displays every birthday sorted by next occurrence.
// If the window is already open, it requests focus.
func (app *ReminderApp) ShowUpcomingWindow() {
	if app.upcomingWindow != nil {
		app.upcomingWindow.RequestFocus()
		return
	}

	rows, err := app.Service.Upcoming(app.ctx, 0)
	if err != nil {
		slog.Error(config.MsgLoadFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}

	slog.Info(config.MsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(rows))

	w := app.App.NewWindow(app.Tr.Msg(config.TKeyWinUpcoming))
	w.Resize(fyne.NewSize(config.UpcomingWinWidth, config.UpcomingWinHeight))
	app.upcomingWindow = w

	sortCol := config.ColIDDate
	sortAsc := true
	sortUpcoming(rows, sortCol, sortAsc)

	table := widget.NewTable(
		func() (int, int) {
			return len(rows), config.UpcomingColumns
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(rows) {
				return
			}
			o.(*widget.Label).SetText(app.cellText(rows[id.Row], id.Col))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		text := app.Tr.Msg(headerKey(id.Col))
		if id.Col == sortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if sortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				sortCol = id.Col
				sortAsc = true
			}
			sortUpcoming(rows, sortCol, sortAsc)
			slog.Debug(config.MsgSorted,
				config.LogKeyComponent, config.CompUI,
				config.LogKeySortCol, sortCol,
				config.LogKeySortAsc, sortAsc)
			table.Refresh()
		}
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDDate, config.ColWidthDate)
	table.SetColumnWidth(config.ColIDAge, config.ColWidthAge)
	table.SetColumnWidth(config.ColIDCategory, config.ColWidthCategory)

	w.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	w.SetOnClosed(func() {
		app.upcomingWindow = nil
	})
	w.Show()
}

func (app *ReminderApp) cellText(u service.Upcoming, col int) string {
	switch col {
	case config.ColIDName:
		return u.Birthday.Name
	case config.ColIDDate:
		return u.Next.Format(config.DateFormatDisplay)
	case config.ColIDAge:
		return formatAge(u)
	case config.ColIDCategory:
		c, ok := app.Service.Categories.Resolve(u.Birthday.Category)
		if !ok {
			return app.Tr.Msg(config.TKeyUncategorized)
		}
		return strings.TrimSpace(c.Icon + " " + c.Name)
	}
	return ""
}

func headerKey(col int) string {
	switch col {
	case config.ColIDName:
		return config.TKeyColName
	case config.ColIDDate:
		return config.TKeyColDate
	case config.ColIDAge:
		return config.TKeyColAge
	default:
		return config.TKeyColCategory
	}
}

// formatAge shows the transition to the age reached on the next occurrence.
func formatAge(u service.Upcoming) string {
	switch {
	case !u.AgeKnown:
		return config.AgeUnknown
	case u.AgeNext == 0:
		return config.AgeBirth
	default:
		return fmt.Sprintf(config.FormatAgeChange, u.AgeNext-1, u.AgeNext)
	}
}

// sortUpcoming orders rows in place by the given column. Unknown ages sort
// last in ascending order; date ties are broken by name.
func sortUpcoming(rows []service.Upcoming, col int, asc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return lessUpcoming(rows[i], rows[j], col)
		}
		return lessUpcoming(rows[j], rows[i], col)
	})
}

func lessUpcoming(a, b service.Upcoming, col int) bool {
	switch col {
	case config.ColIDName:
		return strings.ToLower(a.Birthday.Name) < strings.ToLower(b.Birthday.Name)
	case config.ColIDAge:
		if a.AgeKnown != b.AgeKnown {
			return a.AgeKnown
		}
		return a.AgeNext < b.AgeNext
	case config.ColIDCategory:
		return a.Birthday.Category < b.Birthday.Category
	default:
		if a.DaysUntil == b.DaysUntil {
			return a.Birthday.Name < b.Birthday.Name
		}
		return a.DaysUntil < b.DaysUntil
	}
}
