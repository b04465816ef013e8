package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/locale"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
	"github.com/tartampluch/go-birthday-reminders/internal/service"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	todayStyle  = cellStyle.Foreground(lipgloss.Color("10")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func renderTable(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if style != nil {
				return style(row, col)
			}
			return cellStyle
		}).
		Render()
}

func renderHint(text string) string {
	return hintStyle.Render(text)
}

// renderUpcoming highlights the birthdays happening today.
func renderUpcoming(s *session, rows []service.Upcoming) string {
	tr := s.tr
	headers := []string{
		tr.Msg(config.TKeyColName),
		tr.Msg(config.TKeyColDate),
		tr.Msg(config.TKeyColDays),
		tr.Msg(config.TKeyColAge),
		tr.Msg(config.TKeyColCategory),
		tr.Msg(config.TKeyColID),
	}

	cells := make([][]string, 0, len(rows))
	for _, u := range rows {
		cells = append(cells, []string{
			u.Birthday.Name,
			u.Next.Format(config.DateFormatDisplay),
			strconv.Itoa(u.DaysUntil),
			formatAge(u),
			categoryLabel(s, u.Birthday.Category),
			u.Birthday.ID,
		})
	}

	return renderTable(headers, cells, func(row, _ int) lipgloss.Style {
		if row >= 0 && row < len(rows) && rows[row].DaysUntil == 0 {
			return todayStyle
		}
		return cellStyle
	})
}

func categoryLabel(s *session, id string) string {
	if c, ok := s.svc.Categories.Resolve(id); ok {
		return strings.TrimSpace(c.Icon + " " + c.Name)
	}
	return s.tr.Msg(config.TKeyUncategorized)
}

func renderPending(tr *locale.Translator, pending []notify.PendingNotification) string {
	headers := []string{
		tr.Msg(config.TKeyColFireAt),
		tr.Msg(config.TKeyColTitle),
		tr.Msg(config.TKeyColID),
	}
	cells := make([][]string, 0, len(pending))
	for _, p := range pending {
		cells = append(cells, []string{
			p.At.Format(config.InstantFormatShort),
			p.Title,
			strconv.FormatInt(int64(p.ID), 10),
		})
	}
	return renderTable(headers, cells, nil)
}

func renderCategories(tr *locale.Translator, stats []service.CategoryCount) string {
	headers := []string{
		tr.Msg(config.TKeyColID),
		tr.Msg(config.TKeyColCategory),
		tr.Msg(config.TKeyColCount),
	}
	cells := make([][]string, 0, len(stats))
	for _, st := range stats {
		cells = append(cells, []string{
			st.Category.ID,
			strings.TrimSpace(st.Category.Icon + " " + st.Category.Name),
			strconv.Itoa(st.Count),
		})
	}
	return renderTable(headers, cells, nil)
}

func renderOrphans(tr *locale.Translator, orphans []engine.Birthday) string {
	headers := []string{
		tr.Msg(config.TKeyColName),
		tr.Msg(config.TKeyColCategory),
		tr.Msg(config.TKeyColID),
	}
	cells := make([][]string, 0, len(orphans))
	for _, b := range orphans {
		cells = append(cells, []string{b.Name, b.Category, b.ID})
	}
	return renderTable(headers, cells, nil)
}
