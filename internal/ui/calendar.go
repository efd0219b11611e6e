package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agenda/internal/record"
)

func (m *Model) loadCalendar() error {
	days, err := m.deps.Agenda.DueDays(m.ctx, m.owner(), m.day.Year(), m.day.Month())
	if err != nil {
		return err
	}
	tasks, err := m.deps.Agenda.TasksOn(m.ctx, m.owner(), m.day)
	if err != nil {
		return err
	}
	m.dueDays = days
	m.dayTasks = tasks
	return nil
}

func (m Model) updateCalendar(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Back:
		m.mode = modeMenu
		m.setStatus("")
		return m, nil
	case m.cfg.Keys.NextDay, "right":
		m.day = m.day.AddDate(0, 0, 1)
	case m.cfg.Keys.PrevDay, "left":
		m.day = m.day.AddDate(0, 0, -1)
	case m.cfg.Keys.Down, "down":
		m.day = m.day.AddDate(0, 0, 7)
	case m.cfg.Keys.Up, "up":
		m.day = m.day.AddDate(0, 0, -7)
	case m.cfg.Keys.Today:
		m.day = m.now()
	case m.cfg.Keys.Add:
		return m.startForm(record.KindTasks, "", "", "", m.day.Format(record.DateLayout))
	default:
		return m, nil
	}
	m.setStatus("%s", m.day.Format("Monday, 2 January 2006"))
	m.refresh()
	return m, nil
}

func (m Model) renderCalendar() string {
	grid := renderMonth(m.day, m.now(), m.dueDays)

	var b strings.Builder
	b.WriteString(m.day.Format(record.DateLayout) + "\n")
	if len(m.dayTasks) == 0 {
		b.WriteString(dimStyle.Render("no tasks"))
	}
	for _, t := range m.dayTasks {
		b.WriteString("• " + t.Title)
		if t.Body != "" {
			b.WriteString(dimStyle.Render(" " + t.Body))
		}
		b.WriteString("\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(grid), "  ", b.String())
}

// renderMonth draws the month of day as a Monday-first grid. Days with tasks
// are highlighted and the selected day is reversed.
func renderMonth(day, today time.Time, due map[int]int) string {
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	last := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %d\n", day.Month(), day.Year()))
	b.WriteString("Mo Tu We Th Fr Sa Su\n")
	b.WriteString(strings.Repeat("   ", offset))
	for d := 1; d <= last; d++ {
		cell := fmt.Sprintf("%2d", d)
		switch {
		case d == day.Day():
			cell = cursorDay.Render(cell)
		case due[d] > 0:
			cell = busyDay.Render(cell)
		case sameDay(first.AddDate(0, 0, d-1), today):
			cell = todayStyle.Render(cell)
		}
		b.WriteString(cell)
		if (offset+d)%7 == 0 {
			b.WriteString("\n")
		} else if d < last {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sameDay(a, b time.Time) bool {
	return a.Format(record.DateLayout) == b.Format(record.DateLayout)
}
