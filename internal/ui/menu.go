package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var menuItems = []string{"Notes", "Tasks", "Calendar", "Log out"}

func (m Model) updateMenu(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Logout:
		return m.logout()
	case m.cfg.Keys.Down, "down":
		m.menu = wrapIndex(m.menu+1, len(menuItems))
	case m.cfg.Keys.Up, "up":
		m.menu = wrapIndex(m.menu-1, len(menuItems))
	case m.cfg.Keys.Detail, "enter":
		return m.openMenuItem(m.menu)
	}
	return m, nil
}

func (m Model) openMenuItem(idx int) (tea.Model, tea.Cmd) {
	m.cursor = 0
	m.filter = ""
	switch idx {
	case 0:
		m.mode = modeNotes
		m.setStatus("Notes")
		m.refresh()
	case 1:
		m.mode = modeTasks
		m.setStatus("Tasks")
		m.refresh()
	case 2:
		m.mode = modeCalendar
		m.day = m.now()
		m.setStatus("Calendar")
		m.refresh()
	case 3:
		return m.logout()
	}
	return m, nil
}

func (m Model) renderMenu() string {
	var b strings.Builder
	for i, item := range menuItems {
		if i == m.menu {
			b.WriteString(selectedStyle.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	return b.String()
}
