package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/record"
	"agenda/internal/validation"
)

func (m Model) listLen() int {
	if m.mode == modeTasks || (m.mode == modeFilter && m.prev == modeTasks) {
		return len(m.tasks)
	}
	return len(m.notes)
}

func (m Model) listKind() record.Kind {
	if m.mode == modeTasks {
		return record.KindTasks
	}
	return record.KindNotes
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	n := m.listLen()
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Back:
		m.mode = modeMenu
		m.filter = ""
		m.setStatus("")
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, n)
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, n)
	case m.cfg.Keys.Add:
		if m.listKind() == record.KindTasks {
			return m.startForm(record.KindTasks, "", "", "", m.now().AddDate(0, 0, 1).Format(record.DateLayout))
		}
		return m.startForm(record.KindNotes, "", "", "", "")
	case m.cfg.Keys.Edit:
		if n == 0 {
			m.setStatus("Nothing to edit")
			return m, nil
		}
		if m.listKind() == record.KindTasks {
			t := m.tasks[m.cursor]
			return m.startForm(record.KindTasks, t.ID, t.Title, t.Body, t.Due)
		}
		note := m.notes[m.cursor]
		return m.startForm(record.KindNotes, note.ID, note.Title, note.Body, "")
	case m.cfg.Keys.Delete:
		if n == 0 {
			return m, nil
		}
		p := &pendingDelete{kind: m.listKind()}
		if p.kind == record.KindTasks {
			p.id, p.title = m.tasks[m.cursor].ID, m.tasks[m.cursor].Title
		} else {
			p.id, p.title = m.notes[m.cursor].ID, m.notes[m.cursor].Title
		}
		m.confirmDel = p
		m.setStatus("Delete %q? y/n", p.title)
	case m.cfg.Keys.Detail:
		if n == 0 {
			m.setStatus("Nothing selected")
			return m, nil
		}
		if m.listKind() == record.KindTasks {
			t := m.tasks[m.cursor]
			m.setStatus("%s • due %s • %s", t.Title, t.Due, emptyPlaceholder(t.Body))
		} else {
			note := m.notes[m.cursor]
			m.setStatus("%s • %s", note.Title, emptyPlaceholder(note.Body))
		}
	case m.cfg.Keys.Filter:
		m.prev = m.mode
		m.mode = modeFilter
		m.input.CharLimit = validation.MaxTitleLen
		m.input.Placeholder = "title filter"
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		m.setStatus("Filter by title: plain text matches anywhere, globs like meet* are supported")
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateFilter(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = m.prev
		m.input.Blur()
		m.setStatus("Filter unchanged")
		return m, nil
	case m.cfg.Keys.Confirm:
		old := m.filter
		m.filter = strings.TrimSpace(m.input.Value())
		m.setStatus("")
		m.refresh()
		if m.statusErr {
			m.filter = old
			return m, nil
		}
		m.mode = m.prev
		m.cursor = 0
		m.input.Blur()
		if m.filter == "" {
			m.setStatus("Filter cleared")
		} else {
			m.setStatus("Filter: %s (%d shown)", m.filter, m.listLen())
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) renderList() string {
	kind := m.listKind()
	if m.mode == modeFilter {
		kind = record.KindNotes
		if m.prev == modeTasks {
			kind = record.KindTasks
		}
	}
	var b strings.Builder
	if m.filter != "" {
		b.WriteString(dimStyle.Render("filter: "+m.filter) + "\n")
	}
	if kind == record.KindTasks {
		if len(m.tasks) == 0 {
			return b.String() + fmt.Sprintf("No tasks. Press '%s' to add one.", m.cfg.Keys.Add)
		}
		for i, t := range m.tasks {
			b.WriteString(m.renderRow(i, fmt.Sprintf("%s  %s", t.Due, t.Title)))
		}
		return b.String()
	}
	if len(m.notes) == 0 {
		return b.String() + fmt.Sprintf("No notes. Press '%s' to add one.", m.cfg.Keys.Add)
	}
	for i, n := range m.notes {
		b.WriteString(m.renderRow(i, n.Title))
	}
	return b.String()
}

func (m Model) renderRow(i int, text string) string {
	if i == m.cursor && m.mode != modeFilter {
		return selectedStyle.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}
