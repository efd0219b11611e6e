package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/record"
	"agenda/internal/validation"
)

type formState struct {
	kind   record.Kind
	id     string
	labels []string
	values []string
	index  int
}

func (fs formState) currentLabel() string {
	return fs.labels[fs.index]
}

func (m Model) startForm(kind record.Kind, id, title, body, due string) (tea.Model, tea.Cmd) {
	fs := &formState{kind: kind, id: id}
	if kind == record.KindTasks {
		fs.labels = []string{"title", "body", "due (YYYY-MM-DD)"}
		fs.values = []string{title, body, due}
	} else {
		fs.labels = []string{"title", "body"}
		fs.values = []string{title, body}
	}
	if m.mode != modeForm {
		m.prev = m.mode
	}
	m.form = fs
	m.mode = modeForm
	m.showField()
	m.setStatus("%s: enter to advance, %s to cancel", m.formTitle(), m.cfg.Keys.Cancel)
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) formTitle() string {
	verb := "New"
	if m.form.id != "" {
		verb = "Edit"
	}
	if m.form.kind == record.KindTasks {
		return verb + " task"
	}
	return verb + " note"
}

func (m Model) updateForm(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fs := m.form
	switch key {
	case m.cfg.Keys.Cancel:
		m.form = nil
		m.mode = m.prev
		m.input.Blur()
		m.setStatus("Edit cancelled")
		return m, nil
	case "tab", "down":
		fs.values[fs.index] = m.input.Value()
		fs.index = wrapIndex(fs.index+1, len(fs.labels))
	case "shift+tab", "up":
		fs.values[fs.index] = m.input.Value()
		fs.index = wrapIndex(fs.index-1, len(fs.labels))
	case m.cfg.Keys.Confirm:
		fs.values[fs.index] = m.input.Value()
		if fs.index >= len(fs.labels)-1 {
			return m.saveForm()
		}
		fs.index++
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.showField()
	return m, nil
}

// showField loads the current form field into the input. Only the title is
// length-capped; SetValue truncates to the cap, so it is set first.
func (m *Model) showField() {
	fs := m.form
	m.input.CharLimit = 0
	if fs.index == 0 {
		m.input.CharLimit = validation.MaxTitleLen
	}
	m.input.Placeholder = fs.currentLabel()
	m.input.SetValue(fs.values[fs.index])
	m.input.CursorEnd()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	fs := m.form
	owner := m.owner()
	var (
		id  string
		err error
	)
	switch {
	case fs.kind == record.KindTasks && fs.id == "":
		var t record.Task
		t, err = m.deps.Agenda.AddTask(m.ctx, owner, fs.values[0], fs.values[1], fs.values[2])
		id = t.ID
	case fs.kind == record.KindTasks:
		_, err = m.deps.Agenda.EditTask(m.ctx, owner, fs.id, fs.values[0], fs.values[1], fs.values[2])
		id = fs.id
	case fs.id == "":
		var n record.Note
		n, err = m.deps.Agenda.AddNote(m.ctx, owner, fs.values[0], fs.values[1])
		id = n.ID
	default:
		_, err = m.deps.Agenda.EditNote(m.ctx, owner, fs.id, fs.values[0], fs.values[1])
		id = fs.id
	}
	if err != nil {
		// Stay in the form so the input can be corrected.
		m.setError("save failed", err)
		return m, nil
	}

	m.form = nil
	m.mode = m.prev
	m.input.Blur()
	m.setStatus("Saved %q", strings.TrimSpace(fs.values[0]))
	m.refresh()
	m.selectID(id)
	return m, nil
}

// selectID moves the cursor onto the record with id when it is listed.
func (m *Model) selectID(id string) {
	switch m.mode {
	case modeNotes:
		for i, n := range m.notes {
			if n.ID == id {
				m.cursor = i
			}
		}
	case modeTasks:
		for i, t := range m.tasks {
			if t.ID == id {
				m.cursor = i
			}
		}
	}
}

func (m Model) renderForm() string {
	fs := m.form
	var b strings.Builder
	b.WriteString(m.formTitle() + "\n\n")
	for i, label := range fs.labels {
		prefix := " "
		if i == fs.index {
			prefix = ">"
		}
		val := fs.values[i]
		if i == fs.index {
			val = m.input.Value()
		}
		b.WriteString(fmt.Sprintf("%s %-18s : %s\n", prefix, label, emptyPlaceholder(val)))
	}
	b.WriteString("\nField: " + fs.currentLabel() + "\n")
	b.WriteString(m.input.View())
	return b.String()
}
