package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/agenda"
	"agenda/internal/auth"
	"agenda/internal/config"
	"agenda/internal/record"
	"agenda/internal/reminder"
	"agenda/internal/session"
	"agenda/internal/storage"
	"agenda/internal/validation"
)

type mode int

const (
	modeLogin mode = iota
	modeMenu
	modeNotes
	modeTasks
	modeCalendar
	modeForm
	modeFilter
)

const maxBanner = 3

// Deps are the services the interface drives.
type Deps struct {
	Config   config.Config
	Auth     *auth.Service
	Sessions *session.Manager
	Agenda   *agenda.Service
	// Changes reports documents modified by another process. It may be nil.
	Changes <-chan record.Kind
	Logger  *slog.Logger
	Now     func() time.Time
}

type reminderMsg struct {
	session *session.Session
	n       reminder.Notification
}

type storeChangedMsg struct {
	kind record.Kind
}

type pendingDelete struct {
	kind  record.Kind
	id    string
	title string
}

type Model struct {
	ctx    context.Context
	deps   Deps
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time

	mode     mode
	prev     mode
	session  *session.Session
	login    *loginState
	menu     int
	notes    []record.Note
	tasks    []record.Task
	cursor   int
	filter   string
	form     *formState
	input    textinput.Model
	day      time.Time
	dueDays  map[int]int
	dayTasks []record.Task

	confirmDel *pendingDelete
	banner     []string
	status     string
	statusErr  bool
	width      int
}

// Run starts the interactive program and blocks until the user quits. Any
// open session is logged out on return.
func Run(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	deps.Sessions.Logout()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	ti := textinput.New()
	ti.CharLimit = validation.MaxTitleLen
	ti.Width = 40

	return Model{
		ctx:    ctx,
		deps:   deps,
		cfg:    deps.Config,
		logger: deps.Logger.With("component", "ui"),
		now:    deps.Now,
		mode:   modeLogin,
		login:  newLoginState(),
		input:  ti,
		status: fmt.Sprintf("Log in, or press %s to create an account.", deps.Config.Keys.Register),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.deps.Changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirmDel != nil {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 20)
	case reminderMsg:
		if msg.session != m.session || m.session == nil {
			return m, nil
		}
		m.banner = append(m.banner, msg.n.String())
		if len(m.banner) > maxBanner {
			m.banner = m.banner[len(m.banner)-maxBanner:]
		}
		return m, waitForReminder(m.session)
	case storeChangedMsg:
		if m.session != nil {
			m.logger.Debug("reloading after external change", "kind", msg.kind)
			m.refresh()
		}
		return m, waitForChange(m.deps.Changes)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeLogin:
		return m.updateLogin(key, msg)
	case modeMenu:
		return m.updateMenu(key)
	case modeNotes, modeTasks:
		return m.updateList(key)
	case modeCalendar:
		return m.updateCalendar(key)
	case modeForm:
		return m.updateForm(key, msg)
	case modeFilter:
		return m.updateFilter(key, msg)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.heading()))
	b.WriteString("\n\n")

	if len(m.banner) > 0 {
		b.WriteString(bannerStyle.Render(strings.Join(m.banner, "\n")))
		b.WriteString("\n\n")
	}

	switch m.mode {
	case modeLogin:
		b.WriteString(m.renderLogin())
	case modeMenu:
		b.WriteString(m.renderMenu())
	case modeNotes, modeTasks:
		b.WriteString(m.renderList())
	case modeCalendar:
		b.WriteString(m.renderCalendar())
	case modeForm:
		b.WriteString(m.renderForm())
	case modeFilter:
		b.WriteString(m.renderList())
		b.WriteString("\nFilter: ")
		b.WriteString(m.input.View())
	}

	b.WriteString("\n---\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.renderHelp()))
	return b.String()
}

func (m Model) heading() string {
	title := "Agenda"
	if m.session != nil {
		title += " • " + m.session.User
	}
	switch m.mode {
	case modeNotes:
		title += " • notes"
	case modeTasks:
		title += " • tasks"
	case modeCalendar:
		title += " • calendar"
	}
	return title
}

func (m Model) owner() string {
	if m.session == nil {
		return ""
	}
	return m.session.User
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		m.status = verr.Error()
	case errors.Is(err, storage.ErrNotFound):
		m.status = prefix + ": the record no longer exists"
	default:
		m.status = fmt.Sprintf("%s: %v", prefix, err)
		m.logger.Error(prefix, "error", err)
	}
	m.statusErr = true
}

// refresh reloads whatever the current screen shows.
func (m *Model) refresh() {
	view := m.mode
	if view == modeForm || view == modeFilter {
		view = m.prev
	}
	var err error
	switch view {
	case modeNotes:
		err = m.loadNotes()
	case modeTasks:
		err = m.loadTasks()
	case modeCalendar:
		err = m.loadCalendar()
	}
	if err != nil {
		m.setError("reload failed", err)
	}
}

func (m *Model) loadNotes() error {
	notes, err := m.deps.Agenda.Notes(m.ctx, m.owner(), m.filter)
	if err != nil {
		return err
	}
	m.notes = notes
	m.cursor = clampCursor(m.cursor, len(notes))
	return nil
}

func (m *Model) loadTasks() error {
	tasks, err := m.deps.Agenda.Tasks(m.ctx, m.owner(), m.filter)
	if err != nil {
		return err
	}
	m.tasks = tasks
	m.cursor = clampCursor(m.cursor, len(tasks))
	return nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.setStatus("Delete cancelled")
		m.confirmDel = nil
		return m, nil
	case "y", "Y":
		p := m.confirmDel
		m.confirmDel = nil
		var err error
		if p.kind == record.KindNotes {
			err = m.deps.Agenda.DeleteNote(m.ctx, m.owner(), p.id)
		} else {
			err = m.deps.Agenda.DeleteTask(m.ctx, m.owner(), p.id)
		}
		if err != nil {
			m.setError("delete failed", err)
			return m, nil
		}
		m.setStatus("Deleted %q", p.title)
		m.refresh()
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeLogin:
		return fmt.Sprintf("tab switch field • enter submit • %s toggle register • ctrl+c quit", k.Register)
	case modeMenu:
		return fmt.Sprintf("%s/%s move • %s open • %s logout • %s quit", k.Up, k.Down, k.Detail, k.Logout, k.Quit)
	case modeNotes, modeTasks:
		return fmt.Sprintf("%s/%s move • %s add • %s edit • %s delete • %s detail • %s filter • %s back",
			k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Detail, k.Filter, k.Back)
	case modeCalendar:
		return fmt.Sprintf("%s/%s day • %s/%s week • %s today • %s back", k.PrevDay, k.NextDay, k.Up, k.Down, k.Today, k.Back)
	case modeForm:
		return fmt.Sprintf("tab/shift+tab move • %s save/next • %s cancel", k.Confirm, k.Cancel)
	case modeFilter:
		return fmt.Sprintf("glob or text • %s apply • %s cancel", k.Confirm, k.Cancel)
	}
	return ""
}

// waitForReminder delivers the next reminder of s, or nothing once its
// scheduler has stopped.
func waitForReminder(s *session.Session) tea.Cmd {
	if s == nil {
		return nil
	}
	ch, done := s.Notifications(), s.Scheduler().Done()
	return func() tea.Msg {
		select {
		case n := <-ch:
			return reminderMsg{session: s, n: n}
		case <-done:
			return nil
		}
	}
}

func waitForChange(ch <-chan record.Kind) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		kind, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangedMsg{kind: kind}
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
