package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/agenda"
	"agenda/internal/auth"
	"agenda/internal/config"
	"agenda/internal/record"
	"agenda/internal/reminder"
	"agenda/internal/session"
	"agenda/internal/storage"
)

var today = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (Model, Deps) {
	t.Helper()
	store, err := storage.Open(storage.Options{Backend: storage.BackendJSON, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := func() time.Time { return today }
	authSvc := auth.NewService(store.Users(), auth.WithParams(auth.Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}))
	svc := agenda.NewService(store, nil)
	sessions := session.NewManager(authSvc, svc.TaskLister(), session.WithClock(clock))
	t.Cleanup(sessions.Logout)

	deps := Deps{
		Config:   config.Default(),
		Auth:     authSvc,
		Sessions: sessions,
		Agenda:   svc,
		Now:      clock,
	}
	return newModel(context.Background(), deps), deps
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func text(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestRegisterLoginAndManageNotes(t *testing.T) {
	m, deps := newTestModel(t)

	m = send(t, m, key(tea.KeyCtrlR), text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter))
	require.Equal(t, modeMenu, m.mode, m.status)
	require.NotNil(t, m.session)
	assert.Equal(t, "ana", m.session.User)
	assert.Same(t, m.session, deps.Sessions.Current())

	m = send(t, m, key(tea.KeyEnter))
	require.Equal(t, modeNotes, m.mode)
	assert.Contains(t, m.View(), "No notes")

	m = send(t, m, text("a"), text("groceries"), key(tea.KeyEnter), text("milk"), key(tea.KeyEnter))
	require.Equal(t, modeNotes, m.mode, m.status)
	require.Len(t, m.notes, 1)
	assert.Equal(t, "groceries", m.notes[0].Title)
	assert.Contains(t, m.View(), "groceries")

	m = send(t, m, text("e"), key(tea.KeyEnter), text(", eggs"), key(tea.KeyEnter))
	require.Len(t, m.notes, 1)
	assert.Equal(t, "milk, eggs", m.notes[0].Body)

	m = send(t, m, text("d"))
	require.NotNil(t, m.confirmDel)
	m = send(t, m, text("n"))
	assert.Len(t, m.notes, 1)

	m = send(t, m, text("d"), text("y"))
	assert.Empty(t, m.notes)

	m = send(t, m, key(tea.KeyEsc), key(tea.KeyCtrlL))
	assert.Equal(t, modeLogin, m.mode)
	assert.Nil(t, deps.Sessions.Current())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(context.Background(), "ana", "secret123"))

	m = send(t, m, text("ana"), key(tea.KeyEnter), text("wrong-password1"), key(tea.KeyEnter))
	assert.Equal(t, modeLogin, m.mode)
	assert.True(t, m.statusErr)
	assert.Equal(t, "Invalid username or password", m.status)
	assert.Empty(t, m.login.fields[1].Value())
}

func TestTaskFormKeepsInvalidInput(t *testing.T) {
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(context.Background(), "ana", "secret123"))
	m = send(t, m, text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter))
	require.Equal(t, modeMenu, m.mode)

	m = send(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	require.Equal(t, modeTasks, m.mode)

	m = send(t, m, text("a"), text("dentist"), key(tea.KeyEnter), key(tea.KeyEnter))
	require.Equal(t, modeForm, m.mode)
	assert.Equal(t, "2026-10-16", m.input.Value(), "due defaults to tomorrow")

	m.input.SetValue("someday")
	m = send(t, m, key(tea.KeyEnter))
	assert.Equal(t, modeForm, m.mode)
	assert.True(t, m.statusErr)

	m.input.SetValue("2026-10-16")
	m = send(t, m, key(tea.KeyEnter))
	require.Equal(t, modeTasks, m.mode, m.status)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "2026-10-16", m.tasks[0].Due)
}

func TestNoteFormKeepsLongBodies(t *testing.T) {
	ctx := context.Background()
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(ctx, "ana", "secret123"))
	m = send(t, m, text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter), key(tea.KeyEnter))
	require.Equal(t, modeNotes, m.mode)

	body := strings.Repeat("b", 400)
	m = send(t, m, text("a"), text(strings.Repeat("t", 300)))
	assert.Len(t, m.input.Value(), 256, "titles are capped")

	m = send(t, m, key(tea.KeyEnter), text(body), key(tea.KeyEnter))
	require.Equal(t, modeNotes, m.mode, m.status)
	require.Len(t, m.notes, 1)
	assert.Equal(t, body, m.notes[0].Body)

	m = send(t, m, text("e"), key(tea.KeyTab))
	require.Equal(t, modeForm, m.mode)
	assert.Equal(t, body, m.input.Value(), "editing must not truncate the body")
}

func TestFilterAndCalendar(t *testing.T) {
	ctx := context.Background()
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(ctx, "ana", "secret123"))
	for _, title := range []string{"weekly sync", "dentist", "weekly review"} {
		_, err := deps.Agenda.AddTask(ctx, "ana", title, "", "2026-10-16")
		require.NoError(t, err)
	}
	m = send(t, m, text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter))

	m = send(t, m, key(tea.KeyDown), key(tea.KeyEnter), text("/"), text("weekly"), key(tea.KeyEnter))
	require.Equal(t, modeTasks, m.mode)
	assert.Len(t, m.tasks, 2)

	m = send(t, m, text("/"), text("[bad"), key(tea.KeyEnter))
	assert.Equal(t, modeFilter, m.mode)
	assert.True(t, m.statusErr)
	assert.Equal(t, "weekly", m.filter)

	m = send(t, m, key(tea.KeyEsc), key(tea.KeyEsc), key(tea.KeyDown), key(tea.KeyEnter))
	require.Equal(t, modeCalendar, m.mode)
	assert.Empty(t, m.dayTasks)
	assert.Equal(t, map[int]int{16: 3}, m.dueDays)

	m = send(t, m, text("l"))
	assert.Len(t, m.dayTasks, 3)
	assert.Contains(t, m.View(), "dentist")
}

func TestReminderBanner(t *testing.T) {
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(context.Background(), "ana", "secret123"))
	m = send(t, m, text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter))
	require.NotNil(t, m.session)

	n := reminder.Notification{Owner: "ana", Title: "dentist", Due: "2026-10-16"}
	m = send(t, m, reminderMsg{session: m.session, n: n})
	assert.Contains(t, m.View(), `Reminder: "dentist" is due tomorrow (2026-10-16)`)

	// Reminders of an ended session are ignored.
	m = send(t, m, reminderMsg{session: &session.Session{User: "old"}, n: n}, reminderMsg{session: m.session, n: n}, reminderMsg{session: m.session, n: n}, reminderMsg{session: m.session, n: n})
	assert.Len(t, m.banner, maxBanner)
}

func TestStoreChangeReloadsList(t *testing.T) {
	ctx := context.Background()
	m, deps := newTestModel(t)
	require.NoError(t, deps.Auth.Register(ctx, "ana", "secret123"))
	m = send(t, m, text("ana"), key(tea.KeyEnter), text("secret123"), key(tea.KeyEnter), key(tea.KeyEnter))
	require.Equal(t, modeNotes, m.mode)
	require.Empty(t, m.notes)

	_, err := deps.Agenda.AddNote(ctx, "ana", "from elsewhere", "")
	require.NoError(t, err)
	m = send(t, m, storeChangedMsg{kind: record.KindNotes})
	assert.Len(t, m.notes, 1)
}

func TestRenderMonth(t *testing.T) {
	// October 2026 starts on a Thursday.
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.Local)
	grid := renderMonth(day, day, map[int]int{20: 1})
	lines := strings.Split(grid, "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "October 2026", lines[0])
	assert.Equal(t, "Mo Tu We Th Fr Sa Su", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], strings.Repeat("   ", 3)+" 1"))
	assert.Contains(t, grid, "31")
}

func TestCursorHelpers(t *testing.T) {
	assert.Equal(t, 0, clampCursor(5, 0))
	assert.Equal(t, 0, clampCursor(-1, 3))
	assert.Equal(t, 2, clampCursor(7, 3))
	assert.Equal(t, 2, wrapIndex(-1, 3))
	assert.Equal(t, 0, wrapIndex(3, 3))
	assert.Equal(t, "(empty)", emptyPlaceholder("  "))
}
