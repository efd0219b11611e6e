package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/auth"
	"agenda/internal/record"
	"agenda/internal/reminder"
	"agenda/internal/storage"
)

var today = time.Date(2026, time.October, 15, 8, 0, 0, 0, time.Local)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *storage.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(storage.Options{Backend: storage.BackendJSON, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	authSvc := auth.NewService(store.Users(), auth.WithParams(auth.Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}))
	require.NoError(t, authSvc.Register(ctx, "ana", "secret123"))
	require.NoError(t, authSvc.Register(ctx, "bea", "secret456"))

	opts = append([]Option{WithClock(func() time.Time { return today }), WithInterval(10 * time.Millisecond)}, opts...)
	m := NewManager(authSvc, store.Tasks(), opts...)
	t.Cleanup(m.Logout)
	return m, store
}

func receive(t *testing.T, ch <-chan reminder.Notification) reminder.Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no reminder received")
		return reminder.Notification{}
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Login(context.Background(), "ana", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, m.Current())
}

func TestReminderRepeatsOnlyAfterRelogin(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := store.Tasks().Append(ctx, "ana", record.Task{Title: "dentist", Due: "2026-10-16"})
	require.NoError(t, err)

	s, err := m.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "dentist", receive(t, s.Notifications()).Title)

	time.Sleep(50 * time.Millisecond)
	select {
	case n := <-s.Notifications():
		t.Fatalf("repeat within one session: %v", n)
	default:
	}

	again, err := m.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
	assert.False(t, s.Alive(), "the previous session ends on a new login")
	assert.False(t, s.Scheduler().Running())
	assert.Equal(t, "dentist", receive(t, again.Notifications()).Title)
}

func TestSwitchingUsersDoesNotLeakState(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := store.Tasks().Append(ctx, "bea", record.Task{Title: "report", Due: "2026-10-16"})
	require.NoError(t, err)

	ana, err := m.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
	bea, err := m.Login(ctx, "bea", "secret456")
	require.NoError(t, err)

	assert.False(t, ana.Alive())
	assert.Same(t, bea, m.Current())
	assert.Equal(t, "report", receive(t, bea.Notifications()).Title)
	select {
	case n := <-ana.Notifications():
		t.Fatalf("reminder leaked to previous user: %v", n)
	default:
	}
}

func TestLogoutStopsScheduler(t *testing.T) {
	m, _ := newTestManager(t)

	s, err := m.Login(context.Background(), "ana", "secret123")
	require.NoError(t, err)
	require.True(t, s.Scheduler().Running())

	m.Logout()
	assert.False(t, s.Alive())
	assert.False(t, s.Scheduler().Running())
	assert.Nil(t, m.Current())

	s.Logout()
}

func TestExtraNotifierReceivesReminders(t *testing.T) {
	ctx := context.Background()
	extra := reminder.NewChannel(4, nil)
	m, store := newTestManager(t, WithNotifier(extra))
	_, err := store.Tasks().Append(ctx, "ana", record.Task{Title: "dentist", Due: "2026-10-16"})
	require.NoError(t, err)

	_, err = m.Login(ctx, "ana", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "dentist", receive(t, extra.C()).Title)
}
