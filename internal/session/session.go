// Package session ties a logged-in user to the reminder scheduler that runs
// for as long as the login lasts.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"agenda/internal/auth"
	"agenda/internal/reminder"
)

const inboxSize = 32

// Authenticator checks a username/password pair.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (bool, error)
}

// Manager owns at most one active session.
type Manager struct {
	auth     Authenticator
	tasks    reminder.TaskLister
	interval time.Duration
	clock    func() time.Time
	notifier reminder.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	current *Session
}

type Option func(*Manager)

func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.interval = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.clock = now
	}
}

// WithNotifier adds a notifier that receives every reminder next to the
// session's own inbox.
func WithNotifier(n reminder.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func NewManager(a Authenticator, tasks reminder.TaskLister, opts ...Option) *Manager {
	m := &Manager{
		auth:     a,
		tasks:    tasks,
		interval: reminder.DefaultInterval,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login authenticates the user, ends any previous session and starts a new
// one with its own reminder scheduler.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	ok, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		m.logger.Warn("login rejected", "user", username)
		return nil, auth.ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Logout()
	}

	logger := m.logger.With("user", username)
	s := &Session{
		User:      username,
		StartedAt: m.clock(),
		inbox:     reminder.NewChannel(inboxSize, logger),
		logger:    logger,
	}
	var notifier reminder.Notifier = reminder.Multi(s.inbox, reminder.LogNotifier{Logger: logger})
	if m.notifier != nil {
		notifier = reminder.Multi(notifier, m.notifier)
	}
	s.scheduler = reminder.New(username, m.tasks, notifier,
		reminder.WithInterval(m.interval),
		reminder.WithClock(m.clock),
		reminder.WithLiveness(s.Alive),
		reminder.WithLogger(m.logger),
	)
	// The scheduler outlives the login call.
	if err := s.scheduler.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	m.current = s
	logger.Info("session started")
	return s, nil
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && !m.current.Alive() {
		m.current = nil
	}
	return m.current
}

// Logout ends the active session, if any.
func (m *Manager) Logout() {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()
	if s != nil {
		s.Logout()
	}
}

// Session is one login of one user.
type Session struct {
	User      string
	StartedAt time.Time

	scheduler *reminder.Scheduler
	inbox     *reminder.Channel
	logger    *slog.Logger
	closed    atomic.Bool
}

// Alive reports whether the session has not been logged out.
func (s *Session) Alive() bool {
	return !s.closed.Load()
}

// Notifications delivers the session's reminders. The channel is never
// closed; stop reading after Logout.
func (s *Session) Notifications() <-chan reminder.Notification {
	return s.inbox.C()
}

func (s *Session) Scheduler() *reminder.Scheduler {
	return s.scheduler
}

// Logout stops the reminder scheduler immediately. It is safe to call more
// than once.
func (s *Session) Logout() {
	if s.closed.Swap(true) {
		return
	}
	s.scheduler.Stop()
	s.logger.Info("session ended")
}
