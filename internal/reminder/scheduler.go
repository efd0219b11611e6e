// Package reminder periodically looks for a user's tasks due tomorrow and
// announces each of them once per session.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"agenda/internal/record"
)

// DefaultInterval is the pause between two checks. Due dates have day
// granularity, so an hourly check is enough.
const DefaultInterval = time.Hour

var ErrRunning = errors.New("scheduler already running")

// TaskLister returns an owner's tasks in list order.
type TaskLister interface {
	List(ctx context.Context, owner string) ([]record.Task, error)
}

type TaskListerFunc func(ctx context.Context, owner string) ([]record.Task, error)

func (f TaskListerFunc) List(ctx context.Context, owner string) ([]record.Task, error) {
	return f(ctx, owner)
}

type key struct {
	owner string
	title string
	due   string
}

// Scheduler checks one user's tasks. Its set of already announced tasks
// lives as long as the scheduler, so every session needs its own.
type Scheduler struct {
	owner    string
	tasks    TaskLister
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	alive    func() bool
	logger   *slog.Logger

	mu       sync.Mutex
	notified map[key]struct{}

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLiveness installs the check run before every tick. Once it reports
// false the loop ends without scheduling another tick.
func WithLiveness(alive func() bool) Option {
	return func(s *Scheduler) {
		s.alive = alive
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(owner string, tasks TaskLister, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		owner:    owner,
		tasks:    tasks,
		notifier: notifier,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   slog.Default(),
		notified: make(map[key]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "reminder", "owner", owner)
	return s
}

func (s *Scheduler) Owner() string {
	return s.owner
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Tick runs one check and returns the notifications it emitted, in the order
// of the owner's task list.
func (s *Scheduler) Tick(ctx context.Context) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tomorrow := s.now().AddDate(0, 0, 1).Format(record.DateLayout)
	tasks, err := s.tasks.List(ctx, s.owner)
	if err != nil {
		return nil, err
	}

	var sent []Notification
	for _, t := range tasks {
		if t.Due != tomorrow {
			continue
		}
		k := key{owner: s.owner, title: t.Title, due: t.Due}
		if _, ok := s.notified[k]; ok {
			continue
		}
		n := Notification{Owner: s.owner, TaskID: t.ID, Title: t.Title, Due: t.Due}
		if s.notifier != nil {
			s.notifier.Notify(ctx, n)
		}
		s.notified[k] = struct{}{}
		sent = append(sent, n)
	}
	s.logger.Debug("tick", "tomorrow", tomorrow, "tasks", len(tasks), "sent", len(sent))
	return sent, nil
}

// Start runs a tick now and then one every interval on a background
// goroutine until ctx is done, Stop is called or the liveness check fails.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			return ErrRunning
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.run(runCtx, done)
	s.logger.Info("reminders started", "interval", s.interval)
	return nil
}

// Stop ends the loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Done is closed when the loop started by the last Start ends.
func (s *Scheduler) Done() <-chan struct{} {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.done
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if !s.tickIfAlive(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("reminders stopped")
			return
		case <-ticker.C:
			if !s.tickIfAlive(ctx) {
				return
			}
		}
	}
}

func (s *Scheduler) tickIfAlive(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if s.alive != nil && !s.alive() {
		s.logger.Info("session ended, reminders stopped")
		return false
	}
	if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
		// The next tick tries again.
		s.logger.Error("reminder check failed", "error", err)
	}
	return true
}
