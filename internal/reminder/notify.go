package reminder

import (
	"context"
	"fmt"
	"log/slog"
)

// Notification announces one task due tomorrow.
type Notification struct {
	Owner  string
	TaskID string
	Title  string
	Due    string
}

func (n Notification) String() string {
	return fmt.Sprintf("Reminder: %q is due tomorrow (%s)", n.Title, n.Due)
}

// Notifier receives reminders. Notify is called from the scheduler goroutine
// and must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Multi fans a notification out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notification) {
		for _, nt := range notifiers {
			nt.Notify(ctx, n)
		}
	})
}

// Channel buffers notifications for a host that polls them. When the buffer
// is full new notifications are dropped.
type Channel struct {
	ch     chan Notification
	logger *slog.Logger
}

func NewChannel(buffer int, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{ch: make(chan Notification, buffer), logger: logger}
}

func (c *Channel) C() <-chan Notification {
	return c.ch
}

func (c *Channel) Notify(_ context.Context, n Notification) {
	select {
	case c.ch <- n:
	default:
		c.logger.Warn("reminder dropped, host not reading", "owner", n.Owner, "title", n.Title)
	}
}

// LogNotifier writes reminders to a structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "task due tomorrow", "owner", n.Owner, "task", n.TaskID, "title", n.Title, "due", n.Due)
}
