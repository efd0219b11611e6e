package reminder

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelDropsWhenFull(t *testing.T) {
	ch := NewChannel(1, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ch.Notify(context.Background(), Notification{Title: "a"})
	ch.Notify(context.Background(), Notification{Title: "b"})

	assert.Equal(t, "a", (<-ch.C()).Title)
	select {
	case n := <-ch.C():
		t.Fatalf("expected drop, got %v", n)
	default:
	}
}

func TestMultiAndLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var got []string
	n := Multi(
		NotifierFunc(func(_ context.Context, n Notification) { got = append(got, n.Title) }),
		LogNotifier{Logger: logger},
	)
	n.Notify(context.Background(), Notification{Owner: "ana", Title: "dentist", Due: "2026-10-16"})

	assert.Equal(t, []string{"dentist"}, got)
	assert.Contains(t, buf.String(), "task due tomorrow")
	assert.Contains(t, buf.String(), "title=dentist")
}

func TestNotificationString(t *testing.T) {
	n := Notification{Title: "dentist", Due: "2026-10-16"}
	assert.Equal(t, `Reminder: "dentist" is due tomorrow (2026-10-16)`, n.String())
}
