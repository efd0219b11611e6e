package agenda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/record"
	"agenda/internal/storage"
	"agenda/internal/validation"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(storage.Options{Backend: storage.BackendJSON, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, nil), store
}

func TestNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	n, err := svc.AddNote(ctx, "ana", "  groceries ", " milk\n")
	require.NoError(t, err)
	assert.Equal(t, "groceries", n.Title)
	assert.Equal(t, "milk", n.Body)

	edited, err := svc.EditNote(ctx, "ana", n.ID, "groceries", "milk, eggs")
	require.NoError(t, err)
	assert.Equal(t, n.ID, edited.ID)

	got, err := svc.Note(ctx, "ana", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "milk, eggs", got.Body)

	require.NoError(t, svc.DeleteNote(ctx, "ana", n.ID))
	assert.ErrorIs(t, svc.DeleteNote(ctx, "ana", n.ID), storage.ErrNotFound)

	_, err = svc.EditNote(ctx, "ana", n.ID, "x", "y")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestValidationHappensBeforeStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	var verr *validation.Error
	_, err := svc.AddNote(ctx, "ana", "   ", "body")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = svc.AddTask(ctx, "ana", "t", "", "tomorrow")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due", verr.Field)

	_, err = svc.AddTask(ctx, "", "t", "", "2026-10-16")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "owner", verr.Field)

	notes, err := store.Notes().Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
	tasks, err := store.Tasks().Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestEditingOneOfTwoIdenticalTasks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.AddTask(ctx, "ana", "standup", "daily", "2026-10-16")
	require.NoError(t, err)
	second, err := svc.AddTask(ctx, "ana", "standup", "daily", "2026-10-16")
	require.NoError(t, err)

	_, err = svc.EditTask(ctx, "ana", second.ID, "standup", "moved", "2026-10-17")
	require.NoError(t, err)

	list, err := svc.Tasks(ctx, "ana", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, "moved", list[1].Body)
	assert.Equal(t, "2026-10-17", list[1].Due)
}

func TestTitleFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for _, title := range []string{"Meeting notes", "Weekly report", "meet and greet", "Q3/Q4 plan"} {
		_, err := svc.AddNote(ctx, "ana", title, "")
		require.NoError(t, err)
	}

	titles := func(pattern string) []string {
		t.Helper()
		list, err := svc.Notes(ctx, "ana", pattern)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, n := range list {
			out = append(out, n.Title)
		}
		return out
	}

	assert.Len(t, titles(""), 4)
	assert.Equal(t, []string{"Meeting notes", "meet and greet"}, titles("meet*"))
	assert.Equal(t, []string{"Weekly report"}, titles("report"))
	assert.Equal(t, []string{"Q3/Q4 plan"}, titles("q3*"))
	assert.Equal(t, []string{"Q3/Q4 plan"}, titles("q3/q4"))
	assert.Equal(t, []string{"Q3/Q4 plan"}, titles("Q3/Q4 plan"))
	assert.Equal(t, []string{"Q3/Q4 plan"}, titles("*/q4*"))
	assert.Equal(t, []string{"Q3/Q4 plan"}, titles("q?/q4 *"))
	assert.Equal(t, []string{"Meeting notes", "Weekly report"}, titles("{meeting,weekly}*"))

	_, err := svc.Notes(ctx, "ana", "[unclosed")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestCalendarQueries(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	for _, due := range []string{"2026-10-16", "2026-10-16", "2026-10-30", "2026-11-01", "2025-10-16"} {
		_, err := svc.AddTask(ctx, "ana", "t "+due, "", due)
		require.NoError(t, err)
	}
	// Imported data may hold dates in other formats.
	_, err := store.Tasks().Append(ctx, "ana", record.Task{Title: "legacy", Due: "16/10/2026"})
	require.NoError(t, err)

	day := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.Local)
	on, err := svc.TasksOn(ctx, "ana", day)
	require.NoError(t, err)
	assert.Len(t, on, 2)

	days, err := svc.DueDays(ctx, "ana", 2026, time.October)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{16: 2, 30: 1}, days)

	upcoming, err := svc.Upcoming(ctx, "ana", time.Date(2026, time.October, 20, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2026-10-30", upcoming[0].Due)
	assert.Equal(t, "2026-11-01", upcoming[1].Due)

	none, err := svc.TasksOn(ctx, "bea", day)
	require.NoError(t, err)
	assert.Empty(t, none)
}
