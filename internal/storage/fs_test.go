package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/record"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "test.json")

		require.NoError(t, writeFileAtomic(filename, []byte("hello atomic"), 0o600))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "hello atomic", string(got))
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "test.json")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0o644))

		require.NoError(t, writeFileAtomic(filename, []byte("overwritten"), 0o600))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "a.json"), []byte("x"), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "a.json", entries[0].Name())
	})

	t.Run("Applies Permissions", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "perm.json")
		require.NoError(t, writeFileAtomic(filename, []byte("{}"), 0o640))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "test.json")
		assert.Error(t, writeFileAtomic(filename, []byte("fail"), 0o600))
	})
}

func TestFileBackendCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	b := NewFileBackend(dir, nil)

	require.NoError(t, b.Write(context.Background(), "usuarios", []byte("{}")))
	assert.FileExists(t, filepath.Join(dir, "usuarios.json"))
}

func TestFileBackendWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	store := New(NewFileBackend(dir, nil), nil)

	changes, err := store.Watch(ctx)
	require.NoError(t, err)

	other := New(NewFileBackend(dir, nil), nil)
	_, err = other.Notes().Append(ctx, "ana", record.Note{Title: "from elsewhere"})
	require.NoError(t, err)

	select {
	case kind := <-changes:
		assert.Equal(t, record.KindNotes, kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
