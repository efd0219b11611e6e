package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"agenda/internal/agenda"
	"agenda/internal/storage"
)

func seeded(t *testing.T) *agenda.Service {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(storage.Options{Backend: storage.BackendJSON, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := agenda.NewService(store, nil)
	_, err = svc.AddNote(ctx, "ana", "idea", "write it down")
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, "ana", "dentist", "10am", "2026-10-16")
	require.NoError(t, err)
	return svc
}

var now = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

func TestWriteJSON(t *testing.T) {
	b, err := Collect(context.Background(), seeded(t), "ana", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b, FormatJSON))

	var back Bundle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, b, back)
	assert.Contains(t, buf.String(), `"title": "dentist"`)
	assert.Contains(t, buf.String(), `"due": "2026-10-16"`)
	assert.NotContains(t, buf.String(), "titulo")
}

func TestWriteYAML(t *testing.T) {
	b, err := Collect(context.Background(), seeded(t), "ana", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b, FormatYAML))
	assert.Contains(t, buf.String(), "title: dentist")
	assert.Contains(t, buf.String(), "due: \"2026-10-16\"")
	assert.Contains(t, buf.String(), "body: 10am")
	assert.NotContains(t, buf.String(), "titulo")

	var back Bundle
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, b.Tasks, back.Tasks)
	assert.Equal(t, b.Notes, back.Notes)
}

func TestCollectEmptyOwner(t *testing.T) {
	b, err := Collect(context.Background(), seeded(t), "ghost", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b, FormatJSON))
	assert.Contains(t, buf.String(), `"notes": []`)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Bundle{}, "xml"))
}
