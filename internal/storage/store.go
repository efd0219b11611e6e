// Package storage persists the users, notes and tasks documents.
//
// Every document is read, modified and written back whole. A Store holds one
// mutex per document and keeps it for the full read-modify-write cycle, so
// concurrent callers in one process never interleave writes to the same
// document.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"agenda/internal/record"
)

// Options selects and configures the backend opened by Open.
type Options struct {
	Backend string
	DataDir string
	DBPath  string
	Logger  *slog.Logger
}

// Store is the record store shared by every host and the reminder scheduler.
type Store struct {
	backend Backend
	logger  *slog.Logger
	locks   map[record.Kind]*sync.Mutex
}

// Open opens the configured backend and wraps it in a Store.
func Open(opts Options) (*Store, error) {
	backend, err := openBackend(opts)
	if err != nil {
		return nil, err
	}
	return New(backend, opts.Logger), nil
}

// New wraps an already open backend.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	locks := make(map[record.Kind]*sync.Mutex, len(record.Kinds()))
	for _, k := range record.Kinds() {
		locks[k] = &sync.Mutex{}
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		locks:   locks,
	}
}

func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Notes is the notes document.
func (s *Store) Notes() *Collection[record.Note] {
	return NewCollection[record.Note](s, record.KindNotes)
}

// Tasks is the tasks document.
func (s *Store) Tasks() *Collection[record.Task] {
	return NewCollection[record.Task](s, record.KindTasks)
}

// Users is the users document.
func (s *Store) Users() *Users {
	return &Users{store: s}
}

// Watch reports kinds whose document was changed outside this process.
func (s *Store) Watch(ctx context.Context) (<-chan record.Kind, error) {
	w, ok := s.backend.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

func (s *Store) lock(kind record.Kind) func() {
	mu, ok := s.locks[kind]
	if !ok {
		// Unknown kinds still need serializing; they share the users lock.
		mu = s.locks[record.KindUsers]
	}
	mu.Lock()
	return mu.Unlock
}

// read decodes the document of kind into v. It reports false, with v left
// untouched, when the document has never been written.
func (s *Store) read(ctx context.Context, kind record.Kind, v any) (bool, error) {
	data, err := s.backend.Read(ctx, kind.DocumentName())
	if errors.Is(err, ErrNoDocument) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "load", Kind: kind, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Error("corrupt document", "kind", kind, "error", err)
		return false, &PersistenceError{Op: "load", Kind: kind, Err: err}
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, kind record.Kind, v any) error {
	data, err := encodeDocument(v)
	if err != nil {
		return &PersistenceError{Op: "save", Kind: kind, Err: err}
	}
	if err := s.backend.Write(ctx, kind.DocumentName(), data); err != nil {
		return &PersistenceError{Op: "save", Kind: kind, Err: err}
	}
	s.logger.Debug("document saved", "kind", kind, "bytes", len(data))
	return nil
}

// encodeDocument renders v as human-readable JSON indented by four spaces.
func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
