package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"agenda/internal/record"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// DefaultDBName is the database file used by the sqlite and bolt backends
// when no explicit path is configured.
const DefaultDBName = "agenda.db"

// Backend persists whole documents as opaque bytes. Read reports a document
// that was never written with ErrNoDocument.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Watcher is implemented by backends that can report documents changed by
// another process.
type Watcher interface {
	Watch(ctx context.Context) (<-chan record.Kind, error)
}

// Backends lists the backend names Open understands.
func Backends() []string {
	return []string{BackendJSON, BackendSQLite, BackendBolt}
}

func openBackend(opts Options) (Backend, error) {
	switch opts.Backend {
	case "", BackendJSON:
		return NewFileBackend(opts.DataDir, opts.Logger), nil
	case BackendSQLite:
		return OpenSQLite(dbPath(opts))
	case BackendBolt:
		return OpenBolt(dbPath(opts))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func dbPath(opts Options) string {
	if opts.DBPath != "" {
		return opts.DBPath
	}
	return filepath.Join(opts.DataDir, DefaultDBName)
}
