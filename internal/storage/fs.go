package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"agenda/internal/record"
)

const (
	documentExt = ".json"

	// tempFilePrefix marks in-flight atomic writes in the data directory.
	tempFilePrefix = "agenda-tmp-"
)

// FileBackend keeps one JSON file per document in a directory.
type FileBackend struct {
	dir    string
	perm   os.FileMode
	logger *slog.Logger
}

func NewFileBackend(dir string, logger *slog.Logger) *FileBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileBackend{
		dir:    dir,
		perm:   0o600,
		logger: logger.With("component", "fs-backend"),
	}
}

// Dir is the directory holding the documents.
func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+documentExt)
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	return writeFileAtomic(b.path(name), data, b.perm)
}

func (b *FileBackend) Close() error {
	return nil
}

// Watch reports the kind of every document rewritten in the directory until
// ctx is done. The channel is closed when watching stops.
func (b *FileBackend) Watch(ctx context.Context) (<-chan record.Kind, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(b.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", b.dir, err)
	}

	out := make(chan record.Kind, 8)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				kind, ok := b.kindFor(event)
				if !ok {
					continue
				}
				b.logger.Debug("document changed", "kind", kind, "op", event.Op.String())
				select {
				case out <- kind:
				case <-ctx.Done():
					return
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.logger.Error("fsnotify error", "error", werr)
			}
		}
	}()
	return out, nil
}

func (b *FileBackend) kindFor(event fsnotify.Event) (record.Kind, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempFilePrefix) || filepath.Ext(base) != documentExt {
		return "", false
	}
	return record.KindForDocument(strings.TrimSuffix(base, documentExt))
}

// writeFileAtomic replaces filename with data so that readers, including a
// watcher in another process, see either the old document or the new one and
// never a partial write. The temp file lives next to the target because
// rename is only atomic within one filesystem, and its name carries
// tempFilePrefix so the watcher skips it.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(filename), err)
	}
	tmpName := tmp.Name()
	// A no-op once the rename has happened.
	defer os.Remove(tmpName)

	_, err = tmp.Write(data)
	if err == nil {
		// Flush before the rename so a crash cannot leave an empty document.
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write temp for %s: %w", filepath.Base(filename), err)
	}

	// CreateTemp always uses 0600.
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", filepath.Base(filename), err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
