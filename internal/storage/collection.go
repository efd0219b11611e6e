package storage

import (
	"context"

	"agenda/internal/record"
)

// Collection is the typed view of one owner-keyed document.
type Collection[R record.Record[R]] struct {
	store *Store
	kind  record.Kind
}

func NewCollection[R record.Record[R]](s *Store, kind record.Kind) *Collection[R] {
	return &Collection[R]{store: s, kind: kind}
}

func (c *Collection[R]) Kind() record.Kind {
	return c.kind
}

// Load returns the whole document. A document that was never written is an
// empty document.
func (c *Collection[R]) Load(ctx context.Context) (record.Document[R], error) {
	defer c.store.lock(c.kind)()
	return c.load(ctx)
}

// Save overwrites the whole document.
func (c *Collection[R]) Save(ctx context.Context, doc record.Document[R]) error {
	defer c.store.lock(c.kind)()
	return c.save(ctx, doc)
}

// List returns the owner's records in insertion order.
func (c *Collection[R]) List(ctx context.Context, owner string) ([]R, error) {
	doc, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc[owner], nil
}

// Find returns the owner's record with the given id.
func (c *Collection[R]) Find(ctx context.Context, owner, id string) (R, error) {
	var zero R
	list, err := c.List(ctx, owner)
	if err != nil {
		return zero, err
	}
	for _, r := range list {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return zero, ErrNotFound
}

// Append adds rec at the end of the owner's list, creating the list if
// needed. A record without an id is given a fresh one; the stored record is
// returned.
func (c *Collection[R]) Append(ctx context.Context, owner string, rec R) (R, error) {
	if rec.RecordID() == "" {
		rec = rec.WithID(record.NewID())
	}
	_, err := c.update(ctx, func(doc record.Document[R]) bool {
		doc[owner] = append(doc[owner], rec)
		return true
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return rec, nil
}

// ReplaceFunc overwrites the first record of the owner's list matching pred
// with rec. Nothing is written when no record matches. When rec carries no id
// it inherits the id of the record it replaces.
func (c *Collection[R]) ReplaceFunc(ctx context.Context, owner string, pred func(R) bool, rec R) (bool, error) {
	return c.update(ctx, func(doc record.Document[R]) bool {
		list := doc[owner]
		for i, r := range list {
			if !pred(r) {
				continue
			}
			if rec.RecordID() == "" {
				rec = rec.WithID(r.RecordID())
			}
			list[i] = rec
			return true
		}
		return false
	})
}

// RemoveFunc deletes the first record of the owner's list matching pred.
func (c *Collection[R]) RemoveFunc(ctx context.Context, owner string, pred func(R) bool) (bool, error) {
	return c.update(ctx, func(doc record.Document[R]) bool {
		list, ok := doc[owner]
		if !ok {
			return false
		}
		for i, r := range list {
			if pred(r) {
				doc[owner] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Replace overwrites the owner's record with the given id. rec keeps that id.
func (c *Collection[R]) Replace(ctx context.Context, owner, id string, rec R) error {
	found, err := c.ReplaceFunc(ctx, owner, byID[R](id), rec.WithID(id))
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the owner's record with the given id.
func (c *Collection[R]) Remove(ctx context.Context, owner, id string) error {
	found, err := c.RemoveFunc(ctx, owner, byID[R](id))
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func byID[R record.Record[R]](id string) func(R) bool {
	return func(r R) bool {
		return id != "" && r.RecordID() == id
	}
}

// update runs fn against the freshly loaded document under the document lock
// and saves it when fn reports a change.
func (c *Collection[R]) update(ctx context.Context, fn func(doc record.Document[R]) bool) (bool, error) {
	defer c.store.lock(c.kind)()
	doc, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	if !fn(doc) {
		return false, nil
	}
	if err := c.save(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Collection[R]) load(ctx context.Context) (record.Document[R], error) {
	var doc record.Document[R]
	if _, err := c.store.read(ctx, c.kind, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = record.Document[R]{}
	}
	assignLegacyIDs(doc)
	return doc, nil
}

func (c *Collection[R]) save(ctx context.Context, doc record.Document[R]) error {
	if doc == nil {
		doc = record.Document[R]{}
	}
	assignLegacyIDs(doc)
	return c.store.write(ctx, c.kind, doc)
}

func assignLegacyIDs[R record.Record[R]](doc record.Document[R]) {
	for owner, list := range doc {
		for i, r := range list {
			if r.RecordID() == "" {
				list[i] = r.WithID(record.LegacyID(owner, i, r.Fingerprint()))
			}
		}
	}
}
