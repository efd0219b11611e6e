// Package record holds the persisted record types and the document kinds
// they live in.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the on-disk format of task due dates.
const DateLayout = "2006-01-02"

// Kind names one persisted document.
type Kind string

const (
	KindUsers Kind = "users"
	KindNotes Kind = "notes"
	KindTasks Kind = "tasks"
)

// Kinds lists every document kind.
func Kinds() []Kind {
	return []Kind{KindUsers, KindNotes, KindTasks}
}

// DocumentName is the storage name of the kind. The names match the files the
// data directory has always used so existing data keeps loading.
func (k Kind) DocumentName() string {
	switch k {
	case KindUsers:
		return "usuarios"
	case KindNotes:
		return "notas"
	case KindTasks:
		return "tareas"
	default:
		return string(k)
	}
}

// KindForDocument maps a storage name back to its kind.
func KindForDocument(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if k.DocumentName() == name {
			return k, true
		}
	}
	return "", false
}

func (k Kind) Valid() bool {
	_, ok := KindForDocument(k.DocumentName())
	return ok
}

// Record is implemented by every owner-filed record type R.
type Record[R any] interface {
	RecordID() string
	WithID(id string) R
	// Fingerprint is the content used to derive ids for records stored
	// before ids existed.
	Fingerprint() string
}

// Note is a free-form note.
type Note struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"titulo"`
	Body  string `json:"contenido"`
}

func (n Note) RecordID() string { return n.ID }

func (n Note) WithID(id string) Note {
	n.ID = id
	return n
}

func (n Note) Fingerprint() string {
	return n.Title + "\x00" + n.Body
}

// Task is a note with a due date.
type Task struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"titulo"`
	Body  string `json:"contenido"`
	Due   string `json:"fecha"`
}

func (t Task) RecordID() string { return t.ID }

func (t Task) WithID(id string) Task {
	t.ID = id
	return t
}

func (t Task) Fingerprint() string {
	return t.Title + "\x00" + t.Body + "\x00" + t.Due
}

// DueOn reports whether the task is due on the calendar day of day.
func (t Task) DueOn(day time.Time) bool {
	return t.Due == day.Format(DateLayout)
}

// NewID returns a fresh random record id.
func NewID() string {
	return uuid.NewString()
}

var legacyNamespace = uuid.MustParse("6f1f4d5e-2b8a-4c1e-9a55-3c0f8d7e2a10")

// LegacyID derives a stable id for a record written without one. The same
// owner, position and content always produce the same id, so a record keeps
// its id across loads until the document is rewritten with it.
func LegacyID(owner string, pos int, fingerprint string) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", owner, pos, fingerprint)
	return uuid.NewSHA1(legacyNamespace, []byte(name)).String()
}

// Document is one owner-keyed collection.
type Document[R any] map[string][]R
