// Package export writes one owner's notes and tasks in a portable format.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"agenda/internal/record"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Source provides the owner's records.
type Source interface {
	Notes(ctx context.Context, owner, pattern string) ([]record.Note, error)
	Tasks(ctx context.Context, owner, pattern string) ([]record.Task, error)
}

// Bundle is the exported view of one owner. Both formats share its field
// names, which differ from the keys of the stored documents.
type Bundle struct {
	Owner      string    `json:"owner" yaml:"owner"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Notes      []Note    `json:"notes" yaml:"notes"`
	Tasks      []Task    `json:"tasks" yaml:"tasks"`
}

type Note struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

type Task struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
	Due   string `json:"due" yaml:"due"`
}

// Collect gathers every note and task of owner.
func Collect(ctx context.Context, src Source, owner string, now time.Time) (Bundle, error) {
	notes, err := src.Notes(ctx, owner, "")
	if err != nil {
		return Bundle{}, fmt.Errorf("export notes: %w", err)
	}
	tasks, err := src.Tasks(ctx, owner, "")
	if err != nil {
		return Bundle{}, fmt.Errorf("export tasks: %w", err)
	}
	b := Bundle{
		Owner:      owner,
		ExportedAt: now.UTC().Truncate(time.Second),
		Notes:      make([]Note, 0, len(notes)),
		Tasks:      make([]Task, 0, len(tasks)),
	}
	for _, n := range notes {
		b.Notes = append(b.Notes, Note{ID: n.ID, Title: n.Title, Body: n.Body})
	}
	for _, t := range tasks {
		b.Tasks = append(b.Tasks, Task{ID: t.ID, Title: t.Title, Body: t.Body, Due: t.Due})
	}
	return b, nil
}

// Write encodes b to w in the given format.
func Write(w io.Writer, b Bundle, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(b)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
