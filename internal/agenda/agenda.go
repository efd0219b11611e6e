// Package agenda is the set of note, task and calendar operations the hosts
// call. Input is validated here before the record store is touched.
package agenda

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"agenda/internal/record"
	"agenda/internal/storage"
	"agenda/internal/validation"
)

type Service struct {
	notes  *storage.Collection[record.Note]
	tasks  *storage.Collection[record.Task]
	logger *slog.Logger
}

func NewService(store *storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		notes:  store.Notes(),
		tasks:  store.Tasks(),
		logger: logger.With("component", "agenda"),
	}
}

// TaskLister exposes the tasks collection to the reminder scheduler.
func (s *Service) TaskLister() *storage.Collection[record.Task] {
	return s.tasks
}

// AddNote stores a new note at the end of the owner's list.
func (s *Service) AddNote(ctx context.Context, owner, title, body string) (record.Note, error) {
	n, err := newNote(owner, title, body)
	if err != nil {
		return record.Note{}, err
	}
	n, err = s.notes.Append(ctx, owner, n)
	if err != nil {
		return record.Note{}, err
	}
	s.logger.Debug("note added", "owner", owner, "id", n.ID)
	return n, nil
}

// EditNote replaces title and body of the note with the given id.
func (s *Service) EditNote(ctx context.Context, owner, id, title, body string) (record.Note, error) {
	n, err := newNote(owner, title, body)
	if err != nil {
		return record.Note{}, err
	}
	n.ID = id
	if err := s.notes.Replace(ctx, owner, id, n); err != nil {
		return record.Note{}, err
	}
	return n, nil
}

func (s *Service) DeleteNote(ctx context.Context, owner, id string) error {
	return s.notes.Remove(ctx, owner, id)
}

func (s *Service) Note(ctx context.Context, owner, id string) (record.Note, error) {
	return s.notes.Find(ctx, owner, id)
}

// Notes lists the owner's notes whose title matches pattern. An empty
// pattern matches everything.
func (s *Service) Notes(ctx context.Context, owner, pattern string) ([]record.Note, error) {
	match, err := titleMatcher(pattern)
	if err != nil {
		return nil, err
	}
	list, err := s.notes.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]record.Note, 0, len(list))
	for _, n := range list {
		if match(n.Title) {
			out = append(out, n)
		}
	}
	return out, nil
}

// AddTask stores a new task due on the YYYY-MM-DD date due.
func (s *Service) AddTask(ctx context.Context, owner, title, body, due string) (record.Task, error) {
	t, err := newTask(owner, title, body, due)
	if err != nil {
		return record.Task{}, err
	}
	t, err = s.tasks.Append(ctx, owner, t)
	if err != nil {
		return record.Task{}, err
	}
	s.logger.Debug("task added", "owner", owner, "id", t.ID, "due", t.Due)
	return t, nil
}

// EditTask replaces the fields of the task with the given id.
func (s *Service) EditTask(ctx context.Context, owner, id, title, body, due string) (record.Task, error) {
	t, err := newTask(owner, title, body, due)
	if err != nil {
		return record.Task{}, err
	}
	t.ID = id
	if err := s.tasks.Replace(ctx, owner, id, t); err != nil {
		return record.Task{}, err
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, owner, id string) error {
	return s.tasks.Remove(ctx, owner, id)
}

func (s *Service) Task(ctx context.Context, owner, id string) (record.Task, error) {
	return s.tasks.Find(ctx, owner, id)
}

// Tasks lists the owner's tasks whose title matches pattern.
func (s *Service) Tasks(ctx context.Context, owner, pattern string) ([]record.Task, error) {
	match, err := titleMatcher(pattern)
	if err != nil {
		return nil, err
	}
	list, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]record.Task, 0, len(list))
	for _, t := range list {
		if match(t.Title) {
			out = append(out, t)
		}
	}
	return out, nil
}

// TasksOn lists the owner's tasks due on the calendar day of day.
func (s *Service) TasksOn(ctx context.Context, owner string, day time.Time) ([]record.Task, error) {
	list, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	var out []record.Task
	for _, t := range list {
		if t.DueOn(day) {
			out = append(out, t)
		}
	}
	return out, nil
}

// DueDays counts the owner's tasks per day of the given month.
func (s *Service) DueDays(ctx context.Context, owner string, year int, month time.Month) (map[int]int, error) {
	list, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	days := make(map[int]int)
	for _, t := range list {
		d, err := time.Parse(record.DateLayout, t.Due)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			days[d.Day()]++
		}
	}
	return days, nil
}

// Upcoming lists tasks due from day on, earliest first. Tasks with
// unreadable dates are left out.
func (s *Service) Upcoming(ctx context.Context, owner string, day time.Time) ([]record.Task, error) {
	list, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	from := day.Format(record.DateLayout)
	var out []record.Task
	for _, t := range list {
		if _, err := time.Parse(record.DateLayout, t.Due); err != nil {
			continue
		}
		if t.Due >= from {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	return out, nil
}

func newNote(owner, title, body string) (record.Note, error) {
	if err := validateOwner(owner); err != nil {
		return record.Note{}, err
	}
	title = strings.TrimSpace(title)
	if err := validation.ValidateTitle(title); err != nil {
		return record.Note{}, err
	}
	return record.Note{Title: title, Body: strings.TrimSpace(body)}, nil
}

func newTask(owner, title, body, due string) (record.Task, error) {
	n, err := newNote(owner, title, body)
	if err != nil {
		return record.Task{}, err
	}
	d, err := validation.ParseDate("due", due)
	if err != nil {
		return record.Task{}, err
	}
	return record.Task{Title: n.Title, Body: n.Body, Due: d.Format(record.DateLayout)}, nil
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return &validation.Error{Field: "owner", Reason: "cannot be empty"}
	}
	return nil
}

// titleMatcher builds a case-insensitive title filter. Patterns without glob
// metacharacters match as substrings.
func titleMatcher(pattern string) (func(string) bool, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	// Titles are not paths. '/' is swapped out on both sides so it matches
	// like any other character.
	pattern = unslash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, &validation.Error{Field: "filter", Reason: "is not a valid pattern"}
	}
	return func(title string) bool {
		ok, _ := doublestar.Match(pattern, unslash(strings.ToLower(title)))
		return ok
	}, nil
}

func unslash(s string) string {
	return strings.ReplaceAll(s, "/", "\x00")
}
