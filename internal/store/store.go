// Package store holds the authoritative task list and applies user actions
// to it. Every successful mutation is persisted before it becomes visible.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/todo"
)

// Persister loads and saves the whole task list.
type Persister interface {
	Load(ctx context.Context) todo.Collection
	Save(ctx context.Context, tasks todo.Collection) error
}

// Store is the task list plus the edit-mode state of one session.
type Store struct {
	mu        sync.Mutex
	persister Persister
	tasks     todo.Collection
	lastID    int64
	editID    int64
	editing   bool

	now             func() time.Time
	defaultCategory todo.Category
	logger          *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to mint ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultCategory sets the category used when Add gets none.
func WithDefaultCategory(c todo.Category) Option {
	return func(s *Store) {
		if c.Valid() {
			s.defaultCategory = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a store holding whatever p loads.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister:       p,
		now:             time.Now,
		defaultCategory: todo.CategoryPersonal,
		logger:          logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.replace(p.Load(ctx))
	return s
}

func (s *Store) replace(tasks todo.Collection) {
	if tasks == nil {
		tasks = todo.Collection{}
	}
	s.tasks = tasks
	if max := tasks.MaxID(); max > s.lastID {
		s.lastID = max
	}
}

// Reload replaces the in-memory list with the stored one and ends edit mode.
func (s *Store) Reload(ctx context.Context) todo.Collection {
	tasks := s.persister.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(tasks)
	s.editing = false
	s.editID = 0
	return s.tasks.Clone()
}

// nextID returns the current time in milliseconds, bumped past the last
// issued id so ids stay unique and increasing.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

// commit persists next and, only on success, makes it the current list.
func (s *Store) commit(ctx context.Context, next todo.Collection) error {
	if err := s.persister.Save(ctx, next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *Store) category(c todo.Category) (todo.Category, error) {
	if c == "" {
		return s.defaultCategory, nil
	}
	return todo.ParseCategory(string(c))
}

// Add appends a new incomplete task. Empty or whitespace-only text is
// rejected with a *todo.ValidationError wrapping todo.ErrEmptyText.
// An empty category means the default category.
func (s *Store) Add(ctx context.Context, text string, category todo.Category) (todo.Task, error) {
	text, err := todo.NormalizeText(text)
	if err != nil {
		return todo.Task{}, err
	}
	cat, err := s.category(category)
	if err != nil {
		return todo.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := todo.Task{
		ID:       s.nextID(),
		Text:     text,
		Category: cat,
	}
	if err := s.commit(ctx, s.tasks.Append(task)); err != nil {
		return todo.Task{}, err
	}
	s.lastID = task.ID
	s.logger.Debug("task added", "task_id", task.ID, "count", s.tasks.Len())
	return task, nil
}

// Delete removes the task with id. A missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) (todo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.tasks.Remove(id)
	if !ok {
		s.logger.Debug("delete: no such task", "task_id", id)
		return s.tasks.Clone(), nil
	}
	if err := s.commit(ctx, next); err != nil {
		return s.tasks.Clone(), err
	}
	s.logger.Debug("task deleted", "task_id", id, "count", s.tasks.Len())
	return s.tasks.Clone(), nil
}

// ToggleComplete flips the completion flag of id. A missing id is a no-op.
func (s *Store) ToggleComplete(ctx context.Context, id int64) (todo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.tasks.Toggle(id)
	if !ok {
		s.logger.Debug("toggle: no such task", "task_id", id)
		return s.tasks.Clone(), nil
	}
	if err := s.commit(ctx, next); err != nil {
		return s.tasks.Clone(), err
	}
	s.logger.Debug("task toggled", "task_id", id)
	return s.tasks.Clone(), nil
}

// BeginEdit enters edit mode for id and returns the task so its text and
// category can be shown for editing. It reports false for a missing id.
func (s *Store) BeginEdit(id int64) (todo.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks.Get(id)
	if !ok {
		return todo.Task{}, false
	}
	s.editID = id
	s.editing = true
	return task, true
}

// CommitEdit replaces text and category of id, keeping id and completion,
// and ends edit mode. Empty text is rejected and edit mode stays active.
// A missing id is a no-op that still ends edit mode.
func (s *Store) CommitEdit(ctx context.Context, id int64, text string, category todo.Category) (todo.Collection, error) {
	text, err := todo.NormalizeText(text)
	if err != nil {
		return s.Tasks(), err
	}
	cat, err := s.category(category)
	if err != nil {
		return s.Tasks(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.tasks.Replace(id, text, cat)
	if !ok {
		s.endEdit()
		s.logger.Debug("edit: no such task", "task_id", id)
		return s.tasks.Clone(), nil
	}
	if err := s.commit(ctx, next); err != nil {
		return s.tasks.Clone(), err
	}
	s.endEdit()
	s.logger.Debug("task updated", "task_id", id)
	return s.tasks.Clone(), nil
}

// CancelEdit leaves edit mode without changes.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endEdit()
}

func (s *Store) endEdit() {
	s.editing = false
	s.editID = 0
}

// Editing returns the id being edited, if any.
func (s *Store) Editing() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID, s.editing
}

// Tasks returns a copy of the full list in insertion order.
func (s *Store) Tasks() todo.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Clone()
}

// Visible returns the tasks matching c.
func (s *Store) Visible(c filter.Criterion) []todo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(s.tasks, c)
}

// DefaultCategory returns the category Add uses when given none.
func (s *Store) DefaultCategory() todo.Category {
	return s.defaultCategory
}
