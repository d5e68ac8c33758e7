package todo

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups tasks.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
)

// Categories returns the valid categories in display order.
func Categories() []Category {
	return []Category{CategoryPersonal, CategoryWork}
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", &ValidationError{
		Path: "category",
		Err:  fmt.Errorf("%w: %q, must be one of: Personal, Work", ErrInvalidCategory, s),
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryPersonal || c == CategoryWork
}

// Next returns the category after c, wrapping around.
func (c Category) Next() Category {
	all := Categories()
	for i, cat := range all {
		if cat == c {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Task is a single to-do item.
type Task struct {
	ID        int64    `json:"id" yaml:"id" toml:"id"`
	Text      string   `json:"text" yaml:"text" toml:"text"`
	Category  Category `json:"category" yaml:"category" toml:"category"`
	Completed bool     `json:"completed" yaml:"completed" toml:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t Task) IsZero() bool {
	return t.ID == 0
}

var (
	// ErrEmptyText is returned when a task has no text.
	ErrEmptyText = errors.New("no task entered")
	// ErrInvalidCategory is returned for unknown categories.
	ErrInvalidCategory = errors.New("invalid category")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NormalizeText trims text and rejects it when nothing is left.
func NormalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &ValidationError{Path: "text", Err: ErrEmptyText}
	}
	return trimmed, nil
}

// Collection is an insertion-ordered list of tasks.
type Collection []Task

// Len returns the number of tasks.
func (c Collection) Len() int {
	return len(c)
}

// Clone returns a copy that shares no memory with c.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Index returns the position of the task with id, or -1.
func (c Collection) Index(id int64) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the task with id.
func (c Collection) Get(id int64) (Task, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return Task{}, false
}

// MaxID returns the largest id in the collection, or 0 when empty.
func (c Collection) MaxID() int64 {
	var max int64
	for _, t := range c {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// Append returns a new collection with t at the end.
func (c Collection) Append(t Task) Collection {
	out := make(Collection, len(c), len(c)+1)
	copy(out, c)
	return append(out, t)
}

// Remove returns a new collection without the task with id.
// The second result is false when no task matched.
func (c Collection) Remove(id int64) (Collection, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...), true
}

// Toggle returns a new collection with the completion of id flipped.
func (c Collection) Toggle(id int64) (Collection, bool) {
	return c.update(id, func(t *Task) {
		t.Completed = !t.Completed
	})
}

// Replace returns a new collection with text and category of id replaced.
// ID and completion are kept.
func (c Collection) Replace(id int64, text string, category Category) (Collection, bool) {
	return c.update(id, func(t *Task) {
		t.Text = text
		t.Category = category
	})
}

func (c Collection) update(id int64, updater func(*Task)) (Collection, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	out := c.Clone()
	updater(&out[i])
	return out, true
}

// Validate reports records that break the rules new tasks are held to.
// Stored data is loaded regardless; these are diagnostics.
func (c Collection) Validate() []error {
	var errs []error
	seen := make(map[int64]int, len(c))
	for i, t := range c {
		path := fmt.Sprintf("[%d]", i)
		if t.ID <= 0 {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("must be positive, got %d", t.ID),
			})
		} else if prev, ok := seen[t.ID]; ok {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also at [%d])", t.ID, prev),
			})
		} else {
			seen[t.ID] = i
		}
		if strings.TrimSpace(t.Text) == "" {
			errs = append(errs, &ValidationError{Path: path + ".text", Err: ErrEmptyText})
		}
		if !t.Category.Valid() {
			errs = append(errs, &ValidationError{
				Path: path + ".category",
				Err:  fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category),
			})
		}
	}
	return errs
}

// Counts returns how many tasks are completed and how many are open.
func (c Collection) Counts() (completed, open int) {
	for _, t := range c {
		if t.Completed {
			completed++
		} else {
			open++
		}
	}
	return completed, open
}
