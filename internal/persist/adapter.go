package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/todo"
)

// Adapter loads and saves the whole task list under one key.
type Adapter struct {
	backend Backend
	key     string
	logger  *log.Logger
}

// NewAdapter binds backend to key. A nil logger discards output.
func NewAdapter(backend Backend, key string, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{
		backend: backend,
		key:     key,
		logger:  logger.With("backend", backend.Name(), "key", key),
	}
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Backend returns the underlying backend.
func (a *Adapter) Backend() Backend { return a.backend }

// Load returns the stored list. A missing key yields an empty list, and so
// does a payload that cannot be parsed; the latter is logged as a warning
// so the user can recover the raw value. Records that parse but break a
// rule for new tasks, such as empty text, are loaded unchanged.
func (a *Adapter) Load(ctx context.Context) todo.Collection {
	data, err := a.backend.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		a.logger.Debug("no stored tasks, starting empty")
		return todo.Collection{}
	}
	if err != nil {
		a.logger.Warn("reading stored tasks failed, starting empty", "err", err)
		return todo.Collection{}
	}

	tasks, err := todo.Decode(data)
	if err != nil {
		a.logger.Warn("stored tasks are invalid, starting empty", "err", err)
		return todo.Collection{}
	}
	for _, w := range todo.Validate(data).Warnings {
		a.logger.Warn("stored task kept as is", "problem", w)
	}
	a.logger.Debug("loaded tasks", "count", tasks.Len())
	return tasks
}

// Save replaces the stored list with tasks. Errors wrap ErrSave.
func (a *Adapter) Save(ctx context.Context, tasks todo.Collection) error {
	data, err := todo.Encode(tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := a.backend.Set(ctx, a.key, data); err != nil {
		a.logger.Error("saving tasks failed", "err", err)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	a.logger.Debug("saved tasks", "count", tasks.Len(), "bytes", len(data))
	return nil
}

// Inspection describes the raw stored payload.
type Inspection struct {
	Backend string
	Key     string
	Found   bool
	Bytes   int
	Result  *todo.ValidationResult
}

// Inspect reads the stored payload without discarding anything, for
// diagnostics. Backend errors other than a missing key are returned.
func (a *Adapter) Inspect(ctx context.Context) (*Inspection, error) {
	in := &Inspection{Backend: a.backend.Name(), Key: a.key}
	data, err := a.backend.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return in, nil
	}
	if err != nil {
		return nil, err
	}
	in.Found = true
	in.Bytes = len(data)
	in.Result = todo.Validate(data)
	return in, nil
}

// Close closes the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}
