package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/nibzard/todo-go/internal/appdir"
)

const (
	filePerm       = 0o644
	dirPerm        = 0o755
	lockRetryDelay = 25 * time.Millisecond
)

// FileBackend stores each key as <dir>/<key>.json. Writers from different
// processes are serialized by an flock on <dir>/.<key>.lock.
type FileBackend struct {
	dir string
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a backend rooted at dir. The directory is created
// on the first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (f *FileBackend) Name() string { return "file" }

// Path returns the data file for key.
func (f *FileBackend) Path(key string) string {
	return appdir.DataFile(f.dir, key)
}

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	path := f.Path(key)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	lock := flock.New(appdir.LockFile(f.dir, key))
	// A read-only data dir cannot hold the lock file; read unlocked then.
	locked, err := lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if locked {
		defer func() { _ = lock.Unlock() }()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (f *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.dir, dirPerm); err != nil {
		return fmt.Errorf("create data dir %s: %w", f.dir, err)
	}

	lock := flock.New(appdir.LockFile(f.dir, key))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.Path(key), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", f.Path(key))
	}
	defer func() { _ = lock.Unlock() }()

	return atomicWrite(f.Path(key), value)
}

func (f *FileBackend) Close() error { return nil }

// atomicWrite writes data next to path and renames it into place, so
// readers see either the old or the new content.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
