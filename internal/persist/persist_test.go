package persist

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/todo"
)

// testBackendContract exercises the behavior every backend shares.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "tasks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "tasks", []byte(`[]`)))
	got, err := b.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, b.Set(ctx, "tasks", []byte(`[{"id":1}]`)))
	got, err = b.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got), "Set should replace the previous value")

	_, err = b.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound, "keys are independent")

	require.NoError(t, b.Set(ctx, "other", []byte("x")))
	got, err = b.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	testBackendContract(t, b)

	t.Run("values are copied", func(t *testing.T) {
		ctx := context.Background()
		value := []byte("abc")
		require.NoError(t, b.Set(ctx, "k", value))
		value[0] = 'z'

		got, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))

		got[1] = 'z'
		again, _ := b.Get(ctx, "k")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, b.Set(ctx, "k", nil), context.Canceled)
		_, err := b.Get(ctx, "k")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	b := NewFileBackend(dir)
	testBackendContract(t, b)

	assert.Equal(t, filepath.Join(dir, "tasks.json"), b.Path("tasks"))
	data, err := os.ReadFile(b.Path("tasks"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
	_, err = os.Stat(filepath.Join(dir, ".tasks.lock"))
	assert.NoError(t, err, "lock file should exist after a write")
}

func TestFileBackendSharedAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewFileBackend(dir).Set(ctx, "tasks", []byte("one")))
	got, err := NewFileBackend(dir).Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.db")
	ctx := context.Background()

	b, err := NewSQLiteBackend(ctx, path)
	require.NoError(t, err)
	testBackendContract(t, b)
	require.NoError(t, b.Close())

	reopened, err := NewSQLiteBackend(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got), "value should survive reopening")
}

func TestNewRedisBackendInvalidURL(t *testing.T) {
	_, err := NewRedisBackend(context.Background(), "invalid://url", "todo:", 0)
	assert.ErrorContains(t, err, "invalid Redis URL")
}

// mockBackend lets tests inject backend failures.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBackend) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *mockBackend) Close() error { return nil }

func sampleTasks() todo.Collection {
	return todo.Collection{
		{ID: 1, Text: "Buy milk", Category: todo.CategoryPersonal},
		{ID: 2, Text: "Ship release", Category: todo.CategoryWork, Completed: true},
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	a := NewAdapter(backend, "tasks", nil)

	assert.Empty(t, a.Load(ctx), "missing key loads as empty")
	assert.NotNil(t, a.Load(ctx))

	require.NoError(t, a.Save(ctx, sampleTasks()))
	assert.Equal(t, sampleTasks(), a.Load(ctx))

	raw, err := backend.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"text": "Buy milk"`)

	require.NoError(t, a.Save(ctx, todo.Collection{}))
	assert.Empty(t, a.Load(ctx))
}

func TestAdapterLoadDiscardsUnreadablePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{broken`},
		{"wrong shape", `{"tasks": []}`},
		{"wrong field type", `[{"id": 1, "text": "a", "category": "Work", "completed": "yes"}]`},
		{"string id", `[{"id": "1", "text": "a", "category": "Work", "completed": false}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := NewMemoryBackend()
			require.NoError(t, backend.Set(ctx, "tasks", []byte(tt.payload)))

			var buf bytes.Buffer
			a := NewAdapter(backend, "tasks", logging.New(&buf, logging.DefaultOptions()))

			tasks := a.Load(ctx)
			assert.NotNil(t, tasks)
			assert.Empty(t, tasks)
			assert.Contains(t, buf.String(), "invalid")

			raw, err := backend.Get(ctx, "tasks")
			require.NoError(t, err)
			assert.Equal(t, tt.payload, string(raw), "load must not overwrite the stored value")
		})
	}
}

func TestAdapterLoadKeepsRecordsThatBreakInputRules(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    todo.Collection
	}{
		{
			name:    "empty text",
			payload: `[{"id": 1, "text": "Buy milk", "category": "Personal", "completed": false},{"id": 2, "text": "", "category": "Work", "completed": true}]`,
			want: todo.Collection{
				{ID: 1, Text: "Buy milk", Category: todo.CategoryPersonal},
				{ID: 2, Text: "", Category: todo.CategoryWork, Completed: true},
			},
		},
		{
			name:    "extra field",
			payload: `[{"id": 1, "text": "Buy milk", "category": "Personal", "completed": false, "note": "2%"}]`,
			want:    todo.Collection{{ID: 1, Text: "Buy milk", Category: todo.CategoryPersonal}},
		},
		{
			name:    "unknown category",
			payload: `[{"id": 1, "text": "Water plants", "category": "Home", "completed": false}]`,
			want:    todo.Collection{{ID: 1, Text: "Water plants", Category: "Home"}},
		},
		{
			name:    "duplicate ids",
			payload: `[{"id": 1, "text": "a", "category": "Work", "completed": false},{"id": 1, "text": "b", "category": "Work", "completed": false}]`,
			want: todo.Collection{
				{ID: 1, Text: "a", Category: todo.CategoryWork},
				{ID: 1, Text: "b", Category: todo.CategoryWork},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := NewMemoryBackend()
			require.NoError(t, backend.Set(ctx, "tasks", []byte(tt.payload)))

			var buf bytes.Buffer
			a := NewAdapter(backend, "tasks", logging.New(&buf, logging.DefaultOptions()))

			tasks := a.Load(ctx)
			assert.Equal(t, tt.want, tasks)
			assert.Contains(t, buf.String(), "stored task kept as is")

			// The next save carries the loaded records forward.
			next := tasks.Append(todo.Task{ID: 99, Text: "New", Category: todo.CategoryPersonal})
			require.NoError(t, a.Save(ctx, next))
			assert.Equal(t, next, a.Load(ctx))
		})
	}
}

func TestAdapterLoadBackendError(t *testing.T) {
	m := new(mockBackend)
	m.On("Get", "tasks").Return(nil, errors.New("connection refused"))

	var buf bytes.Buffer
	a := NewAdapter(m, "tasks", logging.New(&buf, logging.DefaultOptions()))

	assert.Empty(t, a.Load(context.Background()))
	assert.Contains(t, buf.String(), "connection refused")
	m.AssertExpectations(t)
}

func TestAdapterSaveError(t *testing.T) {
	m := new(mockBackend)
	boom := errors.New("disk full")
	m.On("Set", "tasks", mock.Anything).Return(boom)

	a := NewAdapter(m, "tasks", nil)
	err := a.Save(context.Background(), sampleTasks())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSave)
	assert.ErrorIs(t, err, boom)
	m.AssertExpectations(t)
}

func TestAdapterInspect(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	a := NewAdapter(backend, "tasks", nil)

	in, err := a.Inspect(ctx)
	require.NoError(t, err)
	assert.False(t, in.Found)
	assert.Equal(t, "memory", in.Backend)

	require.NoError(t, backend.Set(ctx, "tasks", []byte(`[{"id": 0}]`)))
	in, err = a.Inspect(ctx)
	require.NoError(t, err)
	assert.True(t, in.Found)
	require.NotNil(t, in.Result)
	assert.False(t, in.Result.Valid)

	require.NoError(t, backend.Set(ctx, "tasks", []byte(`[{"id": 1, "text": "", "category": "Work", "completed": false}]`)))
	in, err = a.Inspect(ctx)
	require.NoError(t, err)
	assert.True(t, in.Result.Valid)
	require.Len(t, in.Result.Warnings, 1)
	assert.Contains(t, in.Result.Warnings[0], "[0].text")

	require.NoError(t, a.Save(ctx, sampleTasks()))
	in, err = a.Inspect(ctx)
	require.NoError(t, err)
	assert.True(t, in.Result.Valid)
	assert.Positive(t, in.Bytes)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendMemory, "memory"},
		{config.BackendFile, "file"},
		{config.BackendSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{
				Backend:    tt.backend,
				DataDir:    dir,
				StorageKey: "tasks",
				SQLite:     config.SQLiteConfig{Path: filepath.Join(dir, "todo.db")},
			}
			a, err := Open(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, tt.want, a.Backend().Name())
			assert.Equal(t, "tasks", a.Key())
			require.NoError(t, a.Save(context.Background(), sampleTasks()))
			assert.Equal(t, sampleTasks(), a.Load(context.Background()))
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(context.Background(), &config.Config{Backend: "etcd"}, nil)
		assert.ErrorContains(t, err, "unknown backend")
	})
}
