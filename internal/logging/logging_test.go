package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewRunLogger(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		logger, err := NewRunLogger(t.TempDir(), t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if logger.Dir == "" || logger.RunID == "" || logger.LogPath == "" {
			t.Errorf("expected Dir, RunID and LogPath to be set, got %+v", logger)
		}
		if filepath.Ext(logger.LogPath) != LogExt {
			t.Errorf("LogPath extension: got %q, want %q", filepath.Ext(logger.LogPath), LogExt)
		}
		if _, err := os.Stat(logger.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewRunLogger("", t.TempDir())
		if err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
		if !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		newLogDir := filepath.Join(t.TempDir(), "new-logs", "nested")

		logger, err := NewRunLogger(newLogDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(logger.Dir); err != nil {
			t.Errorf("log directory not created: %v", err)
		}
		if !strings.HasPrefix(logger.Dir, newLogDir) {
			t.Errorf("Dir %q should live under %q", logger.Dir, newLogDir)
		}
	})
}

func TestRunLoggerWriter(t *testing.T) {
	logger, err := NewRunLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	l := New(logger.Writer(), DefaultOptions())
	l.Info("task added", "id", 42)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logger.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "task added") || !strings.Contains(string(data), "id=42") {
		t.Errorf("log file content: got %q", data)
	}
}

func TestRunLoggerNil(t *testing.T) {
	var logger *RunLogger
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if logger.Writer() == nil {
		t.Error("Writer on nil should not be nil")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"my-project", "my-project"},
		{"My Project", "My_Project"},
		{"a  b", "a_b"},
		{"__x__", "x"},
		{"", "project"},
		{"   ", "project"},
		{"@@@", "project"},
		{"v1.2_final", "v1.2_final"},
	}
	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHashPath(t *testing.T) {
	a := hashPath("/home/user/project")
	b := hashPath("/home/user/project")
	c := hashPath("/home/user/other")

	if len(a) != 8 {
		t.Errorf("hash length: got %d, want 8", len(a))
	}
	if a != b {
		t.Error("hash should be deterministic")
	}
	if a == c {
		t.Error("different paths should hash differently")
	}
}

func TestRunID(t *testing.T) {
	id := runID()
	if !strings.HasSuffix(id, fmt.Sprintf("-%d", os.Getpid())) {
		t.Errorf("runID %q should end with the pid", id)
	}
	if _, err := time.Parse("20060102-150405", id[:15]); err != nil {
		t.Errorf("runID %q should start with a timestamp: %v", id, err)
	}
}

func TestFindLogDir(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()

	dir, err := FindLogDir(base, work)
	if err != nil {
		t.Fatal(err)
	}
	logger, err := NewRunLogger(base, work)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	if dir != logger.Dir {
		t.Errorf("FindLogDir: got %q, want %q", dir, logger.Dir)
	}
	if _, err := FindLogDir("", work); err == nil {
		t.Error("expected error for empty base dir")
	}
}

func TestResolveBaseDir(t *testing.T) {
	if got := resolveBaseDir("/abs/logs", "/work"); got != filepath.Clean("/abs/logs") {
		t.Errorf("absolute: got %q", got)
	}
	if got := resolveBaseDir("logs", "/work"); got != filepath.Join("/work", "logs") {
		t.Errorf("relative: got %q", got)
	}
}

func writeLog(t *testing.T, dir, name, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindSessions(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	older := writeLog(t, dir, "20260101-000000-1.log", "a\n", now.Add(-time.Hour))
	newer := writeLog(t, dir, "20260101-010000-2.log", "b\n", now)
	writeLog(t, dir, "notes.txt", "ignored", now.Add(time.Hour))

	sessions, err := FindSessions(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions: got %d, want 2", len(sessions))
	}
	if sessions[0].Path != newer || sessions[1].Path != older {
		t.Errorf("order: got %q, %q", sessions[0].Path, sessions[1].Path)
	}
	if sessions[0].RunID != "20260101-010000-2" {
		t.Errorf("RunID: got %q", sessions[0].RunID)
	}

	latest, err := FindLatestLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	if latest != newer {
		t.Errorf("FindLatestLog: got %q, want %q", latest, newer)
	}
}

func TestFindLatestLogMissingDir(t *testing.T) {
	latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if latest != "" {
		t.Errorf("expected empty path, got %q", latest)
	}
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	path := writeLog(t, dir, "run.log", strings.Join(lines, "\n")+"\n", time.Now())

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"all", 0, strings.Join(lines, "\n") + "\n"},
		{"last three", 3, "line 8\nline 9\nline 10\n"},
		{"more than available", 50, strings.Join(lines, "\n") + "\n"},
		{"last one", 1, "line 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTailLogNoTrailingNewline(t *testing.T) {
	path := writeLog(t, t.TempDir(), "run.log", "a\nb\nc", time.Now())
	var buf bytes.Buffer
	if err := TailLog(context.Background(), &buf, path, 2, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "b\nc" {
		t.Errorf("got %q, want %q", buf.String(), "b\nc")
	}
}

func TestTailLogFollowStopsOnCancel(t *testing.T) {
	path := writeLog(t, t.TempDir(), "run.log", "first\n", time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	if err := TailLog(ctx, &buf, path, 0, true); err != nil {
		t.Fatalf("TailLog follow: %v", err)
	}
	if buf.String() != "first\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTailLogMissingFile(t *testing.T) {
	err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.log"), 0, false)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"bogus":   log.InfoLevel,
		"":        log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestParseLogFormatter(t *testing.T) {
	tests := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"logfmt": log.LogfmtFormatter,
		"text":   log.TextFormatter,
		"":       log.TextFormatter,
	}
	for in, want := range tests {
		if got := ParseLogFormatter(in); got != want {
			t.Errorf("ParseLogFormatter(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(&buf, "warn", "logfmt", false, false)

	l.Info("hidden")
	l.Warn("storage slow", "backend", "redis")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "backend=redis") || !strings.Contains(out, "prefix=todo") {
		t.Errorf("logfmt output: got %q", out)
	}
}
