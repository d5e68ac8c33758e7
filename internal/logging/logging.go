// Package logging configures leveled loggers and manages per-session log files.
package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogExt is the extension of session log files.
const LogExt = ".log"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// RunLogger owns the log file of one interactive session.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
}

// NewRunLogger creates the per-project log directory under baseDir and
// opens a fresh log file in it.
func NewRunLogger(baseDir, workDir string) (*RunLogger, error) {
	logDir, err := FindLogDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID()
	logPath := filepath.Join(logDir, id+LogExt)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunLogger{
		Dir:     logDir,
		RunID:   id,
		LogPath: logPath,
		file:    file,
	}, nil
}

// Writer returns the underlying log file writer.
func (r *RunLogger) Writer() io.Writer {
	if r == nil || r.file == nil {
		return io.Discard
	}
	return r.file
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// FindLogDir returns the log directory for workDir without creating it.
func FindLogDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	projectRoot := resolveProjectRoot(resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(projectRoot)), nil
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

// resolveProjectRoot prefers the enclosing git checkout so every
// subdirectory of a project shares one log directory.
func resolveProjectRoot(workDir string) string {
	if workDir == "" {
		return "."
	}
	if _, err := exec.LookPath("git"); err == nil {
		cmd := exec.Command("git", "-C", workDir, "rev-parse", "--show-toplevel")
		if output, err := cmd.Output(); err == nil {
			if root := strings.TrimSpace(string(output)); root != "" {
				return root
			}
		}
	}
	return workDir
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

// slugify keeps letters, digits, dots, dashes and underscores; every other
// run of characters becomes a single underscore.
func slugify(input string) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(input, "_"), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// Session describes one session log file.
type Session struct {
	RunID   string
	Path    string
	ModTime time.Time
	Size    int64
}

// FindSessions lists the session logs in logDir, newest first.
// A missing directory yields no sessions and no error.
func FindSessions(logDir string) ([]Session, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	var sessions []Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, LogExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, Session{
			RunID:   strings.TrimSuffix(name, LogExt),
			Path:    filepath.Join(logDir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].ModTime.Equal(sessions[j].ModTime) {
			return sessions[i].RunID > sessions[j].RunID
		}
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// FindLatestLog returns the newest session log in logDir, or "" if none.
func FindLatestLog(logDir string) (string, error) {
	sessions, err := FindSessions(logDir)
	if err != nil || len(sessions) == 0 {
		return "", err
	}
	return sessions[0].Path, nil
}
