// Package appdir provides constants and utilities for the .todo directory structure.
package appdir

import "path/filepath"

const (
	// Dir is the name of the todo state directory.
	Dir = ".todo"

	// DefaultConfigFile is the config file name (project root or user dir).
	DefaultConfigFile = "todo.toml"

	// HiddenConfigFile is the alternate project config file name.
	HiddenConfigFile = ".todo.toml"

	// LogsDir is the name of the run log directory inside the user dir.
	LogsDir = "logs"

	// DatabaseFile is the default SQLite database name (inside .todo).
	DatabaseFile = "todo.db"
)

// DirPath returns the full path to the .todo directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// DataFile returns the file used by the file backend for a storage key.
func DataFile(dataDir, key string) string {
	return filepath.Join(dataDir, key+".json")
}

// LockFile returns the lock file guarding writes to a storage key.
func LockFile(dataDir, key string) string {
	return filepath.Join(dataDir, "."+key+".lock")
}

// DatabasePath returns the default SQLite database path within a data directory.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, DatabaseFile)
}

// UserConfigPath returns the preferred user config path under home.
func UserConfigPath(home string) string {
	return filepath.Join(home, Dir, DefaultConfigFile)
}
