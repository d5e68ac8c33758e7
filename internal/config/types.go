package config

import (
	"time"

	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/todo"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Backends returns the supported storage backends.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendRedis, BackendSQLite}
}

// Default values.
const (
	DefaultBackend       = BackendFile
	DefaultDataDir       = ".todo"
	DefaultStorageKey    = "tasks"
	DefaultRedisURL      = "redis://localhost:6379/0"
	DefaultRedisPrefix   = "todo:"
	DefaultRedisTimeout  = 5
	DefaultLogDir        = "~/.todo/logs"
	DefaultNoticeSeconds = 2
)

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	Backend    string       `toml:"backend"`
	DataDir    string       `toml:"data_dir"`
	StorageKey string       `toml:"storage_key"`
	Redis      RedisConfig  `toml:"redis"`
	SQLite     SQLiteConfig `toml:"sqlite"`

	// Behavior
	DefaultCategory string `toml:"default_category"`
	DefaultFilter   string `toml:"default_filter"`
	NoticeSeconds   int    `toml:"notice_seconds"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	URL            string `toml:"url"`
	Prefix         string `toml:"prefix"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SQLiteConfig configures the sqlite backend.
type SQLiteConfig struct {
	Path string `toml:"path"` // Defaults to <data_dir>/todo.db
}

// Category returns the category new tasks get when none is chosen.
func (c *Config) Category() todo.Category {
	cat, err := todo.ParseCategory(c.DefaultCategory)
	if err != nil {
		return todo.CategoryPersonal
	}
	return cat
}

// Filter returns the initial view filter.
func (c *Config) Filter() filter.Criterion {
	crit, err := filter.Parse(c.DefaultFilter)
	if err != nil {
		return filter.All
	}
	return crit
}

// NoticeDuration returns how long warnings stay visible in the TUI.
func (c *Config) NoticeDuration() time.Duration {
	if c.NoticeSeconds <= 0 {
		return DefaultNoticeSeconds * time.Second
	}
	return time.Duration(c.NoticeSeconds) * time.Second
}

// RedisTimeout returns the dial and ping timeout for the redis backend.
func (c *Config) RedisTimeout() time.Duration {
	if c.Redis.TimeoutSeconds <= 0 {
		return DefaultRedisTimeout * time.Second
	}
	return time.Duration(c.Redis.TimeoutSeconds) * time.Second
}
