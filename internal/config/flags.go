package config

import (
	"flag"
)

// flagFields maps flag names to the config fields they set.
var flagFields = map[string]string{
	"backend":        "backend",
	"data-dir":       "data_dir",
	"key":            "storage_key",
	"redis-url":      "redis.url",
	"sqlite-path":    "sqlite.path",
	"category":       "default_category",
	"filter":         "default_filter",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines global flags on fs, parses args and records which
// fields were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (file, memory, redis, sqlite)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for the file and sqlite backends")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&cfg.Redis.URL, "redis-url", cfg.Redis.URL, "Redis URL for the redis backend")
	fs.StringVar(&cfg.SQLite.Path, "sqlite-path", cfg.SQLite.Path, "Database path for the sqlite backend")

	// Behavior
	fs.StringVar(&cfg.DefaultCategory, "category", cfg.DefaultCategory, "Default category for new tasks (Personal, Work)")
	fs.StringVar(&cfg.DefaultFilter, "filter", cfg.DefaultFilter, "Initial filter (All, Completed, Incomplete, Personal, Work)")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
