package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TODO_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	track := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			track(field)
		}
	}
	setBool := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			track(field)
		}
	}
	setInt := func(env, field string, target *int) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", env, v)
		}
		*target = i
		track(field)
		return nil
	}

	setString("TODO_BACKEND", "backend", &cfg.Backend)
	setString("TODO_DATA_DIR", "data_dir", &cfg.DataDir)
	setString("TODO_STORAGE_KEY", "storage_key", &cfg.StorageKey)
	setString("TODO_REDIS_URL", "redis.url", &cfg.Redis.URL)
	setString("TODO_REDIS_PREFIX", "redis.prefix", &cfg.Redis.Prefix)
	if err := setInt("TODO_REDIS_TIMEOUT", "redis.timeout_seconds", &cfg.Redis.TimeoutSeconds); err != nil {
		return err
	}
	setString("TODO_SQLITE_PATH", "sqlite.path", &cfg.SQLite.Path)
	setString("TODO_DEFAULT_CATEGORY", "default_category", &cfg.DefaultCategory)
	setString("TODO_DEFAULT_FILTER", "default_filter", &cfg.DefaultFilter)
	if err := setInt("TODO_NOTICE_SECONDS", "notice_seconds", &cfg.NoticeSeconds); err != nil {
		return err
	}

	// Logging configuration
	setString("TODO_LOG_DIR", "log_dir", &cfg.LogDir)
	setString("TODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("TODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("TODO_LOG_CALLER", "log_caller", &cfg.LogCaller)
	return nil
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
