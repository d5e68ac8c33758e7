package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nibzard/todo-go/internal/appdir"
	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/todo"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todo/todo.toml or OS-specific config dir)
// 3. Project config file (todo.toml or .todo.toml in current directory)
// 4. .env file in the current directory
// 5. Environment variables
// 6. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return loadFrom(wd, fs, args)
}

func loadFrom(root string, fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{ProjectRoot: root}
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(root); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4. .env never overrides variables that are already set
	if err := loadDotEnv(root); err != nil {
		return nil, err
	}

	// 5. Override from environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"backend",
		"data_dir",
		"storage_key",
		"redis.url",
		"redis.prefix",
		"redis.timeout_seconds",
		"sqlite.path",
		"default_category",
		"default_filter",
		"notice_seconds",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes TOML over cfg. Only keys present in the file
// change, and each of them is attributed to source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources != nil {
		for _, key := range md.Keys() {
			if _, tracked := sources[key.String()]; tracked {
				sources[key.String()] = source
			}
		}
	}
	return nil
}

// loadDotEnv loads root/.env if it exists.
func loadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if !validBackend(cfg.Backend) {
		return fmt.Errorf("invalid backend %q, must be one of: %s", cfg.Backend, strings.Join(Backends(), ", "))
	}

	cfg.StorageKey = strings.TrimSpace(cfg.StorageKey)
	if cfg.StorageKey == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	if strings.ContainsAny(cfg.StorageKey, `/\`) || cfg.StorageKey == "." || cfg.StorageKey == ".." {
		return fmt.Errorf("invalid storage_key %q: must not contain path separators", cfg.StorageKey)
	}

	cat, err := todo.ParseCategory(cfg.DefaultCategory)
	if err != nil {
		return fmt.Errorf("default_category: %w", err)
	}
	cfg.DefaultCategory = string(cat)

	crit, err := filter.Parse(cfg.DefaultFilter)
	if err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	cfg.DefaultFilter = string(crit)

	if cfg.NoticeSeconds < 0 {
		return fmt.Errorf("notice_seconds must not be negative, got %d", cfg.NoticeSeconds)
	}

	// Make paths absolute if they're relative
	cfg.DataDir = absPath(cfg.ProjectRoot, cfg.DataDir)
	cfg.LogDir = absPath(cfg.ProjectRoot, cfg.LogDir)
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = appdir.DatabasePath(cfg.DataDir)
	} else {
		cfg.SQLite.Path = absPath(cfg.ProjectRoot, cfg.SQLite.Path)
	}

	return nil
}

func validBackend(name string) bool {
	for _, b := range Backends() {
		if b == name {
			return true
		}
	}
	return false
}
