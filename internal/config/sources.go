package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/todo-go/internal/appdir"
)

// findProjectConfigFile looks for a config file in dir.
func findProjectConfigFile(dir string) string {
	names := []string{appdir.DefaultConfigFile, appdir.HiddenConfigFile}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.todo/todo.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := appdir.UserConfigPath(home)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "todo", appdir.DefaultConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.DataDir = DefaultDataDir
	cfg.StorageKey = DefaultStorageKey
	cfg.Redis = RedisConfig{
		URL:            DefaultRedisURL,
		Prefix:         DefaultRedisPrefix,
		TimeoutSeconds: DefaultRedisTimeout,
	}
	cfg.SQLite = SQLiteConfig{}
	cfg.DefaultCategory = "Personal"
	cfg.DefaultFilter = "All"
	cfg.NoticeSeconds = DefaultNoticeSeconds

	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
