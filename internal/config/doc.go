// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.todo/todo.toml or OS-specific config directory)
// 3. Project config file (todo.toml or .todo.toml in the project root)
// 4. A .env file in the project root (never overrides variables already set)
// 5. Environment variables (TODO_*)
// 6. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.todo/todo.toml (preferred)
// - Windows: %APPDATA%\todo\todo.toml
// - macOS: ~/Library/Application Support/todo/todo.toml
// - Linux/BSD: $XDG_CONFIG_HOME/todo/todo.toml or ~/.config/todo/todo.toml
//
// Project-level config locations (overrides user config):
// - ./todo.toml (preferred)
// - ./.todo.toml
package config
