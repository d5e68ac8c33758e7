package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

# Storage backend: file, memory, redis or sqlite
backend = "file"

# Directory for the file and sqlite backends (relative to project root)
data_dir = ".todo"

# Key the task list is stored under
storage_key = "tasks"

# Category for new tasks when none is chosen: Personal or Work
default_category = "Personal"

# Initial filter: All, Completed, Incomplete, Personal or Work
default_filter = "All"

# Seconds a warning stays visible in the terminal UI
notice_seconds = 2

# Log directory for terminal UI runs (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.todo/logs"

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false

[redis]
url = "redis://localhost:6379/0"
prefix = "todo:"
timeout_seconds = 5

[sqlite]
# Defaults to <data_dir>/todo.db
# path = ".todo/todo.db"
`
}
