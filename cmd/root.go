// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/persist"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// cliLogger returns the logger used by non-interactive commands.
func cliLogger(cfg *config.Config) *log.Logger {
	return logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// openStore opens the configured backend and loads the task list from it.
// The returned adapter must be closed by the caller.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, *persist.Adapter, error) {
	adapter, err := persist.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	s := store.Open(ctx, adapter,
		store.WithDefaultCategory(cfg.Category()),
		store.WithLogger(logger),
	)
	return s, adapter, nil
}

// tuiCommand launches the TUI. Logs go to a per-run file because the
// terminal belongs to the UI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()

	logger := logging.NewFromConfig(runLog.Writer(), cfg.LogLevel, cfg.LogFormat, true, cfg.LogCaller)
	logger.Info("session started", "run_id", runLog.RunID, "backend", cfg.Backend, "key", cfg.StorageKey)

	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open failed", "err", err)
		return err
	}
	defer adapter.Close()

	err = ui.RunTUI(ctx, s,
		ui.WithFilter(cfg.Filter()),
		ui.WithNoticeDuration(cfg.NoticeDuration()),
		ui.WithLogger(logger),
	)
	logger.Info("session ended", "tasks", s.Tasks().Len(), "err", err)
	return err
}

// configCommand prints an example configuration file.
func configCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	fmt.Fprint(stdout, config.ExampleConfig())
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Todo - A to-do list manager for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch terminal UI (default command)")
	fmt.Fprintln(w, "  add [-c cat] <text> Add a task")
	fmt.Fprintln(w, "  ls [-filter name]   List tasks")
	fmt.Fprintln(w, "  toggle <id>         Toggle a task between done and open (alias: done)")
	fmt.Fprintln(w, "  edit <id>           Change the text or category of a task")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  export              Write all tasks to stdout (json, yaml, toml)")
	fmt.Fprintln(w, "  doctor              Check config, storage, and stored tasks")
	fmt.Fprintln(w, "  tail                Show the latest TUI session log")
	fmt.Fprintln(w, "  config              Print an example config file")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -c string           Category (Personal, Work), before or after the text")
	fmt.Fprintln(w, "  --                  Treat the rest as text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -text string        New task text")
	fmt.Fprintln(w, "  -c string           New category (Personal, Work)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow        Follow the log")
	fmt.Fprintln(w, "  -n int              Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list               List session logs instead")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config files: ~/.todo/todo.toml, ./todo.toml or ./.todo.toml")
	fmt.Fprintln(w, "Environment:  TODO_BACKEND, TODO_DATA_DIR, TODO_REDIS_URL, ...")
}
