package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
)

// tailCommand tails the latest TUI session log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List session logs instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	workDir := cfg.ProjectRoot
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, workDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		sessions, err := logging.FindSessions(logDir)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(stdout, "No log files found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(stdout, "%s  %s  %d bytes\n", s.RunID, s.ModTime.Format("2006-01-02 15:04:05"), s.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}
