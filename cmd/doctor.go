package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/nibzard/todo-go/internal/appdir"
	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/persist"
)

// doctorCommand checks config, backend reachability, and the stored payload.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "Todo Doctor")
	fmt.Fprintln(stdout, "===========")
	fmt.Fprintln(stdout)

	allOK := true

	fmt.Fprintf(stdout, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Config:")
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "  ✅ File: %s\n", file)
	} else {
		fmt.Fprintln(stdout, "  ✅ File: (none, using defaults)")
	}
	fmt.Fprintf(stdout, "  ✅ Backend: %s\n", cfg.Backend)
	fmt.Fprintf(stdout, "  ✅ Storage key: %s\n", cfg.StorageKey)
	fmt.Fprintf(stdout, "  ✅ Default category: %s\n", cfg.Category())
	fmt.Fprintf(stdout, "  ✅ Default filter: %s\n", cfg.Filter())
	if *verbose {
		fields := make([]string, 0, len(cws.Sources))
		for field := range cws.Sources {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		fmt.Fprintln(stdout, "  Sources:")
		for _, field := range fields {
			fmt.Fprintf(stdout, "    %-24s %s\n", field, cws.Sources[field])
		}
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Storage: %s\n", storageLocation(cfg))
	adapter, err := persist.Open(ctx, cfg, cliLogger(cfg))
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		defer adapter.Close()
		fmt.Fprintln(stdout, "  ✅ Reachable")
		if cfg.Backend == config.BackendMemory {
			fmt.Fprintln(stdout, "  ⚠️  Tasks are not kept between runs")
		}
		if !checkStoredTasks(ctx, adapter, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(stdout)

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		fmt.Fprintf(stdout, "Log directory: %s\n", cfg.LogDir)
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "Log directory: %s\n", logDir)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			fmt.Fprintln(stdout, "  ⚠️  Not found (will be created by the TUI)")
		} else if err != nil {
			fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintln(stdout, "  ✅ OK")
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "❌ Some checks failed")
	return fmt.Errorf("doctor checks failed")
}

// checkStoredTasks validates the raw payload under the storage key.
func checkStoredTasks(ctx context.Context, adapter *persist.Adapter, verbose bool) bool {
	in, err := adapter.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Read error: %v\n", err)
		return false
	}
	if !in.Found {
		fmt.Fprintf(stdout, "  ⚠️  No tasks stored under %q yet\n", in.Key)
		return true
	}
	for _, w := range in.Result.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if !in.Result.Valid {
		fmt.Fprintf(stdout, "  ❌ Stored tasks are invalid (%d bytes), the app will start empty:\n", in.Bytes)
		for _, e := range in.Result.Errors {
			fmt.Fprintf(stdout, "     - %v\n", e)
		}
		return false
	}

	tasks := adapter.Load(ctx)
	completed, open := tasks.Counts()
	fmt.Fprintf(stdout, "  ✅ Valid: %d tasks (%d open, %d completed)\n", tasks.Len(), open, completed)
	if verbose {
		for _, t := range tasks {
			check := " "
			if t.Completed {
				check = "x"
			}
			fmt.Fprintf(stdout, "    - [%s] %d: %s (%s)\n", check, t.ID, t.Text, t.Category)
		}
	}
	return true
}

// storageLocation describes where the configured backend keeps its data.
func storageLocation(cfg *config.Config) string {
	switch cfg.Backend {
	case config.BackendMemory:
		return "memory"
	case config.BackendRedis:
		return fmt.Sprintf("redis %s (key %s%s)", cfg.Redis.URL, cfg.Redis.Prefix, cfg.StorageKey)
	case config.BackendSQLite:
		return fmt.Sprintf("sqlite %s", cfg.SQLite.Path)
	default:
		return fmt.Sprintf("file %s", appdir.DataFile(cfg.DataDir, cfg.StorageKey))
	}
}
