package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/todo"
)

// addCommand adds a task. The non-flag arguments form the task text.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	category := fs.String("c", "", "Category (Personal, Work)")
	fs.StringVar(category, "category", "", "Category (Personal, Work)")
	words, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	task, err := s.Add(ctx, strings.Join(words, " "), todo.Category(*category))
	if err != nil {
		if errors.Is(err, todo.ErrEmptyText) {
			return errors.New("no task entered")
		}
		return err
	}
	printTask(task)
	return nil
}

// lsCommand lists the tasks matching a filter, in insertion order.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	criterion := fs.String("filter", string(cfg.Filter()), "Filter (All, Completed, Incomplete, Personal, Work)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		*criterion = remaining[0]
	}
	c, err := filter.Parse(*criterion)
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	printTaskList(s.Visible(c), c)
	return nil
}

// toggleCommand flips the completion flag of a task.
func toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	id, err := parseID("todo toggle", args)
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	tasks, err := s.ToggleComplete(ctx, id)
	if err != nil {
		return err
	}
	task, ok := tasks.Get(id)
	if !ok {
		fmt.Fprintf(stdout, "No task with id %d.\n", id)
		return nil
	}
	printTask(task)
	return nil
}

// editCommand changes the text and/or category of a task. Omitted values
// keep their current contents.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	text := fs.String("text", "", "New task text")
	category := fs.String("c", "", "New category (Personal, Work)")
	fs.StringVar(category, "category", "", "New category (Personal, Work)")

	// Accept the id before or after the flags.
	var idArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		idArg, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if idArg == "" && len(rest) > 0 {
		idArg, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}
	id, err := parseID("todo edit", []string{idArg})
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	current, ok := s.BeginEdit(id)
	if !ok {
		fmt.Fprintf(stdout, "No task with id %d.\n", id)
		return nil
	}
	newText := current.Text
	if *text != "" {
		newText = *text
	}
	newCategory := current.Category
	if *category != "" {
		newCategory = todo.Category(*category)
	}

	tasks, err := s.CommitEdit(ctx, id, newText, newCategory)
	if err != nil {
		s.CancelEdit()
		if errors.Is(err, todo.ErrEmptyText) {
			return errors.New("no task entered")
		}
		return err
	}
	if task, ok := tasks.Get(id); ok {
		printTask(task)
	}
	return nil
}

// rmCommand deletes a task. Deleting a missing task is not an error.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	id, err := parseID("todo rm", args)
	if err != nil {
		return err
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if _, ok := s.Tasks().Get(id); !ok {
		fmt.Fprintf(stdout, "No task with id %d.\n", id)
		return nil
	}
	if _, err := s.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted task %d.\n", id)
	return nil
}

// exportCommand writes the whole list to stdout.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todo export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "Output format ("+strings.Join(todo.Formats(), ", ")+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := cliLogger(cfg)
	s, adapter, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapter.Close()

	return todo.Export(stdout, s.Tasks(), *format)
}

// parseInterspersed parses flags anywhere in args and returns the other
// arguments in order. Everything after "--" is taken literally.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var literal []string
	for i, arg := range args {
		if arg == "--" {
			args, literal = args[:i], args[i+1:]
			break
		}
	}

	var words []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		i := 0
		for i < len(rest) && (rest[i] == "-" || !strings.HasPrefix(rest[i], "-")) {
			i++
		}
		words = append(words, rest[:i]...)
		if i == len(rest) {
			break
		}
		args = rest[i:]
	}
	return append(words, literal...), nil
}

// parseID parses the single task id argument of a command.
func parseID(name string, args []string) (int64, error) {
	if len(args) == 0 || args[0] == "" {
		return 0, fmt.Errorf("%s: missing task id", name)
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid task id %q", name, args[0])
	}
	return id, nil
}

// printTaskList prints tasks followed by a summary line.
func printTaskList(tasks []todo.Task, c filter.Criterion) {
	if len(tasks) == 0 {
		if c == filter.All {
			fmt.Fprintln(stdout, "No tasks yet.")
		} else {
			fmt.Fprintf(stdout, "No %s tasks.\n", strings.ToLower(string(c)))
		}
		return
	}
	for _, t := range tasks {
		printTask(t)
	}
	completed, open := todo.Collection(tasks).Counts()
	fmt.Fprintf(stdout, "\n%d open, %d completed\n", open, completed)
}

// printTask prints a single task.
func printTask(t todo.Task) {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	fmt.Fprintf(stdout, "%d %s %s (%s)\n", t.ID, check, t.Text, t.Category)
}
