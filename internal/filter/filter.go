// Package filter derives the visible subset of a task collection.
package filter

import (
	"fmt"
	"strings"

	"github.com/nibzard/todo-go/internal/todo"
)

// Criterion selects which tasks are visible.
type Criterion string

const (
	All        Criterion = "All"
	Completed  Criterion = "Completed"
	Incomplete Criterion = "Incomplete"
	Personal   Criterion = Criterion(todo.CategoryPersonal)
	Work       Criterion = Criterion(todo.CategoryWork)
)

// Criteria returns every criterion in selector order.
func Criteria() []Criterion {
	return []Criterion{All, Completed, Incomplete, Personal, Work}
}

// Parse resolves a criterion name case-insensitively. Empty means All.
func Parse(s string) (Criterion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	for _, c := range Criteria() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q, must be one of: All, Completed, Incomplete, Personal, Work", s)
}

// Next returns the criterion after c in selector order, wrapping around.
func (c Criterion) Next() Criterion {
	all := Criteria()
	for i, v := range all {
		if v == c {
			return all[(i+1)%len(all)]
		}
	}
	return All
}

// Match reports whether t is visible under c.
// Unknown criteria are treated as a category that no task has.
func (c Criterion) Match(t todo.Task) bool {
	switch c {
	case All, "":
		return true
	case Completed:
		return t.Completed
	case Incomplete:
		return !t.Completed
	default:
		return string(t.Category) == string(c)
	}
}

// Apply returns the tasks matching c in their original order.
// The input is never modified.
func Apply(tasks []todo.Task, c Criterion) []todo.Task {
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
