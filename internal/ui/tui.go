// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/store"
	"github.com/nibzard/todo-go/internal/todo"
)

// DefaultNoticeDuration is how long a notice stays up unless dismissed.
const DefaultNoticeDuration = 2 * time.Second

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	filter         filter.Criterion
	noticeDuration time.Duration
	logger         *log.Logger
}

// WithFilter sets the initial filter.
func WithFilter(c filter.Criterion) TUIOption {
	return func(cfg *tuiConfig) {
		cfg.filter = c
	}
}

// WithNoticeDuration sets how long warnings stay visible.
func WithNoticeDuration(d time.Duration) TUIOption {
	return func(cfg *tuiConfig) {
		if d > 0 {
			cfg.noticeDuration = d
		}
	}
}

// WithLogger sets the logger. The terminal is owned by the UI, so it
// should write to a file.
func WithLogger(l *log.Logger) TUIOption {
	return func(cfg *tuiConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// RunTUI starts the interactive UI on s and blocks until the user quits
// or ctx is cancelled.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, s, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type noticeLevel int

const (
	noticeWarn noticeLevel = iota
	noticeError
	noticeInfo
)

type notice struct {
	text  string
	level noticeLevel
	seq   int
}

// noticeExpiredMsg clears the notice with the same sequence number.
type noticeExpiredMsg struct {
	seq int
}

type tuiModel struct {
	ctx    context.Context
	store  *store.Store
	logger *log.Logger

	input    textinput.Model
	category todo.Category
	filter   filter.Criterion
	visible  []todo.Task
	cursor   int

	notice         *notice
	noticeSeq      int
	noticeDuration time.Duration

	showHelp bool
	width    int
}

func newTUIModel(ctx context.Context, s *store.Store, opts ...TUIOption) *tuiModel {
	cfg := &tuiConfig{
		filter:         filter.All,
		noticeDuration: DefaultNoticeDuration,
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ti := textinput.New()
	ti.Placeholder = "Enter a new task"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	m := &tuiModel{
		ctx:            ctx,
		store:          s,
		logger:         cfg.logger,
		input:          ti,
		category:       s.DefaultCategory(),
		filter:         cfg.filter,
		noticeDuration: cfg.noticeDuration,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 20 {
			m.input.Width = msg.Width - 20
		}
		return m, nil
	case noticeExpiredMsg:
		if m.notice != nil && m.notice.seq == msg.seq {
			m.notice = nil
		}
		return m, nil
	case tea.KeyMsg:
		// Any key dismisses a notice and is then handled as usual.
		m.notice = nil
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.submit()
	case "tab":
		m.category = m.category.Next()
		return m, nil
	case "esc":
		if _, editing := m.store.Editing(); editing {
			m.cancelEdit()
			return m, nil
		}
		m.input.Blur()
		return m, nil
	case "down":
		if len(m.visible) > 0 {
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "a", "i", "/":
		return m, m.input.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			return m, m.input.Focus()
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case " ", "x":
		if task, ok := m.selected(); ok {
			return m, m.toggle(task.ID)
		}
	case "e", "enter":
		if task, ok := m.selected(); ok {
			return m, m.beginEdit(task.ID)
		}
	case "d", "delete":
		if task, ok := m.selected(); ok {
			return m, m.delete(task.ID)
		}
	case "tab":
		m.category = m.category.Next()
	case "f":
		m.setFilter(m.filter.Next())
	case "0", "1", "2", "3", "4":
		criteria := filter.Criteria()
		m.setFilter(criteria[int(msg.String()[0]-'0')])
	case "ctrl+r":
		m.store.Reload(m.ctx)
		m.resetInput()
		m.refresh()
		return m, m.showNotice("Reloaded", noticeInfo)
	case "esc":
		if _, editing := m.store.Editing(); editing {
			m.cancelEdit()
		}
		m.showHelp = false
	}
	return m, nil
}

// submit adds a task or commits the edit in progress.
func (m *tuiModel) submit() tea.Cmd {
	text := m.input.Value()
	if id, editing := m.store.Editing(); editing {
		if _, err := m.store.CommitEdit(m.ctx, id, text, m.category); err != nil {
			return m.fail(err)
		}
		m.logger.Debug("task updated", "task_id", id)
	} else {
		task, err := m.store.Add(m.ctx, text, m.category)
		if err != nil {
			return m.fail(err)
		}
		m.logger.Debug("task added", "task_id", task.ID)
	}
	m.resetInput()
	m.refresh()
	return nil
}

func (m *tuiModel) beginEdit(id int64) tea.Cmd {
	task, ok := m.store.BeginEdit(id)
	if !ok {
		m.refresh()
		return nil
	}
	m.input.SetValue(task.Text)
	m.input.CursorEnd()
	m.category = task.Category
	return m.input.Focus()
}

func (m *tuiModel) cancelEdit() {
	m.store.CancelEdit()
	m.resetInput()
}

func (m *tuiModel) toggle(id int64) tea.Cmd {
	defer m.refresh()
	if _, err := m.store.ToggleComplete(m.ctx, id); err != nil {
		return m.fail(err)
	}
	m.logger.Debug("task toggled", "task_id", id)
	return nil
}

func (m *tuiModel) delete(id int64) tea.Cmd {
	defer m.refresh()
	if _, err := m.store.Delete(m.ctx, id); err != nil {
		return m.fail(err)
	}
	m.logger.Debug("task deleted", "task_id", id)
	return nil
}

// resetInput clears the input and returns the category to the default.
func (m *tuiModel) resetInput() {
	m.input.Reset()
	m.category = m.store.DefaultCategory()
}

func (m *tuiModel) setFilter(c filter.Criterion) {
	m.filter = c
	m.cursor = 0
	m.refresh()
}

// refresh recomputes the visible rows and keeps the cursor in range.
func (m *tuiModel) refresh() {
	m.visible = m.store.Visible(m.filter)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return todo.Task{}, false
	}
	return m.visible[m.cursor], true
}

// fail turns err into a notice. Validation problems are warnings,
// everything else is an error.
func (m *tuiModel) fail(err error) tea.Cmd {
	if errors.Is(err, todo.ErrEmptyText) {
		return m.showNotice("No task entered", noticeWarn)
	}
	var ve *todo.ValidationError
	if errors.As(err, &ve) {
		return m.showNotice(ve.Error(), noticeWarn)
	}
	m.logger.Error("action failed", "err", err)
	return m.showNotice(err.Error(), noticeError)
}

func (m *tuiModel) showNotice(text string, level noticeLevel) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = &notice{text: text, level: level, seq: seq}
	return tea.Tick(m.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
