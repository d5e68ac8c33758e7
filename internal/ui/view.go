package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todo-go/internal/filter"
	"github.com/nibzard/todo-go/internal/todo"
)

const title = "Todo App"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	noticeStyles = map[noticeLevel]lipgloss.Style{
		noticeWarn:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		noticeError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		noticeInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.input.Focused())
		return b.String()
	}

	m.writeForm(&b)
	m.writeNotice(&b)
	m.writeFilter(&b)
	m.writeTasks(&b)
	writeFooter(&b, m.input.Focused())
	return b.String()
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	b.WriteString(m.input.View() + "\n\n")

	var cats []string
	for _, c := range todo.Categories() {
		if c == m.category {
			cats = append(cats, activeStyle.Render("("+string(c)+")"))
		} else {
			cats = append(cats, " "+string(c)+" ")
		}
	}
	b.WriteString(labelStyle.Render("Category: ") + strings.Join(cats, " ") + "\n\n")

	action := "Add Task"
	if _, editing := m.store.Editing(); editing {
		action = "Update Task"
	}
	b.WriteString(buttonStyle.Render(action) + "\n\n")
}

func (m *tuiModel) writeNotice(b *strings.Builder) {
	if m.notice == nil {
		return
	}
	b.WriteString(noticeStyles[m.notice.level].Render(m.notice.text) + "\n\n")
}

func (m *tuiModel) writeFilter(b *strings.Builder) {
	var parts []string
	for i, c := range filter.Criteria() {
		label := fmt.Sprintf("%d:%s", i, c)
		if c == m.filter {
			parts = append(parts, activeStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, " "+label+" ")
		}
	}
	b.WriteString(labelStyle.Render("Filter: ") + strings.Join(parts, " ") + "\n\n")
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	if len(m.visible) == 0 {
		if m.filter == filter.All {
			b.WriteString("  No tasks yet.\n\n")
		} else {
			b.WriteString(fmt.Sprintf("  No %s tasks.\n\n", strings.ToLower(string(m.filter))))
		}
		return
	}

	editID, editing := m.store.Editing()
	for i, task := range m.visible {
		selected := !m.input.Focused() && i == m.cursor
		b.WriteString(formatTask(task, selected, editing && task.ID == editID))
		b.WriteString("\n")
	}

	completed, open := todo.Collection(m.visible).Counts()
	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("  %d open, %d completed", open, completed)) + "\n\n")
}

func formatTask(t todo.Task, selected, editing bool) string {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}
	check := "[ ]"
	text := t.Text
	if t.Completed {
		check = "[x]"
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s%s %s %s", pointer, check, text, categoryStyle.Render("("+string(t.Category)+")"))
	if editing {
		line += labelStyle.Render(" editing")
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  Input\n")
	b.WriteString("    enter        Add task, or update the task being edited\n")
	b.WriteString("    tab          Switch category\n")
	b.WriteString("    esc          Cancel edit, or move to the list\n")
	b.WriteString("    down         Move to the list\n\n")
	b.WriteString("  List\n")
	b.WriteString("    up/k down/j  Move cursor\n")
	b.WriteString("    space, x     Toggle completed\n")
	b.WriteString("    e, enter     Edit task\n")
	b.WriteString("    d, delete    Delete task\n")
	b.WriteString("    f            Next filter\n")
	b.WriteString("    0-4          Choose filter\n")
	b.WriteString("    a, i, /      Focus input\n")
	b.WriteString("    ctrl+r       Reload from storage\n")
	b.WriteString("    h, ?         Toggle this help screen\n")
	b.WriteString("    q            Quit\n\n")
}

func writeFooter(b *strings.Builder, inputFocused bool) {
	if inputFocused {
		b.WriteString(footerStyle.Render("enter add | tab category | esc list | ctrl+c quit") + "\n")
		return
	}
	b.WriteString(footerStyle.Render("space toggle | e edit | d delete | f filter | ? help | q quit") + "\n")
}
