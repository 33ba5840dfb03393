package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func itoa(n int) string { return strconv.Itoa(n) }

type TaskRowData struct {
	Index         int
	ID            string
	Title         string
	Completed     bool
	Priority      string
	Due           *time.Time
	Tags          []string
	SubtasksDone  int
	SubtasksTotal int
	Dirty         bool
}

type BoardPanelData struct {
	Rows       []TaskRowData
	SelectedID string
	Total      int
	Pending    int
	Done       int
	Query      string
	Tag        string
	Tags       []string
	QuickAdd   string
	Loading    string
	Now        time.Time
}

type DetailPanelData struct {
	Markdown  string
	Subtasks  []SubtaskRowData
	Cursor    int
	Dirty     bool
	Completed bool
}

type SubtaskRowData struct {
	Title     string
	Completed bool
}

type ProgressPanelData struct {
	Level       int
	XP          int
	NextLevelXP int
	BarView     string
	Streak      int
	Today       int
	Badges      []string
	Loaded      bool
	ReportView  string
	Total       int
	TotalDone   int
	HasReport   bool
}

type WorkplaceRowData struct {
	Name string
	URL  string
}

type WorkplacePanelData struct {
	Greeting  string
	Interests []string
	Expanded  bool
	Rows      []WorkplaceRowData
	Cursor    int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	Commands    []string
	HelpView    string
}

func RenderBoardPanel(data BoardPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %d total · %d pending · %d done", data.Total, data.Pending, data.Done))
	if data.Loading != "" {
		b.WriteString("  " + data.Loading)
	}
	b.WriteString("\n")
	if len(data.Tags) > 0 {
		chips := make([]string, 0, len(data.Tags))
		for _, tag := range data.Tags {
			chip := "#" + tag
			if tag == data.Tag {
				chip = activeStyle.Render(chip)
			}
			chips = append(chips, chip)
		}
		b.WriteString("tags: " + strings.Join(chips, " ") + "\n")
	}
	if data.Query != "" {
		b.WriteString(fmt.Sprintf("search: %q\n", data.Query))
	}
	if data.QuickAdd != "" {
		b.WriteString(data.QuickAdd + "\n")
	}
	b.WriteString("\n")

	if len(data.Rows) == 0 {
		if data.Query != "" || data.Tag != "" {
			b.WriteString(mutedStyle.Render("(no tasks match the filter)"))
		} else {
			b.WriteString(mutedStyle.Render("(no tasks yet, press a to add one)"))
		}
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row, row.ID == data.SelectedID, data.Now))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func renderTaskRow(row TaskRowData, selected bool, now time.Time) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := "[ ]"
	title := row.Title
	if row.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	}
	parts := []string{fmt.Sprintf("%s %2d %s %s %s", cursor, row.Index, check, priorityBadge(row.Priority), title)}
	if row.Due != nil {
		parts = append(parts, mutedStyle.Render("due "+RelativeDue(*row.Due, now)))
	}
	if row.SubtasksTotal > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d/%d", row.SubtasksDone, row.SubtasksTotal)))
	}
	if row.Dirty {
		parts = append(parts, errorStyle.Render("*unsaved"))
	}
	return strings.Join(parts, " ")
}

func priorityBadge(p string) string {
	switch p {
	case "High":
		return errorStyle.Render("[H]")
	case "Medium":
		return warnStyle.Render("[M]")
	case "Low":
		return statusStyle.Render("[L]")
	default:
		return "[ ]"
	}
}

// RelativeDue formats a due date the way the board shows it.
func RelativeDue(due, now time.Time) string {
	diff := due.Sub(now)
	switch {
	case diff < 0:
		return "overdue (" + due.Format("Jan 02 15:04") + ")"
	case diff < time.Hour:
		return fmt.Sprintf("in %dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(diff.Hours()))
	default:
		return due.Format("Mon Jan 02 15:04")
	}
}

func RenderDetailPanel(data DetailPanelData) string {
	var b strings.Builder
	b.WriteString(data.Markdown)
	b.WriteString("\n\nsubtasks:")
	if data.Dirty {
		b.WriteString(" " + errorStyle.Render("(unsaved, w to save, esc to discard)"))
	}
	b.WriteString("\n")
	if len(data.Subtasks) == 0 {
		b.WriteString(mutedStyle.Render("  (none, press b to generate a breakdown)"))
		return b.String()
	}
	for i, st := range data.Subtasks {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		title := st.Title
		if st.Completed {
			check = "[x]"
			title = doneStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, check, title))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TaskMarkdown is the glamour source for the detail pane.
func TaskMarkdown(title, description, priority, reasoning string, tags []string, due *time.Time, completed bool) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	state := "pending"
	if completed {
		state = "completed"
	}
	b.WriteString("**Status:** " + state + "\n\n")
	if priority != "" {
		b.WriteString("**Priority:** " + priority)
		if reasoning != "" {
			b.WriteString(" _(" + reasoning + ")_")
		}
		b.WriteString("\n\n")
	}
	if due != nil {
		b.WriteString("**Due:** " + due.Format("Mon Jan 02 2006 15:04") + "\n\n")
	}
	if len(tags) > 0 {
		quoted := make([]string, 0, len(tags))
		for _, t := range tags {
			quoted = append(quoted, "`#"+t+"`")
		}
		b.WriteString("**Tags:** " + strings.Join(quoted, " ") + "\n\n")
	}
	if strings.TrimSpace(description) != "" {
		b.WriteString(description + "\n")
	}
	return b.String()
}

func RenderProgressPanel(data ProgressPanelData) string {
	var b strings.Builder
	b.WriteString("progress:\n")
	if !data.Loaded {
		b.WriteString(mutedStyle.Render("(stats not loaded yet)") + "\n")
	}
	b.WriteString(fmt.Sprintf("level %d · %d / %d xp\n", data.Level, data.XP, data.NextLevelXP))
	b.WriteString(data.BarView + "\n")
	b.WriteString(fmt.Sprintf("streak: %d day(s) · completed today: %d\n", data.Streak, data.Today))
	if len(data.Badges) > 0 {
		b.WriteString("badges: " + strings.Join(data.Badges, ", ") + "\n")
	}
	b.WriteString("\nweekly report:\n")
	if !data.HasReport {
		b.WriteString(mutedStyle.Render("(report not loaded, press r)"))
		return strings.TrimSpace(b.String())
	}
	b.WriteString(data.ReportView + "\n")
	b.WriteString(fmt.Sprintf("total: %d · completed: %d", data.Total, data.TotalDone))
	return strings.TrimSpace(b.String())
}

func RenderWorkplacePanel(data WorkplacePanelData) string {
	var b strings.Builder
	b.WriteString(data.Greeting + "\n")
	if len(data.Interests) > 0 {
		b.WriteString(mutedStyle.Render("interests: "+strings.Join(data.Interests, ", ")) + "\n")
	}
	b.WriteString("\n")
	marker := "▾"
	if !data.Expanded {
		marker = "▸"
	}
	b.WriteString(fmt.Sprintf("%s workplace (%d)\n", marker, len(data.Rows)))
	if !data.Expanded {
		return strings.TrimSpace(b.String())
	}
	for i, row := range data.Rows {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-12s %s\n", cursor, row.Name, mutedStyle.Render(row.URL)))
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help: " + strings.ToLower(data.CurrentView) + "\n")
	b.WriteString(strings.Join(data.Bindings, "\n"))
	if len(data.Commands) > 0 {
		b.WriteString("\n\ncommands:\n")
		for _, c := range data.Commands {
			b.WriteString("  /" + c + "\n")
		}
	}
	if data.HelpView != "" {
		b.WriteString("\n" + data.HelpView)
	}
	return strings.TrimSpace(b.String())
}
