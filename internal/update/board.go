package update

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/views"
)

func (m Model) visibleTasks() []model.Task {
	if m.deps.Store == nil {
		return nil
	}
	return m.deps.Store.Filter(m.Filter.Query, m.Filter.Tag)
}

func (m Model) allTasks() []model.Task {
	if m.deps.Store == nil {
		return nil
	}
	return m.deps.Store.ListTasks()
}

func (m Model) selectedTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if m.Cursor < 0 || m.Cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.Cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visibleTasks())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// beginAsync counts an in-flight request and starts the spinner for the first.
func (m Model) beginAsync(cmd tea.Cmd) (Model, tea.Cmd) {
	m.pending++
	if m.pending == 1 {
		return m, tea.Batch(cmd, m.loadSpinner.Tick)
	}
	return m, cmd
}

func (m *Model) endAsync() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m Model) startRefresh() (Model, tea.Cmd) {
	return m.beginAsync(refreshCmd(m.deps.Context, m.deps.Store))
}

func (m Model) startToggle(id string) (Model, tea.Cmd) {
	return m.beginAsync(toggleTaskCmd(m.deps.Context, m.deps.Store, m.deps.Gamification, id))
}

func (m Model) startDelete(id string) (Model, tea.Cmd) {
	return m.beginAsync(deleteTaskCmd(m.deps.Context, m.deps.Store, id))
}

func (m Model) startBreakdown(id string) (Model, tea.Cmd) {
	return m.beginAsync(breakdownCmd(m.deps.Context, m.deps.Store, id))
}

func (m Model) submitAdd(a commands.AddArgs) (Model, tea.Cmd, error) {
	var due *time.Time
	if a.Due != "" {
		at, err := commands.ParseDue(a.Due, m.deps.Now())
		if err != nil {
			return m, nil, err
		}
		due = &at
	}
	next, cmd := m.beginAsync(addTaskCmd(m.deps.Context, m.deps.Store, a.Title, due))
	return next, cmd, nil
}

func (m Model) openQuickAdd() Model {
	m.QuickAdd.Active = true
	m.QuickAdd.Input = ""
	m.quickAddInput.SetValue("")
	m.quickAddInput.Focus()
	return m
}

func (m Model) closeQuickAdd() Model {
	m.QuickAdd.Active = false
	m.QuickAdd.Input = ""
	m.quickAddInput.SetValue("")
	m.quickAddInput.Blur()
	return m
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeQuickAdd(), nil
	case "enter":
		raw := strings.TrimSpace(m.quickAddInput.Value())
		if raw == "" {
			m.Status = StatusBar{Text: "title is required", IsError: true}
			return m, nil
		}
		cmd, err := commands.Parse("add " + raw)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		next, c, err := m.submitAdd(*cmd.Add)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		next = next.closeQuickAdd()
		next.Status = StatusBar{Text: "adding " + truncate(cmd.Add.Title, 40)}
		return next, c
	}
	if text, ok := typedText(msg); ok {
		m.quickAddInput.SetValue(m.quickAddInput.Value() + text)
		m.QuickAdd.Input = m.quickAddInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	m.QuickAdd.Input = m.quickAddInput.Value()
	return m, cmd
}

func (m Model) nextTag() string {
	tags := []string{}
	if m.deps.Store != nil {
		tags = m.deps.Store.AllTags()
	}
	if len(tags) == 0 {
		return ""
	}
	i := slices.Index(tags, m.Filter.Tag)
	if i == len(tags)-1 {
		return ""
	}
	return tags[i+1]
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Detail.Open {
		if next, cmd, handled := m.handleDetailKey(msg); handled {
			return next, cmd
		}
	}
	switch msg.String() {
	case "j", "down":
		m.Cursor++
		m.clampCursor()
	case "k", "up":
		m.Cursor--
		m.clampCursor()
	case "enter":
		if t, ok := m.selectedTask(); ok {
			m.Detail = DetailState{Open: true, TaskID: t.ID}
		}
	case "x", " ":
		if t, ok := m.selectedTask(); ok {
			return m.startToggle(t.ID)
		}
	case "d":
		if t, ok := m.selectedTask(); ok {
			if m.Detail.TaskID == t.ID {
				m.Detail = DetailState{}
			}
			return m.startDelete(t.ID)
		}
	case "b":
		if t, ok := m.selectedTask(); ok {
			if t.HasSubtasks() {
				m.Status = StatusBar{Text: "task already has subtasks", IsError: true}
				return m, nil
			}
			return m.startBreakdown(t.ID)
		}
	case "a":
		return m.openQuickAdd(), nil
	case "r":
		return m.startRefresh()
	case "t":
		m.Filter.Tag = m.nextTag()
		m.Cursor = 0
	case "c":
		m.Filter = FilterState{}
		m.Cursor = 0
		m.Status = StatusBar{Text: "filters cleared"}
	case "esc":
		m.dismissNotifications()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	id := m.Detail.TaskID
	task, ok := m.deps.Store.WorkingCopy(id)
	if !ok {
		m.Detail = DetailState{}
		return m, nil, false
	}
	switch msg.String() {
	case "j", "down":
		if m.Detail.SubCursor < len(task.Subtasks)-1 {
			m.Detail.SubCursor++
		}
		return m, nil, true
	case "k", "up":
		if m.Detail.SubCursor > 0 {
			m.Detail.SubCursor--
		}
		return m, nil, true
	case " ":
		if _, err := m.deps.Store.ToggleSubtaskLocal(id, m.Detail.SubCursor); err != nil {
			m.Status = StatusBar{Text: describeError("toggle subtask", err), IsError: true}
		}
		return m, nil, true
	case "w":
		if !m.deps.Store.Dirty(id) {
			m.Status = StatusBar{Text: "nothing to save"}
			return m, nil, true
		}
		next, cmd := m.beginAsync(saveTaskCmd(m.deps.Context, m.deps.Store, id))
		return next, cmd, true
	case "esc":
		if m.deps.Store.Dirty(id) {
			m.deps.Store.DiscardWorkingCopy(id)
			m.Status = StatusBar{Text: "subtask edits discarded"}
		}
		m.Detail = DetailState{}
		return m, nil, true
	case "x":
		next, cmd := m.startToggle(id)
		return next, cmd, true
	case "b":
		if task.HasSubtasks() {
			m.Status = StatusBar{Text: "task already has subtasks", IsError: true}
			return m, nil, true
		}
		next, cmd := m.startBreakdown(id)
		return next, cmd, true
	}
	return m, nil, false
}

func (m *Model) dismissNotifications() {
	if m.deps.Notifier == nil {
		return
	}
	v := m.deps.Notifier.View()
	if v.Overlay != nil {
		m.deps.Notifier.DismissOverlay()
		return
	}
	if v.Toast != nil {
		m.deps.Notifier.DismissToast()
	}
}

func (m Model) renderBoard() string {
	tasks := m.visibleTasks()
	rows := make([]views.TaskRowData, 0, len(tasks))
	selected := ""
	for i, t := range tasks {
		if i == m.Cursor {
			selected = t.ID
		}
		rows = append(rows, views.TaskRowData{
			Index:         i + 1,
			ID:            t.ID,
			Title:         t.Title,
			Completed:     t.Completed,
			Priority:      string(t.Priority),
			Due:           t.DueDate,
			Tags:          t.Tags,
			SubtasksDone:  t.CompletedSubtasks(),
			SubtasksTotal: len(t.Subtasks),
			Dirty:         m.deps.Store.Dirty(t.ID),
		})
	}
	counts := m.deps.Store.Counts()
	data := views.BoardPanelData{
		Rows:       rows,
		SelectedID: selected,
		Total:      counts.Total,
		Pending:    counts.Pending,
		Done:       counts.Done,
		Query:      m.Filter.Query,
		Tag:        m.Filter.Tag,
		Tags:       m.deps.Store.AllTags(),
		Now:        m.deps.Now(),
	}
	if m.QuickAdd.Active {
		data.QuickAdd = m.quickAddInput.View()
	}
	if m.pending > 0 {
		data.Loading = m.loadSpinner.View()
	}
	return views.RenderBoardPanel(data)
}

func (m Model) renderDetail() string {
	task, ok := m.deps.Store.WorkingCopy(m.Detail.TaskID)
	if !ok {
		return ""
	}
	subtasks := make([]views.SubtaskRowData, 0, len(task.Subtasks))
	for _, st := range task.Subtasks {
		subtasks = append(subtasks, views.SubtaskRowData{Title: st.Title, Completed: st.Completed})
	}
	return views.RenderDetailPanel(views.DetailPanelData{
		Markdown:  m.detailView.View(),
		Subtasks:  subtasks,
		Cursor:    m.Detail.SubCursor,
		Dirty:     m.deps.Store.Dirty(task.ID),
		Completed: task.Completed,
	})
}

// detailSource is the markdown for the open task and the cache key for it.
func (m Model) detailSource() (string, string) {
	task, ok := m.deps.Store.WorkingCopy(m.Detail.TaskID)
	if !ok {
		return "", ""
	}
	md := views.TaskMarkdown(task.Title, task.Description, string(task.Priority), task.PriorityReasoning, task.Tags, task.DueDate, task.Completed)
	return md, fmt.Sprintf("%s|%d|%s", task.ID, m.detailView.Width, md)
}
