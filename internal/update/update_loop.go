package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/views"
)

const statusClearDelay = 4 * time.Second

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.deps.Store != nil {
		cmds = append(cmds, refreshCmd(m.deps.Context, m.deps.Store))
	}
	if m.deps.Gamification != nil {
		cmds = append(cmds, loadStatsCmd(m.deps.Context, m.deps.Gamification))
	}
	if m.deps.Reports != nil {
		cmds = append(cmds, loadReportCmd(m.deps.Context, m.deps.Reports))
	}
	if m.deps.Local != nil {
		cmds = append(cmds, loadLocalCmd(m.deps.Context, m.deps.Local))
	}
	if m.deps.Notifier != nil {
		cmds = append(cmds,
			requestPermissionCmd(m.deps.Context, m.deps.Notifier),
			waitForNotifyCmd(m.deps.Notifier.Changes()),
		)
	}
	if m.pending > 0 {
		cmds = append(cmds, m.loadSpinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		m.Height = typed.Height
		w := typed.Width/2 - 8
		if w < 26 {
			w = 26
		}
		m.detailView.Width = w
		m.detailView.Height = max(6, typed.Height/3)
		m.xpProgress.Width = min(40, w)
		m.helpModel.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case tasksRefreshedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("refresh", typed.err), nil
		}
		m.clampCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("%d task(s) loaded", m.deps.Store.Counts().Total)}
		return m, nil
	case taskAddedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("add", typed.err), nil
		}
		if m.deps.Notifier != nil {
			m.deps.Notifier.Feedback(TaskAddedMessage)
		}
		m.Status = StatusBar{Text: "added: " + truncate(typed.task.Title, 40)}
		return m, nil
	case taskToggledMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("toggle", typed.err), nil
		}
		title := truncate(typed.result.Task.Title, 40)
		switch {
		case typed.outcome == gamification.OutcomeAchievement:
			m.Status = StatusBar{Text: "level up! " + title}
		case typed.result.Task.Completed:
			m.Status = StatusBar{Text: "completed: " + title}
		default:
			m.Status = StatusBar{Text: "reopened: " + title}
		}
		return m, nil
	case taskDeletedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("delete", typed.err), nil
		}
		if m.Detail.TaskID == typed.id {
			m.Detail = DetailState{}
		}
		m.clampCursor()
		if m.deps.Notifier != nil {
			m.deps.Notifier.Feedback(TaskDeletedMessage)
		}
		m.Status = StatusBar{Text: "task deleted"}
		return m, nil
	case breakdownMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("breakdown", typed.err), nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("added %d subtask(s)", typed.count)}
		return m, nil
	case taskSavedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("save", typed.err), nil
		}
		m.Status = StatusBar{Text: "subtasks saved"}
		return m, nil
	case statsLoadedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("load stats", typed.err), nil
		}
		return m, nil
	case reportLoadedMsg:
		m.endAsync()
		if typed.err != nil {
			return m.fail("load report", typed.err), nil
		}
		report := typed.report
		m.Report = &report
		m.reportTable.SetRows(reportRows(report))
		return m, nil
	case localLoadedMsg:
		if typed.err != nil {
			return m.fail("load workplaces", typed.err), nil
		}
		m.Workplaces.Items = typed.workplaces
		m.Workplaces.Expanded = typed.expanded
		m.Workplaces.Profile = typed.profile
		m.Workplaces.Loaded = true
		return m, nil
	case notifyChangedMsg:
		if m.deps.Notifier == nil {
			return m, nil
		}
		return m, waitForNotifyCmd(m.deps.Notifier.Changes())
	case permissionMsg:
		m.deps.Logger.Debug("desktop notification permission", "permission", typed.permission)
		return m, nil
	case ConfigReloadedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: "config reload failed: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "preferences reloaded"}
		return m, clearStatusCmd(statusClearDelay)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.QuickAdd.Active {
		return m.handleQuickAddKey(msg)
	}

	switch keyStr {
	case m.Keys.Palette:
		return m.openPalette(), nil
	case m.Keys.Board:
		m.CurrentView = ViewBoard
		return m, nil
	case m.Keys.Progress:
		m.CurrentView = ViewProgress
		return m, nil
	case m.Keys.Workplaces:
		m.CurrentView = ViewWorkplaces
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewProgress:
		return m.handleProgressKey(msg)
	case ViewWorkplaces:
		return m.handleWorkplacesKey(msg)
	default:
		if m.deps.Store == nil {
			return m, nil
		}
		return m.handleBoardKey(msg)
	}
}

// fail records a failed operation in the status bar. Busy errors are not
// failures of the request itself and stay out of LastError.
func (m Model) fail(op string, err error) Model {
	if !errors.Is(err, model.ErrBusy) {
		m.LastError = err
	}
	m.deps.Logger.Warn("operation failed", "op", op, "err", err)
	m.Status = StatusBar{Text: describeError(op, err), IsError: true}
	return m
}

func isKnownView(v View) bool {
	switch v {
	case ViewBoard, ViewProgress, ViewWorkplaces:
		return true
	default:
		return false
	}
}

func (m *Model) syncBubbleData() {
	if m.Detail.Open && m.deps.Store != nil {
		task, ok := m.deps.Store.WorkingCopy(m.Detail.TaskID)
		if !ok {
			m.Detail = DetailState{}
		} else if m.Detail.SubCursor >= len(task.Subtasks) {
			m.Detail.SubCursor = max(0, len(task.Subtasks)-1)
		}
	}
	if m.Detail.Open {
		md, key := m.detailSource()
		if key != m.detailKey {
			m.detailKey = key
			m.detailView.SetContent(views.RenderMarkdown(md, m.detailView.Width))
			m.detailView.GotoTop()
		}
	} else if m.detailKey != "" {
		m.detailKey = ""
		m.detailView.SetContent("")
	}
	if m.Workplaces.Cursor >= len(m.Workplaces.Items) {
		m.Workplaces.Cursor = max(0, len(m.Workplaces.Items)-1)
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var left, right string
	switch m.CurrentView {
	case ViewProgress:
		left = m.renderProgress()
	case ViewWorkplaces:
		left = m.renderWorkplaces()
	default:
		if m.deps.Store != nil {
			left = m.renderBoard()
			if m.Detail.Open {
				right = m.renderDetail()
			}
		}
	}
	if m.HelpVisible {
		right = m.renderHelpView()
	}

	data := views.AppData{
		Header:     m.renderHeader(),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: m.Status.Text,
		StatusErr:  m.Status.IsError,
		Footer:     m.renderFooter(),
		Width:      m.Width,
	}
	if m.deps.Notifier != nil {
		v := m.deps.Notifier.View()
		if v.Toast != nil {
			data.Toast = &views.ToastData{Kind: toastKindName(v.Toast.Kind), Message: v.Toast.Message}
		}
		if v.Overlay != nil {
			data.Overlay = &views.OverlayData{Message: v.Overlay.Message, XPGained: v.Overlay.XPGained}
		}
	}
	return views.RenderApp(data)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, 3)
	for _, v := range []View{ViewBoard, ViewProgress, ViewWorkplaces} {
		if v == m.CurrentView {
			tabs = append(tabs, "["+string(v)+"]")
		} else {
			tabs = append(tabs, string(v))
		}
	}
	stats, _ := m.currentStats()
	return fmt.Sprintf("FluidTasks  %s  ·  level %d · %d xp", strings.Join(tabs, " "), stats.Level, stats.XP)
}

func (m Model) renderFooter() string {
	if m.Palette.Active {
		return views.RenderCommandPalette(true, m.commandInput.Value())
	}
	return "1 board · 2 progress · 3 workplaces · / command · ? help · q quit"
}
