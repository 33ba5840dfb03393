package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/notify"
	"github.com/sandeepkv93/fluidtasks/internal/store"
)

func refreshCmd(ctx context.Context, st *store.TaskStore) tea.Cmd {
	return func() tea.Msg {
		return tasksRefreshedMsg{err: st.Refresh(ctx)}
	}
}

func addTaskCmd(ctx context.Context, st *store.TaskStore, title string, due *time.Time) tea.Cmd {
	return func() tea.Msg {
		task, err := st.AddTask(ctx, title, due)
		return taskAddedMsg{task: task, err: err}
	}
}

// toggleTaskCmd reconciles gamification inside the command so the overlay or
// completion toast is raised as soon as the server answers.
func toggleTaskCmd(ctx context.Context, st *store.TaskStore, g *gamification.Reconciler, id string) tea.Cmd {
	return func() tea.Msg {
		res, err := st.ToggleCompletion(ctx, id)
		if err != nil {
			return taskToggledMsg{id: id, result: res, err: err}
		}
		outcome := gamification.OutcomeNone
		if g != nil {
			outcome = g.Reconcile(ctx, res)
		}
		return taskToggledMsg{id: id, result: res, outcome: outcome}
	}
}

func deleteTaskCmd(ctx context.Context, st *store.TaskStore, id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: st.DeleteTask(ctx, id)}
	}
}

func breakdownCmd(ctx context.Context, st *store.TaskStore, id string) tea.Cmd {
	return func() tea.Msg {
		subtasks, err := st.GenerateBreakdown(ctx, id)
		return breakdownMsg{id: id, count: len(subtasks), err: err}
	}
}

func saveTaskCmd(ctx context.Context, st *store.TaskStore, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := st.SaveTask(ctx, id)
		return taskSavedMsg{id: id, err: err}
	}
}

func loadStatsCmd(ctx context.Context, g *gamification.Reconciler) tea.Cmd {
	return func() tea.Msg {
		return statsLoadedMsg{err: g.Load(ctx)}
	}
}

func loadReportCmd(ctx context.Context, src ReportSource) tea.Cmd {
	return func() tea.Msg {
		report, err := src.WeeklyReport(ctx)
		return reportLoadedMsg{report: report, err: err}
	}
}

func loadLocalCmd(ctx context.Context, local LocalStore) tea.Cmd {
	return func() tea.Msg {
		msg := localLoadedMsg{}
		items, err := local.Workplaces(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.workplaces = items
		expanded, err := local.WorkplaceExpanded(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.expanded = expanded
		profile, ok, err := local.Profile(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		if ok {
			msg.profile = &profile
		}
		return msg
	}
}

func saveExpandedCmd(ctx context.Context, local LocalStore, expanded bool) tea.Cmd {
	return func() tea.Msg {
		if err := local.SetWorkplaceExpanded(ctx, expanded); err != nil {
			return AppErrorMsg{Err: err}
		}
		return nil
	}
}

func openURLCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return AppErrorMsg{Err: err}
		}
		return SetStatusMsg{Text: "opened " + url}
	}
}

func requestPermissionCmd(ctx context.Context, d *notify.Dispatcher) tea.Cmd {
	return func() tea.Msg {
		return permissionMsg{permission: d.RequestPermission(ctx)}
	}
}

func waitForNotifyCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return notifyChangedMsg{}
	}
}

func clearStatusCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}
