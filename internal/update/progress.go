package update

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/views"
)

func (m Model) startStatsReload() (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.deps.Gamification != nil {
		cmds = append(cmds, loadStatsCmd(m.deps.Context, m.deps.Gamification))
	}
	if m.deps.Reports != nil {
		cmds = append(cmds, loadReportCmd(m.deps.Context, m.deps.Reports))
	}
	if len(cmds) == 0 {
		return m, nil
	}
	next, cmd := m.beginAsync(tea.Batch(cmds...))
	next.pending += len(cmds) - 1
	return next, cmd
}

func (m Model) handleProgressKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.Status = StatusBar{Text: "reloading stats"}
		return m.startStatsReload()
	case "esc":
		m.dismissNotifications()
	}
	return m, nil
}

func reportRows(r model.WeeklyReport) []table.Row {
	rows := make([]table.Row, 0, len(r.Labels))
	for i, label := range r.Labels {
		done, pending := 0, 0
		if i < len(r.Completed) {
			done = r.Completed[i]
		}
		if i < len(r.Pending) {
			pending = r.Pending[i]
		}
		rows = append(rows, table.Row{label, strconv.Itoa(done), strconv.Itoa(pending)})
	}
	return rows
}

func (m Model) currentStats() (model.Stats, bool) {
	if m.deps.Gamification == nil {
		return model.Stats{Level: 1}, false
	}
	return m.deps.Gamification.Stats(), m.deps.Gamification.Loaded()
}

func (m Model) renderProgress() string {
	stats, loaded := m.currentStats()
	data := views.ProgressPanelData{
		Level:       stats.Level,
		XP:          stats.XP,
		NextLevelXP: stats.NextLevelXP(),
		BarView:     m.xpProgress.ViewAs(clampUnit(stats.Progress())),
		Streak:      stats.StreakDays,
		Today:       stats.TasksCompletedToday,
		Badges:      stats.Badges,
		Loaded:      loaded,
	}
	if m.Report != nil {
		data.HasReport = true
		data.ReportView = m.reportTable.View()
		data.Total = m.Report.Total
		data.TotalDone = m.Report.TotalCompleted
	}
	return views.RenderProgressPanel(data)
}
