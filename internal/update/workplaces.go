package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/views"
)

func (m Model) handleWorkplacesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Workplaces.Cursor < len(m.Workplaces.Items)-1 {
			m.Workplaces.Cursor++
		}
	case "k", "up":
		if m.Workplaces.Cursor > 0 {
			m.Workplaces.Cursor--
		}
	case "e":
		m.Workplaces.Expanded = !m.Workplaces.Expanded
		if m.deps.Local != nil {
			return m, saveExpandedCmd(m.deps.Context, m.deps.Local, m.Workplaces.Expanded)
		}
	case "o", "enter":
		if !m.Workplaces.Expanded || len(m.Workplaces.Items) == 0 {
			return m, nil
		}
		if m.deps.OpenURL == nil {
			m.Status = StatusBar{Text: "opening links is not supported here", IsError: true}
			return m, nil
		}
		wp := m.Workplaces.Items[m.Workplaces.Cursor]
		return m, openURLCmd(m.deps.OpenURL, wp.URL)
	case "esc":
		m.dismissNotifications()
	}
	return m, nil
}

func (m Model) renderWorkplaces() string {
	data := views.WorkplacePanelData{
		Greeting: Greeting(m.Workplaces.Profile),
		Expanded: m.Workplaces.Expanded,
		Cursor:   m.Workplaces.Cursor,
	}
	if m.Workplaces.Profile != nil {
		data.Interests = m.Workplaces.Profile.Interests
	}
	for _, wp := range m.Workplaces.Items {
		data.Rows = append(data.Rows, views.WorkplaceRowData{Name: wp.Name, URL: wp.URL})
	}
	return views.RenderWorkplacePanel(data)
}
