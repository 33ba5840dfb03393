package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		Commands:    commands.Usage(),
		HelpView: m.helpModel.View(helpKeyMap{
			short: m.globalKeyBindings(),
			full:  [][]key.Binding{m.globalKeyBindings()},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Board, Action: "switch to Board"},
		{Key: m.Keys.Progress, Action: "switch to Progress"},
		{Key: m.Keys.Workplaces, Action: "switch to Workplaces"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewProgress:
		return []KeyBinding{
			{Key: "r", Action: "reload stats and weekly report"},
		}
	case ViewWorkplaces:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "e", Action: "expand/collapse shortcuts"},
			{Key: "o/enter", Action: "open shortcut"},
		}
	default:
		if m.Detail.Open {
			return []KeyBinding{
				{Key: "j/k", Action: "move subtask cursor"},
				{Key: "space", Action: "toggle subtask (local)"},
				{Key: "w", Action: "save subtasks"},
				{Key: "x", Action: "toggle task completion"},
				{Key: "b", Action: "generate breakdown"},
				{Key: "esc", Action: "discard edits and close"},
			}
		}
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter", Action: "open task detail"},
			{Key: "x/space", Action: "toggle completion"},
			{Key: "a", Action: "quick add"},
			{Key: "d", Action: "delete task"},
			{Key: "b", Action: "generate breakdown"},
			{Key: "t/c", Action: "cycle tag filter / clear filters"},
			{Key: "r", Action: "refresh from server"},
			{Key: "esc", Action: "dismiss toast or overlay"},
		}
	}
}

func (m Model) globalKeyBindings() []key.Binding {
	var out []key.Binding
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
