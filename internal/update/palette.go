package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if text, ok := typedText(msg); ok {
		m.commandInput.SetValue(m.commandInput.Value() + text)
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var cmds []tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next, c, err := m.submitAdd(a)
			if err != nil {
				return commands.Result{}, err
			}
			m = next
			cmds = append(cmds, c)
			return commands.Result{Message: "adding " + truncate(a.Title, 40)}, nil
		},
		Toggle: func(a commands.TargetArgs) (commands.Result, error) {
			task, err := resolveTarget(m.visibleTasks(), m.allTasks(), a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			var c tea.Cmd
			m, c = m.startToggle(task.ID)
			cmds = append(cmds, c)
			return commands.Result{Message: "toggling " + truncate(task.Title, 40)}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			task, err := resolveTarget(m.visibleTasks(), m.allTasks(), a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			var c tea.Cmd
			m, c = m.startDelete(task.ID)
			cmds = append(cmds, c)
			return commands.Result{Message: "deleting " + truncate(task.Title, 40)}, nil
		},
		Breakdown: func(a commands.TargetArgs) (commands.Result, error) {
			task, err := resolveTarget(m.visibleTasks(), m.allTasks(), a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if task.HasSubtasks() {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "task already has subtasks"}
			}
			var c tea.Cmd
			m, c = m.startBreakdown(task.ID)
			cmds = append(cmds, c)
			return commands.Result{Message: "breaking down " + truncate(task.Title, 40)}, nil
		},
		Find: func(a commands.FindArgs) (commands.Result, error) {
			m.CurrentView = ViewBoard
			m.Filter.Query = a.Query
			m.Cursor = 0
			if a.Query == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("search: %q", a.Query)}, nil
		},
		Tag: func(a commands.TagArgs) (commands.Result, error) {
			m.CurrentView = ViewBoard
			m.Filter.Tag = a.Tag
			m.Cursor = 0
			if a.Tag == "" {
				return commands.Result{Message: "tag filter cleared"}, nil
			}
			return commands.Result{Message: "tag filter: #" + a.Tag}, nil
		},
		Refresh: func() (commands.Result, error) {
			var c tea.Cmd
			m, c = m.startRefresh()
			cmds = append(cmds, c)
			return commands.Result{Message: "refreshing"}, nil
		},
		Remind: func() (commands.Result, error) {
			if m.deps.Reminders == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "reminders are not running"}
			}
			m.deps.Reminders.TriggerNow()
			return commands.Result{Message: "reminder check requested"}, nil
		},
		Sound: func(a commands.SoundArgs) (commands.Result, error) {
			if m.deps.Notifier == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "notifications are not configured"}
			}
			cfg := m.deps.Notifier.Config()
			cfg.Sound = a.On
			m.deps.Notifier.Reconfigure(cfg)
			if a.On {
				return commands.Result{Message: "sound on"}, nil
			}
			return commands.Result{Message: "sound off"}, nil
		},
		Help: func() (commands.Result, error) {
			m.HelpVisible = true
			return commands.Result{Message: "help shown"}, nil
		},
	})
	if err != nil {
		m.deps.Logger.Debug("palette command failed", "input", raw, "err", err)
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, tea.Batch(cmds...)
	}
	m.Status = StatusBar{Text: res.Message}
	return m, tea.Batch(cmds...)
}
