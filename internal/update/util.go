package update

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/notify"
)

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// typedText is the literal text a key press contributes to an input line.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	default:
		return "", false
	}
}

func toastKindName(k notify.ToastKind) string {
	switch k {
	case notify.ToastReminder:
		return "reminder"
	case notify.ToastCompletion:
		return "completion"
	default:
		return "feedback"
	}
}

// describeError turns a store error into the status bar text for op.
func describeError(op string, err error) string {
	switch {
	case errors.Is(err, model.ErrBusy):
		return op + " already in progress"
	case errors.Is(err, model.ErrConflict):
		return op + ": task already has subtasks"
	case errors.Is(err, model.ErrNotFound):
		return op + ": task not found"
	case errors.Is(err, model.ErrTransport):
		return op + " failed: server unreachable"
	default:
		return fmt.Sprintf("%s failed: %v", op, err)
	}
}

// resolveTarget finds a task by its 1-based position in visible or by a
// unique id prefix among all tasks.
func resolveTarget(visible, all []model.Task, target string) (model.Task, error) {
	target = strings.TrimSpace(target)
	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(visible) {
			return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at position %d", n)}
		}
		return visible[n-1], nil
	}
	var found []model.Task
	for _, t := range all {
		if t.ID == target {
			return t, nil
		}
		if strings.HasPrefix(t.ID, target) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", target)}
	case 1:
		return found[0], nil
	default:
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("%q matches %d tasks", target, len(found))}
	}
}

// Greeting is the header line for the workplaces panel.
func Greeting(p *model.Profile) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "Hello 👋"
	}
	return "Hello, " + p.Name + " 👋"
}
