package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Permission mirrors the three-state OS notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func ParsePermission(raw string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PermissionDefault, nil
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	default:
		return "", fmt.Errorf("notify: unknown permission %q", raw)
	}
}

type DesktopNotifier interface {
	Send(ctx context.Context, title, body string) error
}

// PermissionRequester is implemented by notifiers that can ask the OS
// whether notifications may be shown.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (Permission, error)
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(context.Context, string, string) error { return nil }

func (NoopDesktopNotifier) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

const desktopTimeout = 5 * time.Second

// ExecDesktopNotifier shells out to notify-send on Linux and osascript on
// macOS. Send returns once the helper has started; it is reaped in the
// background and killed after desktopTimeout.
type ExecDesktopNotifier struct {
	// Command builds the helper process. Nil means exec.CommandContext.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func (n ExecDesktopNotifier) Send(ctx context.Context, title, body string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "linux":
		name, args = "notify-send", []string{"--app-name=fluidtasks", title, body}
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		name, args = "osascript", []string{"-e", script}
	default:
		return fmt.Errorf("notify: desktop notifications unsupported on %s", runtime.GOOS)
	}

	build := n.Command
	if build == nil {
		build = exec.CommandContext
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), desktopTimeout)
	cmd := build(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("notify: start %s: %w", name, err)
	}
	go func() {
		defer cancel()
		_ = cmd.Wait()
	}()
	return nil
}

// RequestPermission grants when the platform notification helper exists.
func (ExecDesktopNotifier) RequestPermission(context.Context) (Permission, error) {
	var bin string
	switch runtime.GOOS {
	case "linux":
		bin = "notify-send"
	case "darwin":
		bin = "osascript"
	default:
		return PermissionDenied, nil
	}
	if _, err := exec.LookPath(bin); err != nil {
		return PermissionDenied, fmt.Errorf("notify: %s not found: %w", bin, err)
	}
	return PermissionGranted, nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
