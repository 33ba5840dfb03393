package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/scheduler"
)

type playCall struct {
	cue    Cue
	volume float64
}

type fakePlayer struct {
	mu    sync.Mutex
	calls []playCall
	err   error
}

func (p *fakePlayer) Play(_ context.Context, cue Cue, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, playCall{cue: cue, volume: volume})
	return p.err
}

func (p *fakePlayer) snapshot() []playCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]playCall(nil), p.calls...)
}

type sent struct {
	title string
	body  string
}

type fakeDesktop struct {
	mu       sync.Mutex
	sent     []sent
	prompts  int
	answer   Permission
	sendErr  error
	probeErr error
}

func (f *fakeDesktop) Send(_ context.Context, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{title: title, body: body})
	return f.sendErr
}

func (f *fakeDesktop) RequestPermission(context.Context) (Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts++
	return f.answer, f.probeErr
}

func (f *fakeDesktop) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	d := NewDispatcher(scheduler.NewEngine(16), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

func TestReminderDeliversToastSoundAndDesktop(t *testing.T) {
	player := &fakePlayer{}
	desktop := &fakeDesktop{answer: PermissionGranted}
	d := newTestDispatcher(t, WithPlayer(player), WithDesktop(desktop))
	d.RequestPermission(t.Context())

	d.Reminder(t.Context(), "Heads up: due soon")

	view := d.View()
	if view.Toast == nil || view.Toast.Message != "Heads up: due soon" || view.Toast.Kind != ToastReminder {
		t.Fatalf("unexpected toast %+v", view.Toast)
	}
	if got := view.Toast.ExpiresAt.Sub(view.Toast.ShownAt); got != 8*time.Second {
		t.Fatalf("expected 8s toast, got %v", got)
	}
	if calls := player.snapshot(); len(calls) != 1 || calls[0].cue != CueReminder {
		t.Fatalf("expected one reminder sound, got %+v", calls)
	}
	if desktop.sentCount() != 1 || desktop.sent[0].title != DesktopTitle || desktop.sent[0].body != "Heads up: due soon" {
		t.Fatalf("unexpected desktop notifications %+v", desktop.sent)
	}
}

func TestReminderWithoutPermissionSkipsDesktop(t *testing.T) {
	for _, perm := range []Permission{PermissionDefault, PermissionDenied} {
		desktop := &fakeDesktop{answer: PermissionGranted}
		d := newTestDispatcher(t, WithDesktop(desktop), WithPermission(perm))
		d.Reminder(t.Context(), "Reminder: go")
		if desktop.sentCount() != 0 {
			t.Fatalf("permission %s: expected no desktop notification", perm)
		}
		if d.View().Toast == nil {
			t.Fatalf("permission %s: toast must still show", perm)
		}
	}
}

func TestPermissionRequestedOnceAndDenialSticks(t *testing.T) {
	desktop := &fakeDesktop{answer: PermissionDenied}
	d := newTestDispatcher(t, WithDesktop(desktop))

	if got := d.RequestPermission(t.Context()); got != PermissionDenied {
		t.Fatalf("expected denied, got %s", got)
	}
	desktop.answer = PermissionGranted
	if got := d.RequestPermission(t.Context()); got != PermissionDenied {
		t.Fatalf("denial must not be re-prompted, got %s", got)
	}
	if desktop.prompts != 1 {
		t.Fatalf("expected a single prompt, got %d", desktop.prompts)
	}
}

func TestPermissionNotPromptedWhenAlreadyDecided(t *testing.T) {
	desktop := &fakeDesktop{answer: PermissionDenied}
	d := newTestDispatcher(t, WithDesktop(desktop), WithPermission(PermissionGranted))
	if got := d.RequestPermission(t.Context()); got != PermissionGranted {
		t.Fatalf("expected granted, got %s", got)
	}
	if desktop.prompts != 0 {
		t.Fatalf("expected no prompt, got %d", desktop.prompts)
	}
}

func TestProbeErrorFallsBackToDenied(t *testing.T) {
	desktop := &fakeDesktop{probeErr: errors.New("no helper")}
	d := newTestDispatcher(t, WithDesktop(desktop))
	if got := d.RequestPermission(t.Context()); got != PermissionDenied {
		t.Fatalf("expected denied, got %s", got)
	}
}

func TestBestEffortFailuresAreSwallowed(t *testing.T) {
	player := &fakePlayer{err: errors.New("autoplay blocked")}
	desktop := &fakeDesktop{sendErr: errors.New("dbus down")}
	d := newTestDispatcher(t, WithPlayer(player), WithDesktop(desktop), WithPermission(PermissionGranted))

	d.Reminder(t.Context(), "Reminder: stretch")
	if d.View().Toast == nil {
		t.Fatalf("toast must show despite side-effect failures")
	}
}

func TestSecondToastReplacesFirst(t *testing.T) {
	d := newTestDispatcher(t)
	d.Reminder(t.Context(), "Reminder: first")
	d.Feedback("Task added ✨")

	view := d.View()
	if view.Toast == nil || view.Toast.Message != "Task added ✨" || view.Toast.Kind != ToastFeedback {
		t.Fatalf("expected replacement toast, got %+v", view.Toast)
	}
}

func TestReplacedToastKeepsItsOwnTimer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReminderDuration = 30 * time.Millisecond
	cfg.FeedbackDuration = 300 * time.Millisecond
	d := newTestDispatcher(t, WithConfig(cfg))

	d.Reminder(t.Context(), "Reminder: first")
	d.Feedback("Task deleted 🗑️")
	time.Sleep(100 * time.Millisecond)

	if v := d.View(); v.Toast == nil || v.Toast.Message != "Task deleted 🗑️" {
		t.Fatalf("stale dismissal hid the replacement toast: %+v", v.Toast)
	}
	waitFor(t, time.Second, func() bool { return d.View().Toast == nil })
}

func TestAchievementOverlayAutoDismisses(t *testing.T) {
	player := &fakePlayer{}
	cfg := DefaultConfig()
	cfg.AchievementDuration = 40 * time.Millisecond
	d := newTestDispatcher(t, WithPlayer(player), WithConfig(cfg))

	d.Achievement(t.Context(), model.AchievementEvent{Message: "Level 5!", XPGained: 50})
	view := d.View()
	if view.Overlay == nil || view.Overlay.Message != "Level 5!" || view.Overlay.XPGained != 50 {
		t.Fatalf("unexpected overlay %+v", view.Overlay)
	}
	calls := player.snapshot()
	if len(calls) != 1 || calls[0].cue != CueVictory || calls[0].volume != 0.5 {
		t.Fatalf("expected victory sound at 0.5, got %+v", calls)
	}
	waitFor(t, time.Second, func() bool { return d.View().Overlay == nil })
}

func TestCompletionToastIsSilent(t *testing.T) {
	player := &fakePlayer{}
	desktop := &fakeDesktop{}
	d := newTestDispatcher(t, WithPlayer(player), WithDesktop(desktop), WithPermission(PermissionGranted))

	d.Completion("")
	view := d.View()
	if view.Toast == nil || view.Toast.Message != "Task completed" || view.Toast.Kind != ToastCompletion {
		t.Fatalf("unexpected toast %+v", view.Toast)
	}
	if got := view.Toast.ExpiresAt.Sub(view.Toast.ShownAt); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s toast, got %v", got)
	}
	if len(player.snapshot()) != 0 || desktop.sentCount() != 0 {
		t.Fatalf("completion must not play sound or notify")
	}
}

func TestSoundDisabledByConfig(t *testing.T) {
	player := &fakePlayer{}
	d := newTestDispatcher(t, WithPlayer(player))
	cfg := d.Config()
	cfg.Sound = false
	d.Reconfigure(cfg)

	d.Reminder(t.Context(), "Reminder: quiet")
	d.Achievement(t.Context(), model.AchievementEvent{Message: "Level 2"})
	if len(player.snapshot()) != 0 {
		t.Fatalf("expected no sound when disabled")
	}
}

func TestManualDismissAndChanges(t *testing.T) {
	d := newTestDispatcher(t)
	drain(d.Changes())

	d.Feedback("Task added ✨")
	select {
	case <-d.Changes():
	case <-time.After(time.Second):
		t.Fatalf("expected change signal")
	}
	d.DismissToast()
	if d.View().Toast != nil {
		t.Fatalf("toast still visible after dismiss")
	}
	d.Achievement(t.Context(), model.AchievementEvent{Message: "Level 3"})
	d.DismissOverlay()
	if d.View().Overlay != nil {
		t.Fatalf("overlay still visible after dismiss")
	}
}

func TestParsePermission(t *testing.T) {
	cases := map[string]Permission{"": PermissionDefault, "Granted": PermissionGranted, " denied ": PermissionDenied}
	for raw, want := range cases {
		got, err := ParsePermission(raw)
		if err != nil || got != want {
			t.Fatalf("ParsePermission(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParsePermission("maybe"); err == nil {
		t.Fatalf("expected error for unknown permission")
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
