// Package notify renders reminder and achievement events as an in-app toast or
// overlay, a sound cue and an OS notification.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/scheduler"
)

// DesktopTitle is the fixed title of OS notifications.
const DesktopTitle = "FluidTasks Alert 🚨"

const (
	toastKey   = "toast"
	overlayKey = "overlay"
)

type Config struct {
	ReminderDuration    time.Duration
	FeedbackDuration    time.Duration
	CompletionDuration  time.Duration
	AchievementDuration time.Duration
	Sound               bool
	ReminderVolume      float64
	VictoryVolume       float64
}

func DefaultConfig() Config {
	return Config{
		ReminderDuration:    8 * time.Second,
		FeedbackDuration:    3 * time.Second,
		CompletionDuration:  1500 * time.Millisecond,
		AchievementDuration: 4 * time.Second,
		Sound:               true,
		ReminderVolume:      1,
		VictoryVolume:       0.5,
	}
}

type ToastKind int

const (
	ToastReminder ToastKind = iota
	ToastFeedback
	ToastCompletion
)

type Toast struct {
	Kind      ToastKind
	Message   string
	ShownAt   time.Time
	ExpiresAt time.Time
}

type Overlay struct {
	Message   string
	XPGained  int
	ShownAt   time.Time
	ExpiresAt time.Time
}

// View is what is currently on screen.
type View struct {
	Toast   *Toast
	Overlay *Overlay
}

// Dispatcher keeps at most one toast and one overlay visible. A new toast or
// overlay replaces the current one and restarts its timer.
type Dispatcher struct {
	engine    *scheduler.Engine
	player    Player
	desktop   DesktopNotifier
	requester PermissionRequester
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	cfg        Config
	toast      *Toast
	toastGen   uint64
	overlay    *Overlay
	overlayGen uint64
	permission Permission
	permOnce   sync.Once

	changes chan struct{}
}

type Option func(*Dispatcher)

func WithPlayer(p Player) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.player = p
		}
	}
}

// WithDesktop sets the OS notifier. If it also implements
// PermissionRequester it is used to resolve the default permission.
func WithDesktop(n DesktopNotifier) Option {
	return func(d *Dispatcher) {
		if n == nil {
			return
		}
		d.desktop = n
		if r, ok := n.(PermissionRequester); ok {
			d.requester = r
		}
	}
}

func WithPermission(p Permission) Option {
	return func(d *Dispatcher) { d.permission = p }
}

func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) { d.cfg = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(engine *scheduler.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:     engine,
		player:     NoopPlayer{},
		desktop:    NoopDesktopNotifier{},
		requester:  NoopDesktopNotifier{},
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		cfg:        DefaultConfig(),
		permission: PermissionDefault,
		changes:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RequestPermission resolves a default permission once per dispatcher. A
// granted or denied state is never re-prompted.
func (d *Dispatcher) RequestPermission(ctx context.Context) Permission {
	d.permOnce.Do(func() {
		d.mu.Lock()
		current := d.permission
		d.mu.Unlock()
		if current != PermissionDefault {
			return
		}
		p, err := d.requester.RequestPermission(ctx)
		if err != nil {
			d.logger.Debug("desktop notification permission probe failed", "err", err)
		}
		if p == "" {
			p = PermissionDenied
		}
		d.mu.Lock()
		d.permission = p
		d.mu.Unlock()
		d.logger.Info("desktop notification permission", "state", string(p))
	})
	return d.Permission()
}

func (d *Dispatcher) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// Reconfigure swaps durations and sound preferences. Visible items keep
// their current expiry.
func (d *Dispatcher) Reconfigure(cfg Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
}

func (d *Dispatcher) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Reminder shows the message as a toast, attempts the reminder sound and,
// with permission granted, sends one OS notification.
func (d *Dispatcher) Reminder(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	cfg := d.Config()
	d.showToast(ToastReminder, message, cfg.ReminderDuration)
	if cfg.Sound {
		d.play(ctx, CueReminder, cfg.ReminderVolume)
	}
	if d.Permission() == PermissionGranted {
		if err := d.desktop.Send(ctx, DesktopTitle, message); err != nil {
			d.logger.Debug("desktop notification failed", "err", err)
		}
	}
}

// Achievement shows the celebratory overlay and attempts the victory sound.
func (d *Dispatcher) Achievement(ctx context.Context, ev model.AchievementEvent) {
	cfg := d.Config()
	now := d.now()
	xp := ev.XPGained
	if xp < 0 {
		xp = 0
	}

	d.mu.Lock()
	d.overlayGen++
	gen := d.overlayGen
	d.overlay = &Overlay{
		Message:   ev.Message,
		XPGained:  xp,
		ShownAt:   now,
		ExpiresAt: now.Add(cfg.AchievementDuration),
	}
	d.scheduleDismissLocked(overlayKey, gen, cfg.AchievementDuration)
	d.mu.Unlock()
	d.signal()
	if cfg.Sound {
		d.play(ctx, CueVictory, cfg.VictoryVolume)
	}
}

// Completion shows the brief silent toast for a plain completion.
func (d *Dispatcher) Completion(message string) {
	if strings.TrimSpace(message) == "" {
		message = "Task completed"
	}
	d.showToast(ToastCompletion, message, d.Config().CompletionDuration)
}

// Feedback shows a silent confirmation toast such as "Task added ✨".
func (d *Dispatcher) Feedback(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	d.showToast(ToastFeedback, message, d.Config().FeedbackDuration)
}

func (d *Dispatcher) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	var v View
	if d.toast != nil {
		t := *d.toast
		v.Toast = &t
	}
	if d.overlay != nil {
		o := *d.overlay
		v.Overlay = &o
	}
	return v
}

// DismissToast hides the toast immediately.
func (d *Dispatcher) DismissToast() {
	d.mu.Lock()
	d.toast = nil
	d.toastGen++
	d.engine.Cancel(toastKey)
	d.mu.Unlock()
	d.signal()
}

// DismissOverlay hides the overlay immediately.
func (d *Dispatcher) DismissOverlay() {
	d.mu.Lock()
	d.overlay = nil
	d.overlayGen++
	d.engine.Cancel(overlayKey)
	d.mu.Unlock()
	d.signal()
}

// Changes receives a value whenever the view changes. Signals coalesce.
func (d *Dispatcher) Changes() <-chan struct{} {
	return d.changes
}

// Run starts the dismissal engine and applies its events until ctx ends.
func (d *Dispatcher) Run(ctx context.Context) {
	d.engine.Start()
	defer d.engine.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.engine.C():
			if !ok {
				return
			}
			d.expire(ev)
		}
	}
}

func (d *Dispatcher) expire(ev scheduler.Event) {
	d.mu.Lock()
	changed := false
	switch ev.Key {
	case toastKey:
		if d.toast != nil && ev.Generation == d.toastGen {
			d.toast = nil
			changed = true
		}
	case overlayKey:
		if d.overlay != nil && ev.Generation == d.overlayGen {
			d.overlay = nil
			changed = true
		}
	}
	d.mu.Unlock()
	if changed {
		d.signal()
	}
}

func (d *Dispatcher) showToast(kind ToastKind, message string, ttl time.Duration) {
	now := d.now()
	d.mu.Lock()
	d.toastGen++
	gen := d.toastGen
	d.toast = &Toast{Kind: kind, Message: message, ShownAt: now, ExpiresAt: now.Add(ttl)}
	d.scheduleDismissLocked(toastKey, gen, ttl)
	d.mu.Unlock()
	d.signal()
}

// scheduleDismissLocked must be called with d.mu held.
func (d *Dispatcher) scheduleDismissLocked(key string, gen uint64, ttl time.Duration) {
	d.engine.Cancel(key)
	if err := d.engine.After(ttl, key, gen); err != nil {
		d.logger.Warn("schedule dismiss failed", "key", key, "err", err)
	}
}

func (d *Dispatcher) play(ctx context.Context, cue Cue, volume float64) {
	if err := d.player.Play(context.WithoutCancel(ctx), cue, volume); err != nil {
		d.logger.Debug("sound failed", "cue", cue.String(), "err", err)
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.changes <- struct{}{}:
	default:
	}
}
