// Package reminder polls the remote service for due-date reminders and hands
// reminder-worthy answers to a notifier.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const (
	DefaultInterval     = 60 * time.Second
	DefaultCheckTimeout = 15 * time.Second
)

// TaskSource is read once per sweep and again when a response lands.
type TaskSource interface {
	ListTasks() []model.Task
	Get(id string) (model.Task, bool)
}

type Checker interface {
	Reminder(ctx context.Context, id string) (string, error)
}

type Notifier interface {
	Reminder(ctx context.Context, message string)
}

type result struct {
	taskID  string
	tick    uint64
	message string
	err     error
}

// Scheduler walks every uncompleted task with a due date once per tick. Each
// task moves Idle -> PendingCheck -> Notified|Idle; a task still waiting on
// a previous check is skipped, so no task ever has two checks in flight.
type Scheduler struct {
	source       TaskSource
	checker      Checker
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	interval     time.Duration
	checkTimeout time.Duration
	observe      func(taskID, message string, at time.Time)

	mu     sync.Mutex
	states map[string]*model.ReminderState
	tick   uint64

	results chan result
	wakeup  chan struct{}

	issued    atomic.Uint64
	notified  atomic.Uint64
	discarded atomic.Uint64
	failed    atomic.Uint64
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithCheckTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// WithObserver registers fn to run after each delivered reminder.
func WithObserver(fn func(taskID, message string, at time.Time)) Option {
	return func(s *Scheduler) { s.observe = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func New(source TaskSource, checker Checker, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:       source,
		checker:      checker,
		notifier:     notifier,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		interval:     DefaultInterval,
		checkTimeout: DefaultCheckTimeout,
		states:       make(map[string]*model.ReminderState),
		results:      make(chan result),
		wakeup:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run sweeps every interval until ctx is cancelled. In-flight checks are not
// cancelled when Run returns; their results are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.wakeup:
			s.sweep(ctx)
		case res := <-s.results:
			s.apply(ctx, res)
		}
	}
}

// TriggerNow asks a running scheduler to sweep without waiting for the tick.
func (s *Scheduler) TriggerNow() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// RunOnce performs a single sweep and waits for every check it issued. It
// must not be used while Run is active.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	n := s.sweep(ctx)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-s.results:
			s.apply(ctx, res)
		}
	}
	return nil
}

// State returns a copy of the reminder state for a task.
func (s *Scheduler) State(taskID string) (model.ReminderState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[taskID]
	if !ok {
		return model.ReminderState{}, false
	}
	out := *st
	if st.LastNotifiedAt != nil {
		at := *st.LastNotifiedAt
		out.LastNotifiedAt = &at
	}
	return out, true
}

type Stats struct {
	Ticks     uint64
	Issued    uint64
	Notified  uint64
	Discarded uint64
	Failed    uint64
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	ticks := s.tick
	s.mu.Unlock()
	return Stats{
		Ticks:     ticks,
		Issued:    s.issued.Load(),
		Notified:  s.notified.Load(),
		Discarded: s.discarded.Load(),
		Failed:    s.failed.Load(),
	}
}

// sweep issues one check per eligible task that is not already pending and
// returns how many were issued.
func (s *Scheduler) sweep(ctx context.Context) int {
	tasks := s.source.ListTasks()

	s.mu.Lock()
	s.tick++
	tick := s.tick
	eligible := make(map[string]bool, len(tasks))
	var due []string
	for _, t := range tasks {
		if !t.ReminderEligible() {
			continue
		}
		eligible[t.ID] = true
		st, ok := s.states[t.ID]
		if !ok {
			st = &model.ReminderState{TaskID: t.ID, Phase: model.ReminderIdle}
			s.states[t.ID] = st
		}
		if !st.CanCheck() {
			continue
		}
		st.Phase = model.ReminderPendingCheck
		st.Tick = tick
		due = append(due, t.ID)
	}
	for id := range s.states {
		if !eligible[id] {
			delete(s.states, id)
		}
	}
	s.mu.Unlock()

	for _, id := range due {
		s.issued.Add(1)
		go s.check(ctx, id, tick)
	}
	if len(due) > 0 {
		s.logger.Debug("reminder sweep", "tick", tick, "checks", len(due))
	}
	return len(due)
}

func (s *Scheduler) check(ctx context.Context, id string, tick uint64) {
	cctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	msg, err := s.checker.Reminder(cctx, id)
	cancel()
	select {
	case s.results <- result{taskID: id, tick: tick, message: msg, err: err}:
	case <-ctx.Done():
	}
}

func (s *Scheduler) apply(ctx context.Context, res result) {
	task, present := s.source.Get(res.taskID)

	s.mu.Lock()
	st, ok := s.states[res.taskID]
	if !ok || st.Phase != model.ReminderPendingCheck || st.Tick != res.tick {
		s.mu.Unlock()
		s.discard(res, "no pending check")
		return
	}
	if !present || !task.ReminderEligible() {
		delete(s.states, res.taskID)
		s.mu.Unlock()
		s.discard(res, "task no longer eligible")
		return
	}
	if res.err != nil || !model.IsReminderWorthy(res.message) {
		st.Phase = model.ReminderIdle
		s.mu.Unlock()
		if res.err != nil {
			s.failed.Add(1)
			level := slog.LevelDebug
			if !errors.Is(res.err, model.ErrTransport) && !errors.Is(res.err, model.ErrNotFound) && !errors.Is(res.err, context.DeadlineExceeded) {
				level = slog.LevelWarn
			}
			s.logger.Log(ctx, level, "reminder check failed", "task_id", res.taskID, "err", res.err)
		}
		return
	}
	now := s.now()
	st.Phase = model.ReminderNotified
	st.LastNotifiedAt = &now
	s.mu.Unlock()

	s.notified.Add(1)
	s.logger.Info("reminder", "task_id", res.taskID, "message", res.message)
	s.notifier.Reminder(ctx, res.message)
	if s.observe != nil {
		s.observe(res.taskID, res.message, now)
	}
}

func (s *Scheduler) discard(res result, reason string) {
	s.discarded.Add(1)
	s.logger.Debug("reminder response discarded", "task_id", res.taskID, "tick", res.tick, "reason", reason)
}
