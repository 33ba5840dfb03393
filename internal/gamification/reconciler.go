// Package gamification turns toggle results into achievement and completion
// feedback and keeps the XP/level numbers shown to the user.
package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const CompletedMessage = "Task completed"

type StatsSource interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// Presenter is the part of the notification dispatcher the reconciler drives.
type Presenter interface {
	Achievement(ctx context.Context, ev model.AchievementEvent)
	Completion(message string)
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCompletion
	OutcomeAchievement
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompletion:
		return "completion"
	case OutcomeAchievement:
		return "achievement"
	default:
		return "none"
	}
}

type Reconciler struct {
	source    StatsSource
	presenter Presenter
	logger    *slog.Logger

	mu     sync.RWMutex
	stats  model.Stats
	loaded bool
}

func New(source StatsSource, presenter Presenter, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		source:    source,
		presenter: presenter,
		logger:    logger,
		stats:     model.Stats{Level: 1},
	}
}

// Load replaces the local numbers with the server's.
func (r *Reconciler) Load(ctx context.Context) error {
	stats, err := r.source.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	r.mu.Lock()
	r.stats = stats
	r.stats.Badges = slices.Clone(stats.Badges)
	r.loaded = true
	r.mu.Unlock()
	return nil
}

func (r *Reconciler) Stats() model.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.stats
	out.Badges = slices.Clone(r.stats.Badges)
	return out
}

func (r *Reconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Reconciler) Progress() float64 {
	return r.Stats().Progress()
}

// Reconcile routes a toggle result to the overlay (level-up) or the brief
// completion toast. Un-completing a task produces no feedback.
func (r *Reconciler) Reconcile(ctx context.Context, res model.ToggleResult) Outcome {
	switch res.Kind {
	case model.LevelUp:
		ev := model.AchievementEvent{XPGained: res.XPGained}
		if res.Achievement != nil {
			ev = *res.Achievement
		}
		r.presenter.Achievement(ctx, ev)
		r.recordCompletion(res.XPGained)
		if err := r.Load(ctx); err != nil {
			r.logger.Warn("stats refresh after level up failed", "err", err)
		}
		return OutcomeAchievement
	default:
		if !res.Task.Completed {
			return OutcomeNone
		}
		r.presenter.Completion(CompletedMessage)
		r.recordCompletion(res.XPGained)
		return OutcomeCompletion
	}
}

func (r *Reconciler) recordCompletion(xp int) {
	if xp < 0 {
		xp = 0
	}
	r.mu.Lock()
	r.stats.XP += xp
	r.stats.TasksCompletedToday++
	r.mu.Unlock()
}
