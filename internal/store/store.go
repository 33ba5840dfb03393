// Package store holds the client-side task list and funnels every mutation
// through the remote task service.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

// TaskService is the subset of the remote API the store depends on.
type TaskService interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.NewTaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
	ToggleTask(ctx context.Context, id string) (model.ToggleResult, error)
	DeleteTask(ctx context.Context, id string) error
	GenerateBreakdown(ctx context.Context, id string) ([]model.Subtask, error)
}

// TaskStore is the single source of truth for task state on the client.
// Only its own methods write the task list; readers get copies.
type TaskStore struct {
	svc    TaskService
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	tasks    []model.Task
	index    map[string]int
	working  map[string]model.Task
	adding   bool
	deleting map[string]bool
	breaking map[string]bool
	onChange []func()
}

type Option func(*TaskStore)

func WithLogger(logger *slog.Logger) Option {
	return func(s *TaskStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		if now != nil {
			s.now = now
		}
	}
}

func New(svc TaskService, opts ...Option) *TaskStore {
	s := &TaskStore{
		svc:      svc,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		index:    make(map[string]int),
		working:  make(map[string]model.Task),
		deleting: make(map[string]bool),
		breaking: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every committed mutation. Callbacks run
// outside the store lock.
func (s *TaskStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// ListTasks returns the tasks in insertion order.
func (s *TaskStore) ListTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Get returns the authoritative copy of a task.
func (s *TaskStore) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Refresh replaces the store contents with the server's list. On failure the
// previous contents are kept.
func (s *TaskStore) Refresh(ctx context.Context) error {
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		s.logger.Error("refresh tasks failed", "err", err)
		return fmt.Errorf("refresh tasks: %w", err)
	}
	s.mu.Lock()
	s.tasks = s.tasks[:0]
	s.index = make(map[string]int, len(tasks))
	for _, t := range tasks {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t.Clone())
	}
	for id := range s.working {
		if _, ok := s.index[id]; !ok {
			delete(s.working, id)
		}
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// AddTask creates a task. Tags come from #markers in the title followed by
// explicitTags; a missing due date defaults to now + 24h.
func (s *TaskStore) AddTask(ctx context.Context, title string, dueDate *time.Time, explicitTags ...string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: task title is required", model.ErrValidation)
	}

	s.mu.Lock()
	if s.adding {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: add task", model.ErrBusy)
	}
	s.adding = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.adding = false
		s.mu.Unlock()
	}()

	due := s.now().Add(model.DefaultDueOffset)
	if dueDate != nil {
		due = *dueDate
	}
	draft := model.NewTaskDraft{
		Title:   title,
		DueDate: &due,
		Tags:    model.MergeTags(model.ExtractTags(title), explicitTags),
	}

	created, err := s.svc.CreateTask(ctx, draft)
	if err != nil {
		s.logger.Error("add task failed", "title", title, "err", err)
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.mu.Lock()
	if i, ok := s.index[created.ID]; ok {
		s.tasks[i] = created.Clone()
	} else {
		s.index[created.ID] = len(s.tasks)
		s.tasks = append(s.tasks, created.Clone())
	}
	s.mu.Unlock()
	s.changed()
	return created, nil
}

// ToggleCompletion asks the service to flip completion and replaces the local
// task with the server's copy. The local task is never flipped ahead of the
// response. An unknown id still reaches the service, but the caller gets
// ErrNotFound alongside whatever the service answered.
func (s *TaskStore) ToggleCompletion(ctx context.Context, id string) (model.ToggleResult, error) {
	_, known := s.Get(id)

	res, err := s.svc.ToggleTask(ctx, id)
	if err != nil {
		s.logger.Error("toggle task failed", "task_id", id, "err", err)
		if !known && !errors.Is(err, model.ErrNotFound) {
			return model.ToggleResult{}, fmt.Errorf("toggle task %q: %w", id, errors.Join(model.ErrNotFound, err))
		}
		return model.ToggleResult{}, fmt.Errorf("toggle task %q: %w", id, err)
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if ok {
		s.tasks[i] = res.Task.Clone()
		delete(s.working, id)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("toggle response for unknown task", "task_id", id)
		return res, fmt.Errorf("%w: toggle task %q", model.ErrNotFound, id)
	}
	s.changed()
	return res, nil
}

// DeleteTask removes a task once the service confirms. Deleting an id that
// is already gone reports ErrNotFound, which callers treat as success.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.deleting[id] {
		s.mu.Unlock()
		return fmt.Errorf("%w: delete task %q", model.ErrBusy, id)
	}
	_, known := s.index[id]
	if !known {
		s.mu.Unlock()
		return fmt.Errorf("%w: delete task %q", model.ErrNotFound, id)
	}
	s.deleting[id] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
	}()

	err := s.svc.DeleteTask(ctx, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		s.logger.Error("delete task failed", "task_id", id, "err", err)
		return fmt.Errorf("delete task %q: %w", id, err)
	}

	s.mu.Lock()
	s.removeLocked(id)
	s.mu.Unlock()
	s.changed()
	return nil
}

// GenerateBreakdown fills in server-generated subtasks for a task that has
// none. A task with subtasks is rejected with ErrConflict and left alone, and
// a second breakdown for the same id while one is in flight gets ErrBusy.
func (s *TaskStore) GenerateBreakdown(ctx context.Context, id string) ([]model.Subtask, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("breakdown for unknown task", "task_id", id)
		return nil, fmt.Errorf("%w: breakdown task %q", model.ErrNotFound, id)
	}
	if s.breaking[id] {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: breakdown task %q", model.ErrBusy, id)
	}
	if s.tasks[i].HasSubtasks() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: task %q already has subtasks", model.ErrConflict, id)
	}
	s.breaking[id] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.breaking, id)
		s.mu.Unlock()
	}()

	subtasks, err := s.svc.GenerateBreakdown(ctx, id)
	if err != nil {
		s.logger.Error("breakdown failed", "task_id", id, "err", err)
		return nil, fmt.Errorf("breakdown task %q: %w", id, err)
	}

	s.mu.Lock()
	i, ok = s.index[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: task %q removed during breakdown", model.ErrNotFound, id)
	}
	if s.tasks[i].HasSubtasks() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: task %q already has subtasks", model.ErrConflict, id)
	}
	s.tasks[i].Subtasks = slices.Clone(subtasks)
	delete(s.working, id)
	s.mu.Unlock()
	s.changed()
	return subtasks, nil
}

// WorkingCopy returns the transient copy used for subtask edits, or the
// authoritative task when there is none.
func (s *TaskStore) WorkingCopy(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.working[id]; ok {
		return w.Clone(), true
	}
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// ToggleSubtaskLocal flips a subtask in the working copy only.
func (s *TaskStore) ToggleSubtaskLocal(id string, index int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.working[id]
	if !ok {
		i, known := s.index[id]
		if !known {
			return model.Task{}, fmt.Errorf("%w: task %q", model.ErrNotFound, id)
		}
		w = s.tasks[i].Clone()
	}
	if index < 0 || index >= len(w.Subtasks) {
		return model.Task{}, fmt.Errorf("%w: subtask %d out of range", model.ErrValidation, index)
	}
	w.Subtasks[index].Completed = !w.Subtasks[index].Completed
	s.working[id] = w
	return w.Clone(), nil
}

// DiscardWorkingCopy drops unsaved subtask edits.
func (s *TaskStore) DiscardWorkingCopy(id string) {
	s.mu.Lock()
	delete(s.working, id)
	s.mu.Unlock()
}

// Dirty reports whether a task has unsaved subtask edits.
func (s *TaskStore) Dirty(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.working[id]
	return ok
}

// SaveTask pushes the working copy to the service and adopts its answer.
func (s *TaskStore) SaveTask(ctx context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	w, ok := s.working[id]
	s.mu.RUnlock()
	if !ok {
		if _, known := s.Get(id); !known {
			return model.Task{}, fmt.Errorf("%w: task %q", model.ErrNotFound, id)
		}
		return s.mustGet(id), nil
	}

	saved, err := s.svc.UpdateTask(ctx, w.Clone())
	if err != nil {
		s.logger.Error("save task failed", "task_id", id, "err", err)
		return model.Task{}, fmt.Errorf("save task %q: %w", id, err)
	}

	s.mu.Lock()
	if i, known := s.index[id]; known {
		s.tasks[i] = saved.Clone()
	}
	delete(s.working, id)
	s.mu.Unlock()
	s.changed()
	return saved, nil
}

// Filter returns tasks whose title contains query (case-insensitive) and,
// when tag is non-empty, that carry tag.
func (s *TaskStore) Filter(query, tag string) []model.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	out := make([]model.Task, 0)
	for _, t := range s.ListTasks() {
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if tag != "" && !t.HasTag(tag) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AllTags returns every tag in first-seen order.
func (s *TaskStore) AllTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	seen := make(map[string]bool)
	for _, t := range s.tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

func (s *TaskStore) Counts() model.Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CountTasks(s.tasks)
}

func (s *TaskStore) mustGet(id string) model.Task {
	t, _ := s.Get(id)
	return t
}

func (s *TaskStore) removeLocked(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	delete(s.index, id)
	delete(s.working, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
}

func (s *TaskStore) changed() {
	s.mu.RLock()
	fns := slices.Clone(s.onChange)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
