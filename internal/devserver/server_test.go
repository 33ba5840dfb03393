package devserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/fluidtasks/internal/api"
	"github.com/sandeepkv93/fluidtasks/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newClient(t *testing.T, opts ...Option) (*Server, *api.Client) {
	t.Helper()
	srv := NewServer(opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	client, err := api.New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return srv, client
}

func TestSeedTask(t *testing.T) {
	_, client := newClient(t)
	tasks, err := client.ListTasks(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Explore FluidTasks App" || tasks[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected seed %+v", tasks)
	}
	if tasks[0].DueDate != nil {
		t.Fatalf("seed task should have no due date")
	}
}

func TestCreateAssignsPriorityAndKeepsTags(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, client := newClient(t, WithoutSeed(), WithClock(func() time.Time { return now }))

	due := now.Add(2 * time.Hour)
	task, err := client.CreateTask(t.Context(), model.NewTaskDraft{Title: "Pay rent #home", DueDate: &due, Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" || task.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatalf("due date not preserved: %v", task.DueDate)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "home" {
		t.Fatalf("tags not preserved: %v", task.Tags)
	}

	got, err := client.GetTask(t.Context(), task.ID)
	if err != nil || got.Title != "Pay rent #home" {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestUnknownIDIsNotFound(t *testing.T) {
	_, client := newClient(t, WithoutSeed())
	ctx := t.Context()

	if _, err := client.GetTask(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := client.ToggleTask(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("toggle: expected ErrNotFound, got %v", err)
	}
	if err := client.DeleteTask(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := client.GenerateBreakdown(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("breakdown: expected ErrNotFound, got %v", err)
	}
	if _, err := client.Reminder(ctx, "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("reminder: expected ErrNotFound, got %v", err)
	}
}

func TestToggleAwardsXPAndLevelsUp(t *testing.T) {
	_, client := newClient(t, WithoutSeed())
	ctx := t.Context()

	var last model.ToggleResult
	for i := 0; i < 10; i++ {
		task, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "chore"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		last, err = client.ToggleTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if i < 9 && last.Kind != model.PlainToggle {
			t.Fatalf("toggle %d: expected plain toggle, got %s", i, last.Kind)
		}
		if !last.Task.Completed || last.XPGained != 10 {
			t.Fatalf("toggle %d: unexpected result %+v", i, last)
		}
	}
	if last.Kind != model.LevelUp || last.Achievement == nil || last.Achievement.Message != "Level Up! You reached Level 2 🏆" {
		t.Fatalf("expected level up on the tenth completion, got %+v", last)
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Level != 2 || stats.XP != 100 || stats.TasksCompletedToday != 10 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.Badges) != 1 || stats.Badges[0] != "Level 2" {
		t.Fatalf("unexpected badges %v", stats.Badges)
	}

	undone, err := client.ToggleTask(ctx, last.Task.ID)
	if err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if undone.Task.Completed || undone.XPGained != 0 || undone.Kind != model.PlainToggle {
		t.Fatalf("unexpected untoggle %+v", undone)
	}
}

func TestBreakdownAppendsSubtasks(t *testing.T) {
	_, client := newClient(t, WithoutSeed())
	ctx := t.Context()

	task, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "Write blog post"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	subtasks, err := client.GenerateBreakdown(ctx, task.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(subtasks) != 4 || subtasks[0].Title != "Research topic" || subtasks[0].ID == "" {
		t.Fatalf("unexpected subtasks %+v", subtasks)
	}
	again, err := client.GenerateBreakdown(ctx, task.ID)
	if err != nil {
		t.Fatalf("second breakdown: %v", err)
	}
	if len(again) != 8 {
		t.Fatalf("server appends on every call, got %d", len(again))
	}
}

func TestUpdateReplacesSubtasksAndClearsDueDate(t *testing.T) {
	_, client := newClient(t, WithoutSeed())
	ctx := t.Context()

	due := time.Now().Add(48 * time.Hour)
	task, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "Ship project", DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	subtasks, err := client.GenerateBreakdown(ctx, task.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}

	task.Subtasks = subtasks
	task.Subtasks[1].Completed = true
	task.DueDate = nil
	updated, err := client.UpdateTask(ctx, task)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared")
	}
	if !updated.Subtasks[1].Completed || updated.Subtasks[1].ID != subtasks[1].ID {
		t.Fatalf("subtask state not saved: %+v", updated.Subtasks)
	}
}

func TestReminderWording(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, client := newClient(t, WithoutSeed(), WithClock(func() time.Time { return now }))
	ctx := t.Context()

	due := now.Add(40 * time.Minute)
	soon, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "Standup", DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	msg, err := client.Reminder(ctx, soon.ID)
	if err != nil {
		t.Fatalf("reminder: %v", err)
	}
	if !model.IsReminderWorthy(msg) {
		t.Fatalf("expected reminder-worthy message, got %q", msg)
	}

	undated, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "Someday"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	msg, err = client.Reminder(ctx, undated.ID)
	if err != nil || msg != "No due date set for this task." {
		t.Fatalf("unexpected reminder %q, %v", msg, err)
	}
}

func TestDeleteAndWeeklyReport(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, client := newClient(t, WithClock(func() time.Time { return now }))
	ctx := t.Context()

	task, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	extra, err := client.CreateTask(ctx, model.NewTaskDraft{Title: "two"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := client.DeleteTask(ctx, extra.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	report, err := client.WeeklyReport(ctx)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Labels) != 7 || report.Labels[6] != "Tue" || report.Labels[0] != "Wed" {
		t.Fatalf("unexpected labels %v", report.Labels)
	}
	if report.Total != 2 || report.TotalCompleted != 1 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.Completed[6] != 1 || report.Pending[6] != 1 {
		t.Fatalf("today's bucket should hold the seed and the completed task: %+v", report)
	}
}

func TestRootAndValidation(t *testing.T) {
	srv := NewServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "FluidTasks API is running") {
		t.Fatalf("unexpected root response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank title, got %d", rec.Code)
	}
}
