package update

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/notify"
	"github.com/sandeepkv93/fluidtasks/internal/scheduler"
	"github.com/sandeepkv93/fluidtasks/internal/store"
)

type fakeService struct {
	mu    sync.Mutex
	tasks []model.Task
	seq   int
}

func (f *fakeService) ListTasks(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeService) CreateTask(_ context.Context, draft model.NewTaskDraft) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := model.Task{ID: "new-" + string(rune('a'+f.seq)), Title: draft.Title, Tags: draft.Tags, DueDate: draft.DueDate}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeService) UpdateTask(_ context.Context, task model.Task) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == task.ID {
			f.tasks[i] = task
			return task, nil
		}
	}
	return model.Task{}, model.ErrNotFound
}

func (f *fakeService) ToggleTask(_ context.Context, id string) (model.ToggleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			return model.NewToggleResult(f.tasks[i], "", 10), nil
		}
	}
	return model.ToggleResult{}, model.ErrNotFound
}

func (f *fakeService) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakeService) GenerateBreakdown(_ context.Context, id string) ([]model.Subtask, error) {
	return []model.Subtask{{ID: "s1", Title: "first step"}}, nil
}

type fakeStats struct{}

func (fakeStats) Stats(context.Context) (model.Stats, error) {
	return model.Stats{Level: 2, XP: 40, StreakDays: 3}, nil
}

type fakeLocal struct {
	mu       sync.Mutex
	expanded []bool
}

func (f *fakeLocal) Profile(context.Context) (model.Profile, bool, error) {
	return model.Profile{Name: "Ada", Username: "ada", Interests: []string{"math"}}, true, nil
}

func (f *fakeLocal) Workplaces(context.Context) ([]model.Workplace, error) {
	return model.DefaultWorkplaces(), nil
}

func (f *fakeLocal) WorkplaceExpanded(context.Context) (bool, error) { return true, nil }

func (f *fakeLocal) SetWorkplaceExpanded(_ context.Context, expanded bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expanded = append(f.expanded, expanded)
	return nil
}

type fakeTrigger struct{ n int }

func (f *fakeTrigger) TriggerNow() { f.n++ }

type harness struct {
	svc      *fakeService
	store    *store.TaskStore
	notifier *notify.Dispatcher
	local    *fakeLocal
	trigger  *fakeTrigger
}

func newHarness(t *testing.T, tasks ...model.Task) (Model, *harness) {
	t.Helper()
	h := &harness{
		svc:     &fakeService{tasks: tasks},
		local:   &fakeLocal{},
		trigger: &fakeTrigger{},
	}
	h.store = store.New(h.svc)
	if err := h.store.Refresh(t.Context()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	h.notifier = notify.NewDispatcher(scheduler.NewEngine(8))
	m := NewModel(Deps{
		Context:      t.Context(),
		Store:        h.store,
		Notifier:     h.notifier,
		Gamification: gamification.New(fakeStats{}, h.notifier, nil),
		Local:        h.local,
		Reminders:    h.trigger,
		Now:          func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
	})
	return m, h
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("update returned %T", updated)
	}
	return next, cmd
}

func keys(t *testing.T, m Model, in ...string) Model {
	t.Helper()
	for _, k := range in {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = send(t, m, msg)
	}
	return m
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "a1", Title: "pay rent #home", Tags: []string{"home"}},
		{ID: "b2", Title: "write report #work", Tags: []string{"work"}},
		{ID: "b3", Title: "call mom", Subtasks: []model.Subtask{{ID: "s1", Title: "find number"}, {ID: "s2", Title: "dial"}}},
	}
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newHarness(t)
	if m.CurrentView != ViewBoard {
		t.Fatalf("expected default view %q, got %q", ViewBoard, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Palette != "/" {
		t.Fatalf("unexpected keys %+v", m.Keys)
	}
	if m.pending != 2 {
		t.Fatalf("expected refresh and stats loads pending, got %d", m.pending)
	}
	if !m.Workplaces.Expanded {
		t.Fatal("workplaces should start expanded")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newHarness(t)
	m = keys(t, m, "2")
	if m.CurrentView != ViewProgress {
		t.Fatalf("expected progress view, got %q", m.CurrentView)
	}
	m = keys(t, m, "3")
	if m.CurrentView != ViewWorkplaces {
		t.Fatalf("expected workplaces view, got %q", m.CurrentView)
	}
	m, _ = send(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewWorkplaces {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestBoardNavigationAndView(t *testing.T) {
	m, _ := newHarness(t, sampleTasks()...)
	m, _ = send(t, m, tasksRefreshedMsg{})
	if m.Status.Text != "3 task(s) loaded" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	m = keys(t, m, "j", "j", "j")
	if m.Cursor != 2 {
		t.Fatalf("cursor should clamp at last row, got %d", m.Cursor)
	}
	m = keys(t, m, "k")
	if m.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor)
	}
	out := m.View()
	for _, want := range []string{"pay rent", "write report", "call mom", "3 total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestTagCycleAndClear(t *testing.T) {
	m, _ := newHarness(t, sampleTasks()...)
	m = keys(t, m, "t")
	if m.Filter.Tag != "home" || len(m.visibleTasks()) != 1 {
		t.Fatalf("expected home filter, got %q (%d rows)", m.Filter.Tag, len(m.visibleTasks()))
	}
	m = keys(t, m, "t", "t")
	if m.Filter.Tag != "" {
		t.Fatalf("expected cycle to wrap to no filter, got %q", m.Filter.Tag)
	}
	m = keys(t, m, "t", "c")
	if m.Filter.Tag != "" || len(m.visibleTasks()) != 3 {
		t.Fatalf("expected filters cleared, got %+v", m.Filter)
	}
}

func TestToggleRaisesCompletionToast(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	m.pending = 0
	next, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil || next.pending != 1 {
		t.Fatalf("expected toggle command in flight, pending=%d", next.pending)
	}

	msg := toggleTaskCmd(t.Context(), h.store, next.deps.Gamification, "a1")()
	toggled, ok := msg.(taskToggledMsg)
	if !ok || toggled.err != nil {
		t.Fatalf("unexpected toggle msg %#v", msg)
	}
	if toggled.outcome != gamification.OutcomeCompletion {
		t.Fatalf("expected completion outcome, got %s", toggled.outcome)
	}
	v := h.notifier.View()
	if v.Toast == nil || v.Toast.Kind != notify.ToastCompletion || v.Toast.Message != gamification.CompletedMessage {
		t.Fatalf("expected completion toast, got %+v", v.Toast)
	}

	next, _ = send(t, next, toggled)
	if next.pending != 0 || !strings.HasPrefix(next.Status.Text, "completed: pay rent") {
		t.Fatalf("unexpected state pending=%d status=%q", next.pending, next.Status.Text)
	}
	if task, _ := h.store.Get("a1"); !task.Completed {
		t.Fatal("store should hold the server's completed copy")
	}
}

func TestAchievementOverlayRendered(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	h.notifier.Achievement(t.Context(), model.AchievementEvent{Message: "Level Up! You reached Level 3 🏆", XPGained: 10})
	out := m.View()
	if !strings.Contains(out, "Level Up! You reached Level 3") || !strings.Contains(out, "+10 XP") {
		t.Fatalf("overlay missing from view:\n%s", out)
	}
	m = keys(t, m, "esc")
	if h.notifier.View().Overlay != nil {
		t.Fatal("esc should dismiss the overlay")
	}
}

func TestAddAndDeleteFeedbackToasts(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	m, _ = send(t, m, taskAddedMsg{task: model.Task{ID: "n", Title: "new thing"}})
	v := h.notifier.View()
	if v.Toast == nil || v.Toast.Kind != notify.ToastFeedback || v.Toast.Message != TaskAddedMessage {
		t.Fatalf("expected added toast, got %+v", v.Toast)
	}

	m.Detail = DetailState{Open: true, TaskID: "a1"}
	if err := h.store.DeleteTask(t.Context(), "a1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	m, _ = send(t, m, taskDeletedMsg{id: "a1"})
	if m.Detail.Open {
		t.Fatal("detail should close when its task is deleted")
	}
	if v := h.notifier.View(); v.Toast == nil || v.Toast.Message != TaskDeletedMessage {
		t.Fatalf("expected deleted toast, got %+v", v.Toast)
	}
}

func TestFailedOperationSetsErrorStatus(t *testing.T) {
	m, _ := newHarness(t)
	m, _ = send(t, m, taskAddedMsg{err: model.ErrBusy})
	if !m.Status.IsError || m.Status.Text != "add already in progress" {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	if m.LastError != nil {
		t.Fatal("busy should not be recorded as last error")
	}
	m, _ = send(t, m, breakdownMsg{id: "x", err: errors.Join(model.ErrConflict, errors.New("dup"))})
	if m.Status.Text != "breakdown: task already has subtasks" || m.LastError == nil {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestQuickAddSubmitsTitleAndDue(t *testing.T) {
	m, h := newHarness(t)
	m.pending = 0
	m = keys(t, m, "a")
	if !m.QuickAdd.Active {
		t.Fatal("quick add should be active")
	}
	m = keys(t, m, "buy milk", " ", "due:+2h")
	if m.QuickAdd.Input != "buy milk due:+2h" {
		t.Fatalf("unexpected input %q", m.QuickAdd.Input)
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.QuickAdd.Active || cmd == nil || m.pending != 1 {
		t.Fatalf("expected submitted add, active=%v pending=%d", m.QuickAdd.Active, m.pending)
	}

	msg := addTaskCmd(t.Context(), h.store, "buy milk", nil)()
	if added, ok := msg.(taskAddedMsg); !ok || added.err != nil || added.task.Title != "buy milk" {
		t.Fatalf("unexpected add msg %#v", msg)
	}
}

func TestQuickAddRejectsBadDue(t *testing.T) {
	m, _ := newHarness(t)
	m = keys(t, m, "a", "x", " ", "due:someday", "enter")
	if !m.Status.IsError || !m.QuickAdd.Active {
		t.Fatalf("expected error with quick add still open, got %+v active=%v", m.Status, m.QuickAdd.Active)
	}
	m = keys(t, m, "esc")
	if m.QuickAdd.Active {
		t.Fatal("esc should close quick add")
	}
}

func TestPaletteTagAndFind(t *testing.T) {
	m, _ := newHarness(t, sampleTasks()...)
	m = keys(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("palette should be active")
	}
	m = keys(t, m, "tag", " ", "#work", "enter")
	if m.Palette.Active {
		t.Fatal("palette should close after enter")
	}
	if m.Filter.Tag != "work" || m.Status.Text != "tag filter: #work" {
		t.Fatalf("unexpected filter %+v status %q", m.Filter, m.Status.Text)
	}

	m = keys(t, m, "/", "find", " ", "REPORT", "enter")
	if m.Filter.Query != "REPORT" || len(m.visibleTasks()) != 1 {
		t.Fatalf("expected one search hit, got %d", len(m.visibleTasks()))
	}
}

func TestPaletteErrorsAndSound(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	m = keys(t, m, "/", "dance", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, string(commands.ErrCodeUnknownCommand)) {
		t.Fatalf("expected unknown command status, got %+v", m.Status)
	}

	m = keys(t, m, "/", "sound", " ", "off", "enter")
	if h.notifier.Config().Sound {
		t.Fatal("sound should be off")
	}
	m = keys(t, m, "/", "remind", "enter")
	if h.trigger.n != 1 {
		t.Fatalf("expected one reminder trigger, got %d", h.trigger.n)
	}
	m = keys(t, m, "/", "toggle", " ", "9", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task at position 9") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestPaletteToggleByPosition(t *testing.T) {
	m, _ := newHarness(t, sampleTasks()...)
	m.pending = 0
	m = keys(t, m, "/", "done", " ", "2")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.pending != 1 {
		t.Fatalf("expected toggle in flight, pending=%d", m.pending)
	}
	if !strings.Contains(m.Status.Text, "write report") {
		t.Fatalf("expected second task targeted, got %q", m.Status.Text)
	}
}

func TestResolveTarget(t *testing.T) {
	all := sampleTasks()
	visible := all[1:]
	got, err := resolveTarget(visible, all, "1")
	if err != nil || got.ID != "b2" {
		t.Fatalf("position resolves against visible rows, got %q %v", got.ID, err)
	}
	got, err = resolveTarget(visible, all, "a")
	if err != nil || got.ID != "a1" {
		t.Fatalf("prefix should match a1, got %q %v", got.ID, err)
	}
	if _, err := resolveTarget(visible, all, "b"); err == nil {
		t.Fatal("ambiguous prefix should fail")
	}
	if got, err := resolveTarget(visible, all, "b3"); err != nil || got.ID != "b3" {
		t.Fatalf("exact id should win, got %q %v", got.ID, err)
	}
	if _, err := resolveTarget(visible, all, "zz"); err == nil {
		t.Fatal("unknown id should fail")
	}
}

func TestDetailSubtaskEditAndDiscard(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	m = keys(t, m, "j", "j", "enter")
	if !m.Detail.Open || m.Detail.TaskID != "b3" {
		t.Fatalf("expected detail for b3, got %+v", m.Detail)
	}
	if !strings.Contains(m.View(), "find number") {
		t.Fatal("detail pane should list subtasks")
	}
	m = keys(t, m, "j", " ")
	if !h.store.Dirty("b3") {
		t.Fatal("subtask toggle should dirty the working copy")
	}
	if task, _ := h.store.Get("b3"); task.Subtasks[1].Completed {
		t.Fatal("authoritative task must not change before save")
	}
	m = keys(t, m, "esc")
	if m.Detail.Open || h.store.Dirty("b3") {
		t.Fatal("esc should discard edits and close detail")
	}
}

func TestDetailSaveSendsWorkingCopy(t *testing.T) {
	m, h := newHarness(t, sampleTasks()...)
	m.pending = 0
	m = keys(t, m, "j", "j", "enter", " ")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	if cmd == nil || m.pending != 1 {
		t.Fatal("expected save in flight")
	}
	msg := saveTaskCmd(t.Context(), h.store, "b3")()
	m, _ = send(t, m, msg)
	if m.Status.Text != "subtasks saved" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if task, _ := h.store.Get("b3"); !task.Subtasks[0].Completed {
		t.Fatal("saved task should carry the subtask edit")
	}
}

func TestBreakdownRefusedWhenSubtasksExist(t *testing.T) {
	m, _ := newHarness(t, sampleTasks()...)
	m = keys(t, m, "j", "j", "b")
	if !m.Status.IsError || m.Status.Text != "task already has subtasks" {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}

func TestProgressViewShowsStatsAndReport(t *testing.T) {
	m, _ := newHarness(t)
	if err := m.deps.Gamification.Load(t.Context()); err != nil {
		t.Fatalf("load stats: %v", err)
	}
	m, _ = send(t, m, statsLoadedMsg{})
	report := model.WeeklyReport{
		Labels:         []string{"Wed", "Thu", "Fri", "Sat", "Sun", "Mon", "Tue"},
		Completed:      []int{0, 1, 0, 0, 2, 0, 1},
		Pending:        []int{1, 0, 0, 0, 0, 0, 2},
		Total:          7,
		TotalCompleted: 4,
	}
	m, _ = send(t, m, reportLoadedMsg{report: report})
	m = keys(t, m, "2")
	out := m.View()
	for _, want := range []string{"level 2", "40 / 200 xp", "streak: 3", "total: 7", "Thu"} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress view missing %q:\n%s", want, out)
		}
	}
}

func TestWorkplacesExpandPersists(t *testing.T) {
	m, h := newHarness(t)
	msg := loadLocalCmd(t.Context(), h.local)()
	m, _ = send(t, m, msg)
	if len(m.Workplaces.Items) != 5 || m.Workplaces.Profile == nil {
		t.Fatalf("unexpected workplaces state %+v", m.Workplaces)
	}
	m = keys(t, m, "3")
	if !strings.Contains(m.View(), "Hello, Ada") {
		t.Fatal("greeting should use the profile name")
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.Workplaces.Expanded || cmd == nil {
		t.Fatal("e should collapse and persist")
	}
	cmd()
	if len(h.local.expanded) != 1 || h.local.expanded[0] {
		t.Fatalf("expected persisted collapsed flag, got %v", h.local.expanded)
	}
}

func TestWorkplaceOpenUsesOpener(t *testing.T) {
	m, h := newHarness(t)
	var opened string
	m.deps.OpenURL = func(url string) error {
		opened = url
		return nil
	}
	m, _ = send(t, m, loadLocalCmd(t.Context(), h.local)())
	m = keys(t, m, "3", "j")
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	if cmd == nil {
		t.Fatal("expected open command")
	}
	if status, ok := cmd().(SetStatusMsg); !ok || status.IsError {
		t.Fatalf("unexpected open result %#v", status)
	}
	if opened != "https://docs.google.com" {
		t.Fatalf("opened %q", opened)
	}
}

func TestConfigReloadedAndStatus(t *testing.T) {
	m, _ := newHarness(t)
	m, cmd := send(t, m, ConfigReloadedMsg{})
	if m.Status.Text != "preferences reloaded" || cmd == nil {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	m, _ = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatal("status should clear")
	}
	m, _ = send(t, m, ConfigReloadedMsg{Err: errors.New("bad yaml")})
	if !m.Status.IsError {
		t.Fatal("reload failure should be an error status")
	}
	m, _ = send(t, m, AppErrorMsg{Err: errors.New("boom")})
	if m.LastError == nil || m.Status.Text != "boom" {
		t.Fatalf("unexpected error state %+v", m.Status)
	}
}

func TestHelpToggleAndQuit(t *testing.T) {
	m, _ := newHarness(t)
	m = keys(t, m, "?")
	if !m.HelpVisible || !strings.Contains(m.View(), "sound on|off") {
		t.Fatal("help panel should list palette commands")
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Fatal("quitting model renders nothing")
	}
}
