package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/notify"
	"github.com/sandeepkv93/fluidtasks/internal/store"
)

type View string

const (
	ViewBoard      View = "Board"
	ViewProgress   View = "Progress"
	ViewWorkplaces View = "Workplaces"
)

const (
	TaskAddedMessage   = "Task added ✨"
	TaskDeletedMessage = "Task deleted 🗑️"
)

type FilterState struct {
	Query string
	Tag   string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Board      string
	Progress   string
	Workplaces string
	Palette    string
	Help       string
	Quit       string
}

type DetailState struct {
	Open      bool
	TaskID    string
	SubCursor int
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type QuickAddState struct {
	Active bool
	Input  string
}

type WorkplaceState struct {
	Items    []model.Workplace
	Expanded bool
	Cursor   int
	Profile  *model.Profile
	Loaded   bool
}

// ReportSource is the weekly report endpoint.
type ReportSource interface {
	WeeklyReport(ctx context.Context) (model.WeeklyReport, error)
}

// LocalStore is the persisted profile and workplace state.
type LocalStore interface {
	Profile(ctx context.Context) (model.Profile, bool, error)
	Workplaces(ctx context.Context) ([]model.Workplace, error)
	WorkplaceExpanded(ctx context.Context) (bool, error)
	SetWorkplaceExpanded(ctx context.Context, expanded bool) error
}

// ReminderTrigger asks the reminder loop for an immediate sweep.
type ReminderTrigger interface {
	TriggerNow()
}

type Deps struct {
	Context      context.Context
	Store        *store.TaskStore
	Notifier     *notify.Dispatcher
	Gamification *gamification.Reconciler
	Reports      ReportSource
	Local        LocalStore
	Reminders    ReminderTrigger
	Logger       *slog.Logger
	Now          func() time.Time
	// OpenURL launches a workplace shortcut; nil disables opening.
	OpenURL func(url string) error
}

type Model struct {
	CurrentView View
	Cursor      int
	Filter      FilterState
	Detail      DetailState
	QuickAdd    QuickAddState
	Palette     CommandPaletteState
	Workplaces  WorkplaceState
	Report      *model.WeeklyReport
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	Width       int
	Height      int

	deps    Deps
	pending int

	quickAddInput textinput.Model
	commandInput  textinput.Model
	loadSpinner   spinner.Model
	xpProgress    progress.Model
	reportTable   table.Model
	detailView    viewport.Model
	helpModel     help.Model
	detailKey     string
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// ConfigReloadedMsg is sent by the config watcher after preferences change.
type ConfigReloadedMsg struct {
	Err error
}

type tasksRefreshedMsg struct{ err error }

type taskAddedMsg struct {
	task model.Task
	err  error
}

type taskToggledMsg struct {
	id      string
	result  model.ToggleResult
	outcome gamification.Outcome
	err     error
}

type taskDeletedMsg struct {
	id  string
	err error
}

type breakdownMsg struct {
	id    string
	count int
	err   error
}

type taskSavedMsg struct {
	id  string
	err error
}

type statsLoadedMsg struct{ err error }

type reportLoadedMsg struct {
	report model.WeeklyReport
	err    error
}

type localLoadedMsg struct {
	workplaces []model.Workplace
	expanded   bool
	profile    *model.Profile
	err        error
}

type notifyChangedMsg struct{}

type permissionMsg struct{ permission notify.Permission }

func NewModel(deps Deps) Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := Model{
		CurrentView: ViewBoard,
		Workplaces:  WorkplaceState{Expanded: true},
		Keys: GlobalKeyMap{
			Board:      "1",
			Progress:   "2",
			Workplaces: "3",
			Palette:    "/",
			Help:       "?",
			Quit:       "q",
		},
		deps: deps,
	}
	// Init starts these loads; their result messages count pending back down.
	for _, loads := range []bool{deps.Store != nil, deps.Gamification != nil, deps.Reports != nil} {
		if loads {
			m.pending++
		}
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "title #tag due:+2h"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.xpProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	cols := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Done", Width: 6},
		{Title: "Pending", Width: 8},
	}
	m.reportTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.detailView = viewport.New(56, 12)
	m.helpModel = help.New()
}
