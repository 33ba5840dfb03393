// Package devserver is an in-memory implementation of the FluidTasks HTTP
// service, used by `fluidtasks serve` and by end-to-end tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sandeepkv93/fluidtasks/internal/api"
	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const (
	xpPerCompletion = 10
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	router *gin.Engine
	logger *slog.Logger
	now    func() time.Time
	seed   bool

	mu    sync.Mutex
	tasks map[string]*model.Task
	order []string
	stats model.Stats
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithoutSeed starts the server with no tasks.
func WithoutSeed() Option {
	return func(s *Server) { s.seed = false }
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		seed:   true,
		tasks:  make(map[string]*model.Task),
		stats:  model.Stats{Level: 1, Badges: []string{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed {
		s.insert(&model.Task{
			ID:                uuid.NewString(),
			Title:             "Explore FluidTasks App",
			Tags:              []string{},
			Subtasks:          []model.Subtask{},
			Priority:          model.PriorityHigh,
			PriorityReasoning: "Welcome to your new productivity tool!",
			CreatedAt:         s.now(),
		})
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/", s.handleRoot)
	router.GET("/tasks", s.handleListTasks)
	router.POST("/tasks", s.handleCreateTask)
	router.GET("/tasks/:id", s.handleGetTask)
	router.PUT("/tasks/:id", s.handleUpdateTask)
	router.DELETE("/tasks/:id", s.handleDeleteTask)
	router.PUT("/tasks/:id/toggle", s.handleToggleTask)
	router.POST("/tasks/:id/breakdown", s.handleBreakdown)
	router.GET("/tasks/:id/reminder", s.handleReminder)
	router.GET("/gamification/stats", s.handleStats)
	router.GET("/reports/weekly", s.handleWeeklyReport)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) insert(t *model.Task) {
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "FluidTasks API is running 🚀"})
}

func (s *Server) handleListTasks(c *gin.Context) {
	s.mu.Lock()
	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

// taskInput covers both creation and update. Absent fields are left alone on
// update; DueDate stays raw so an explicit null can clear it.
type taskInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     json.RawMessage `json:"due_date"`
	Priority    *string         `json:"priority"`
	Tags        []string        `json:"tags"`
	Subtasks    []model.Subtask `json:"subtasks"`
	Completed   *bool           `json:"completed"`
}

// dueDate reports whether the field was present and, if so, its value.
func (in taskInput) dueDate() (*time.Time, bool, error) {
	if len(in.DueDate) == 0 {
		return nil, false, nil
	}
	if string(in.DueDate) == "null" {
		return nil, true, nil
	}
	var raw string
	if err := json.Unmarshal(in.DueDate, &raw); err != nil {
		return nil, true, fmt.Errorf("due_date must be a string")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, true, nil
	}
	t, err := api.ParseTimestamp(raw)
	if err != nil {
		return nil, true, err
	}
	return &t, true, nil
}

func unprocessable(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in taskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		unprocessable(c, err)
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		unprocessable(c, errors.New("title is required"))
		return
	}
	due, _, err := in.dueDate()
	if err != nil {
		unprocessable(c, err)
		return
	}

	now := s.now()
	priority, reasoning := AnalyzePriority(*in.Title, due, now)
	task := &model.Task{
		ID:                uuid.NewString(),
		Title:             *in.Title,
		Tags:              in.Tags,
		DueDate:           due,
		Subtasks:          withSubtaskIDs(in.Subtasks),
		Priority:          priority,
		PriorityReasoning: reasoning,
		CreatedAt:         now,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	s.mu.Lock()
	s.insert(task)
	out := task.Clone()
	s.mu.Unlock()

	s.logger.Info("task created", "task_id", out.ID, "priority", out.Priority)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetTask(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	var out model.Task
	if ok {
		out = task.Clone()
	}
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var in taskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		unprocessable(c, err)
		return
	}
	due, dueSet, err := in.dueDate()
	if err != nil {
		unprocessable(c, err)
		return
	}

	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	if !ok {
		s.mu.Unlock()
		notFound(c)
		return
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if dueSet {
		task.DueDate = due
	}
	if in.Priority != nil && model.Priority(*in.Priority).IsValid() {
		task.Priority = model.Priority(*in.Priority)
	}
	if in.Tags != nil {
		task.Tags = in.Tags
	}
	if in.Subtasks != nil {
		task.Subtasks = withSubtaskIDs(in.Subtasks)
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	out := task.Clone()
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	s.logger.Info("task deleted", "task_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (s *Server) handleToggleTask(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	if !ok {
		s.mu.Unlock()
		notFound(c)
		return
	}
	task.Completed = !task.Completed

	var achievement *string
	xp := 0
	if task.Completed {
		xp = xpPerCompletion
		s.stats.XP += xp
		s.stats.TasksCompletedToday++
		if s.stats.XP >= s.stats.NextLevelXP() {
			s.stats.Level++
			s.stats.Badges = append(s.stats.Badges, fmt.Sprintf("Level %d", s.stats.Level))
			msg := fmt.Sprintf("Level Up! You reached Level %d 🏆", s.stats.Level)
			achievement = &msg
		}
	}
	out := task.Clone()
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"task":               out,
		"achievement_update": achievement,
		"xp_gained":          xp,
	})
}

func (s *Server) handleBreakdown(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	if !ok {
		s.mu.Unlock()
		notFound(c)
		return
	}
	for _, title := range GenerateSubtasks(task.Title) {
		task.Subtasks = append(task.Subtasks, model.Subtask{ID: uuid.NewString(), Title: title})
	}
	out := append([]model.Subtask(nil), task.Subtasks...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleReminder(c *gin.Context) {
	s.mu.Lock()
	task, ok := s.tasks[c.Param("id")]
	var title string
	var due *time.Time
	if ok {
		title = task.Title
		due = task.DueDate
	}
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	if due == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No due date set for this task."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ReminderMessage(title, *due, s.now())})
}

func (s *Server) handleStats(c *gin.Context) {
	s.mu.Lock()
	out := s.stats
	out.Badges = append([]string{}, s.stats.Badges...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

// handleWeeklyReport buckets tasks by creation day over the last seven days,
// oldest first.
func (s *Server) handleWeeklyReport(c *gin.Context) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	report := model.WeeklyReport{
		Labels:    make([]string, 7),
		Completed: make([]int, 7),
		Pending:   make([]int, 7),
	}
	for i := 0; i < 7; i++ {
		report.Labels[i] = today.AddDate(0, 0, i-6).Format("Mon")
	}

	s.mu.Lock()
	for _, id := range s.order {
		task := s.tasks[id]
		report.Total++
		if task.Completed {
			report.TotalCompleted++
		}
		created := task.CreatedAt.In(now.Location())
		day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, now.Location())
		diff := int(math.Round(today.Sub(day).Hours() / 24))
		if diff < 0 || diff > 6 {
			continue
		}
		if task.Completed {
			report.Completed[6-diff]++
		} else {
			report.Pending[6-diff]++
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, report)
}

func withSubtaskIDs(in []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, 0, len(in))
	for _, st := range in {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		out = append(out, st)
	}
	return out
}
