package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrInvalidPriority = errors.New("model: invalid task priority")

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DefaultDueOffset is applied by the store when a task is created without a due date.
const DefaultDueOffset = 24 * time.Hour

type Subtask struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Tags              []string   `json:"tags"`
	DueDate           *time.Time `json:"due_date"`
	Completed         bool       `json:"completed"`
	Subtasks          []Subtask  `json:"subtasks"`
	Priority          Priority   `json:"priority,omitempty"`
	PriorityReasoning string     `json:"priority_reasoning,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: task id is required", ErrValidation)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task title is required", ErrValidation)
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return nil
}

// ReminderEligible reports whether the reminder sweep should ask about this task.
func (t Task) ReminderEligible() bool {
	return !t.Completed && t.DueDate != nil
}

func (t Task) HasSubtasks() bool {
	return len(t.Subtasks) > 0
}

func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = slices.Clone(t.Tags)
	}
	if t.Subtasks != nil {
		out.Subtasks = slices.Clone(t.Subtasks)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

func (t Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			n++
		}
	}
	return n
}

// NewTaskDraft is the payload sent to the remote service on creation.
type NewTaskDraft struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
	Tags    []string   `json:"tags"`
}

type Counts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Done    int `json:"done"`
}

func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Done++
		} else {
			c.Pending++
		}
	}
	return c
}
