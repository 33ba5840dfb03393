package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

// The service emits naive local timestamps as well as RFC3339 ones.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type wireTime struct {
	t *time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		w.t = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		w.t = nil
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	w.t = &parsed
	return nil
}

// ParseTimestamp accepts RFC3339 and the naive local layouts the service emits.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

type wireTask struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Tags              []string        `json:"tags"`
	DueDate           wireTime        `json:"due_date"`
	Completed         bool            `json:"completed"`
	Subtasks          []model.Subtask `json:"subtasks"`
	Priority          string          `json:"priority"`
	PriorityReasoning string          `json:"priority_reasoning"`
	CreatedAt         wireTime        `json:"created_at"`
}

func (w wireTask) toModel() (model.Task, error) {
	task := model.Task{
		ID:                w.ID,
		Title:             w.Title,
		Description:       w.Description,
		Tags:              w.Tags,
		DueDate:           w.DueDate.t,
		Completed:         w.Completed,
		Subtasks:          w.Subtasks,
		Priority:          model.Priority(w.Priority),
		PriorityReasoning: w.PriorityReasoning,
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
	if w.CreatedAt.t != nil {
		task.CreatedAt = *w.CreatedAt.t
	}
	if task.Priority != "" && !task.Priority.IsValid() {
		// Priority is display-only; an unknown value is kept out of the model.
		task.Priority = ""
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: server returned invalid task: %v", model.ErrTransport, err)
	}
	return task, nil
}

func toTasks(in []wireTask) ([]model.Task, error) {
	out := make([]model.Task, 0, len(in))
	for _, w := range in {
		task, err := w.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

type createRequest struct {
	Title   string   `json:"title"`
	DueDate *string  `json:"due_date"`
	Tags    []string `json:"tags"`
}

type updateRequest struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	Tags              []string        `json:"tags"`
	DueDate           *string         `json:"due_date"`
	Completed         bool            `json:"completed"`
	Subtasks          []model.Subtask `json:"subtasks"`
	Priority          string          `json:"priority,omitempty"`
	PriorityReasoning string          `json:"priority_reasoning,omitempty"`
}

func fromModel(t model.Task) updateRequest {
	req := updateRequest{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Tags:              t.Tags,
		Completed:         t.Completed,
		Subtasks:          t.Subtasks,
		Priority:          string(t.Priority),
		PriorityReasoning: t.PriorityReasoning,
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	if req.Subtasks == nil {
		req.Subtasks = []model.Subtask{}
	}
	if t.DueDate != nil {
		s := t.DueDate.UTC().Format(time.RFC3339)
		req.DueDate = &s
	}
	return req
}

type wrappedToggle struct {
	Task              *wireTask `json:"task"`
	AchievementUpdate *string   `json:"achievement_update"`
	XPGained          *int      `json:"xp_gained"`
}

func decodeToggle(raw json.RawMessage) (model.ToggleResult, error) {
	var wrapped wrappedToggle
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Task != nil {
		task, err := wrapped.Task.toModel()
		if err != nil {
			return model.ToggleResult{}, err
		}
		achievement := ""
		if wrapped.AchievementUpdate != nil {
			achievement = *wrapped.AchievementUpdate
		}
		xp := 0
		if wrapped.XPGained != nil {
			xp = *wrapped.XPGained
		}
		return model.NewToggleResult(task, achievement, xp), nil
	}

	var bare wireTask
	if err := json.Unmarshal(raw, &bare); err != nil {
		return model.ToggleResult{}, fmt.Errorf("%w: decoding toggle response: %v", model.ErrTransport, err)
	}
	task, err := bare.toModel()
	if err != nil {
		return model.ToggleResult{}, err
	}
	return model.NewToggleResult(task, "", 0), nil
}
