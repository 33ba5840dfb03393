// Package api is the HTTP client for the remote FluidTasks service.
//
// All failures are classified into the model error taxonomy: a 404 becomes
// model.ErrNotFound, anything else that prevents a usable response becomes
// model.ErrTransport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

const defaultTimeout = 10 * time.Second

// Client talks to the task service over HTTP/JSON.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New returns a Client rooted at baseURL, e.g. "http://127.0.0.1:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, fmt.Errorf("%w: server url is required", model.ErrValidation)
	}
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid server url %q", model.ErrValidation, baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTasks fetches GET /tasks.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []wireTask
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return toTasks(out)
}

// GetTask fetches GET /tasks/{id}.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out wireTask
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return model.Task{}, err
	}
	return out.toModel()
}

// CreateTask posts a new task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, draft model.NewTaskDraft) (model.Task, error) {
	body := createRequest{Title: draft.Title, Tags: draft.Tags}
	if body.Tags == nil {
		body.Tags = []string{}
	}
	if draft.DueDate != nil {
		s := draft.DueDate.UTC().Format(time.RFC3339)
		body.DueDate = &s
	}
	var out wireTask
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &out); err != nil {
		return model.Task{}, err
	}
	return out.toModel()
}

// UpdateTask saves a full task through PUT /tasks/{id}.
func (c *Client) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	body := fromModel(task)
	var out wireTask
	if err := c.do(ctx, http.MethodPut, taskPath(task.ID), body, &out); err != nil {
		return model.Task{}, err
	}
	return out.toModel()
}

// ToggleTask flips completion. The service may answer with the wrapped
// {task, achievement_update, xp_gained} shape or with a bare task; the
// wrapped form wins when both could apply.
func (c *Client) ToggleTask(ctx context.Context, id string) (model.ToggleResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, taskPath(id)+"/toggle", nil, &raw); err != nil {
		return model.ToggleResult{}, err
	}
	return decodeToggle(raw)
}

// DeleteTask removes a task. A 404 is reported as model.ErrNotFound so the
// caller can decide whether that counts as success.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// GenerateBreakdown asks the service for subtasks of a task.
func (c *Client) GenerateBreakdown(ctx context.Context, id string) ([]model.Subtask, error) {
	var out []model.Subtask
	if err := c.do(ctx, http.MethodPost, taskPath(id)+"/breakdown", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reminder fetches the reminder message for a task.
func (c *Client) Reminder(ctx context.Context, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, taskPath(id)+"/reminder", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Stats fetches GET /gamification/stats.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, http.MethodGet, "/gamification/stats", nil, &out); err != nil {
		return model.Stats{}, err
	}
	return out, nil
}

// WeeklyReport fetches GET /reports/weekly.
func (c *Client) WeeklyReport(ctx context.Context) (model.WeeklyReport, error) {
	var out model.WeeklyReport
	if err := c.do(ctx, http.MethodGet, "/reports/weekly", nil, &out); err != nil {
		return model.WeeklyReport{}, err
	}
	return out, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("%w: building %s %s: %v", model.ErrTransport, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", model.ErrNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(detail)))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// TransportError describes a failed exchange with the service. It matches
// model.ErrTransport under errors.Is.
type TransportError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{model.ErrTransport, e.Err}
}
