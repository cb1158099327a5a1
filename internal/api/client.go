package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandeepkv93/pmboard/internal/model"
)

var ErrProjectNotFound = errors.New("api: project not found")

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the project board REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type projectsEnvelope struct {
	Projects []model.ProjectSummary `json:"projects"`
}

type projectEnvelope struct {
	Project *model.Project `json:"project"`
	TimeLog model.TimeLog  `json:"timeLog"`
	Error   string         `json:"error"`
}

type statusEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ListProjects fetches the project roster.
// GET /api/projects
func (c *Client) ListProjects(ctx context.Context) ([]model.ProjectSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var out projectsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("api: decode projects: %w", err)
	}
	if out.Projects == nil {
		out.Projects = []model.ProjectSummary{}
	}
	return out.Projects, nil
}

// GetProject fetches one project with its tasks.
// GET /api/project/{id}
func (c *Client) GetProject(ctx context.Context, id string) (model.Project, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/project/"+url.PathEscape(id), nil)
	if err != nil {
		return model.Project{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return model.Project{}, statusError(resp)
	}
	var out projectEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return model.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return model.Project{}, fmt.Errorf("api: decode project: %w", err)
	}
	if out.Error != "" || resp.StatusCode == http.StatusNotFound {
		return model.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if out.Project == nil {
		return model.Project{}, errors.New("api: project missing from response")
	}
	if out.Project.Tasks == nil {
		out.Project.Tasks = []model.Task{}
	}
	return *out.Project, nil
}

// ToggleTask flips the completion flag of a task.
// POST /api/project/{id}/task/{taskId}/toggle
func (c *Client) ToggleTask(ctx context.Context, projectID, taskID string) error {
	path := fmt.Sprintf("/api/project/%s/task/%s/toggle", url.PathEscape(projectID), url.PathEscape(taskID))
	return c.postStatus(ctx, path, nil)
}

// LogTime records a finished timer session against a task.
// POST /api/project/{id}/task/{taskId}/time
func (c *Client) LogTime(ctx context.Context, projectID, taskID string, entry model.TimeEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/api/project/%s/task/%s/time", url.PathEscape(projectID), url.PathEscape(taskID))
	return c.postStatus(ctx, path, body)
}

func (c *Client) postStatus(ctx context.Context, path string, body []byte) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	var out statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("api: decode status: %w", err)
	}
	if out.Error != "" {
		return fmt.Errorf("api: %s: %s", path, out.Error)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}
	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)
	return resp, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		Method: resp.Request.Method,
		Path:   resp.Request.URL.Path,
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
