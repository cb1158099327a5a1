package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/storage"
)

const maxBodyBytes = 1 << 20

// Server serves the project board REST API from a repository.
type Server struct {
	repo storage.Repository
	log  *slog.Logger
	now  func() time.Time

	// toggles are read-modify-write; serialize them.
	toggleMu sync.Mutex
}

func New(repo storage.Repository, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{repo: repo, log: log, now: time.Now}
}

// Handler returns the routed API with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/projects", s.listProjects)
	mux.HandleFunc("GET /api/project/{id}", s.getProject)
	mux.HandleFunc("POST /api/project/{id}/task/{taskId}/toggle", s.toggleTask)
	mux.HandleFunc("POST /api/project/{id}/task/{taskId}/time", s.logTime)
	return loggingMiddleware(s.log, mux)
}

// HTTPServer returns a configured http.Server. Call ListenAndServe in a
// goroutine and Shutdown it on exit.
func (s *Server) HTTPServer(addr string) *http.Server {
	s.log.Info("api server configured", slog.String("addr", addr))
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type projectsResponse struct {
	Projects []model.ProjectSummary `json:"projects"`
}

type projectResponse struct {
	Project model.Project `json:"project"`
	TimeLog model.TimeLog `json:"timeLog"`
}

type statusResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	rows, err := s.repo.ListProjects(r.Context(), storage.ProjectListFilter{})
	if err != nil {
		s.internalError(w, "list projects", err)
		return
	}
	out := projectsResponse{Projects: make([]model.ProjectSummary, 0, len(rows))}
	for _, p := range rows {
		out.Projects = append(out.Projects, model.ProjectSummary{
			ID:      p.ID,
			Name:    p.Name,
			Status:  model.ProjectStatus(p.Status),
			Created: p.Created,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	project, err := s.repo.GetProject(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Project not found"})
		return
	}
	if err != nil {
		s.internalError(w, "get project", err)
		return
	}
	out, err := s.loadProjectDetail(r.Context(), project)
	if err != nil {
		s.internalError(w, "load project detail", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadProjectDetail(ctx context.Context, project storage.Project) (projectResponse, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListFilter{ProjectID: project.ID})
	if err != nil {
		return projectResponse{}, fmt.Errorf("list tasks: %w", err)
	}
	sessions, err := s.repo.ListTimeSessions(ctx, storage.TimeSessionListFilter{ProjectID: project.ID})
	if err != nil {
		return projectResponse{}, fmt.Errorf("list sessions: %w", err)
	}

	log := model.TimeLog{Sessions: make([]model.TimeSession, 0, len(sessions))}
	for _, sess := range sessions {
		log.Sessions = append(log.Sessions, model.TimeSession{
			TaskID:    sess.TaskID,
			Start:     sess.StartedAt,
			End:       sess.EndedAt,
			Duration:  sess.DurationMinutes,
			Timestamp: sess.LoggedAt.UTC().Format(time.RFC3339),
		})
	}
	spent := log.MinutesByTask()

	out := projectResponse{
		Project: model.Project{
			ID:      project.ID,
			Name:    project.Name,
			Status:  model.ProjectStatus(project.Status),
			Created: project.Created,
			Tasks:   make([]model.Task, 0, len(tasks)),
		},
		TimeLog: log,
	}
	for _, t := range tasks {
		deps := t.Dependencies
		if deps == nil {
			deps = []string{}
		}
		out.Project.Tasks = append(out.Project.Tasks, model.Task{
			ID:           t.ID,
			Name:         t.Name,
			Start:        t.StartDate,
			End:          t.EndDate,
			Completed:    t.Completed,
			Dependencies: deps,
			TimeSpent:    float64(spent[t.ID]),
		})
	}
	return out, nil
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := r.PathValue("id"), r.PathValue("taskId")
	if _, err := s.repo.GetProject(r.Context(), projectID); err != nil {
		s.notFoundOr(w, "Project not found", "get project", err)
		return
	}

	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()
	task, err := s.repo.GetTask(r.Context(), projectID, taskID)
	if err != nil {
		s.notFoundOr(w, "Task not found", "get task", err)
		return
	}
	task.Completed = !task.Completed
	if err := s.repo.UpdateTask(r.Context(), task); err != nil {
		s.internalError(w, "update task", err)
		return
	}
	s.log.Info("task toggled", slog.String("project", projectID), slog.String("task", taskID), slog.Bool("completed", task.Completed))
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (s *Server) logTime(w http.ResponseWriter, r *http.Request) {
	projectID, taskID := r.PathValue("id"), r.PathValue("taskId")
	if _, err := s.repo.GetProject(r.Context(), projectID); err != nil {
		s.notFoundOr(w, "Project not found", "get project", err)
		return
	}

	var entry model.TimeEntry
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid body: %v", err)})
		return
	}
	if err := entry.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	session := storage.TimeSession{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		TaskID:          taskID,
		StartedAt:       entry.Start,
		EndedAt:         entry.End,
		DurationMinutes: entry.Duration,
		LoggedAt:        s.now().UTC(),
	}
	if err := s.repo.CreateTimeSession(r.Context(), session); err != nil {
		s.internalError(w, "create time session", err)
		return
	}
	s.log.Info("time logged", slog.String("project", projectID), slog.String("task", taskID), slog.Int("minutes", entry.Duration))
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (s *Server) notFoundOr(w http.ResponseWriter, notFound, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound})
		return
	}
	s.internalError(w, op, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
