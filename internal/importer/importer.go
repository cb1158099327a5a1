// Package importer loads a JSON data directory into a storage repository.
//
// Layout:
//
//	<dir>/projects.json                       {"projects":[{id,name,status,created}]}
//	<dir>/projects/<id>/info.json             {id,name,tasks:[...]}
//	<dir>/projects/<id>/time-log.json         {"sessions":[{taskId,start,end,duration,timestamp}]}
//
// Missing info or time-log files are treated as empty. Imports are
// idempotent: existing rows are updated and sessions already imported are
// skipped.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/storage"
)

// sessionNamespace seeds deterministic session ids.
var sessionNamespace = uuid.MustParse("6f1b7c1e-4a55-4d2b-9a59-2f1f0d3c8e01")

type Result struct {
	Projects int
	Tasks    int
	Sessions int
}

type roster struct {
	Projects []model.ProjectSummary `json:"projects"`
}

func Import(ctx context.Context, repo storage.Repository, dataDir string) (Result, error) {
	var res Result
	var list roster
	found, err := readJSON(filepath.Join(dataDir, "projects.json"), &list)
	if err != nil {
		return res, err
	}
	if !found {
		return res, fmt.Errorf("importer: %s has no projects.json", dataDir)
	}

	for _, summary := range list.Projects {
		if strings.TrimSpace(summary.ID) == "" {
			return res, errors.New("importer: project with empty id in projects.json")
		}
		n, err := importProject(ctx, repo, dataDir, summary)
		if err != nil {
			return res, fmt.Errorf("project %s: %w", summary.ID, err)
		}
		res.Projects++
		res.Tasks += n.Tasks
		res.Sessions += n.Sessions
	}
	return res, nil
}

func importProject(ctx context.Context, repo storage.Repository, dataDir string, summary model.ProjectSummary) (Result, error) {
	var res Result
	dir := filepath.Join(dataDir, "projects", summary.ID)

	var info model.Project
	if _, err := readJSON(filepath.Join(dir, "info.json"), &info); err != nil {
		return res, err
	}

	project := storage.Project{
		ID:      summary.ID,
		Name:    firstNonEmpty(summary.Name, info.Name, summary.ID),
		Status:  firstNonEmpty(string(summary.Status), string(info.Status), string(model.ProjectStatusActive)),
		Created: firstNonEmpty(summary.Created, info.Created, time.Now().UTC().Format("2006-01-02T15:04:05")),
	}
	if err := upsertProject(ctx, repo, project); err != nil {
		return res, err
	}

	for i, t := range info.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return res, fmt.Errorf("task %d has no id", i)
		}
		task := storage.Task{
			ProjectID:    project.ID,
			ID:           t.ID,
			Name:         t.Name,
			StartDate:    t.Start,
			EndDate:      t.End,
			Completed:    t.Completed,
			Position:     i,
			Dependencies: t.Dependencies,
		}
		if err := upsertTask(ctx, repo, task); err != nil {
			return res, fmt.Errorf("task %s: %w", t.ID, err)
		}
		res.Tasks++
	}

	var log model.TimeLog
	if _, err := readJSON(filepath.Join(dir, "time-log.json"), &log); err != nil {
		return res, err
	}
	existing, err := repo.ListTimeSessions(ctx, storage.TimeSessionListFilter{ProjectID: project.ID})
	if err != nil {
		return res, fmt.Errorf("list sessions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s.ID] = true
	}
	for i, s := range log.Sessions {
		id := sessionID(project.ID, i, s)
		if seen[id] {
			continue
		}
		loggedAt, err := model.ParseTimestamp(s.Timestamp)
		if err != nil {
			loggedAt = time.Now()
		}
		if err := repo.CreateTimeSession(ctx, storage.TimeSession{
			ID:              id,
			ProjectID:       project.ID,
			TaskID:          s.TaskID,
			StartedAt:       s.Start,
			EndedAt:         s.End,
			DurationMinutes: s.Duration,
			LoggedAt:        loggedAt.UTC(),
		}); err != nil {
			return res, fmt.Errorf("session %d: %w", i, err)
		}
		seen[id] = true
		res.Sessions++
	}
	return res, nil
}

func upsertProject(ctx context.Context, repo storage.Repository, p storage.Project) error {
	_, err := repo.GetProject(ctx, p.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return repo.CreateProject(ctx, p)
	case err != nil:
		return err
	default:
		return repo.UpdateProject(ctx, p)
	}
}

func upsertTask(ctx context.Context, repo storage.Repository, t storage.Task) error {
	_, err := repo.GetTask(ctx, t.ProjectID, t.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return repo.CreateTask(ctx, t)
	case err != nil:
		return err
	default:
		return repo.UpdateTask(ctx, t)
	}
}

// sessionID derives a stable id so re-running an import does not duplicate
// sessions.
func sessionID(projectID string, index int, s model.TimeSession) string {
	key := strings.Join([]string{projectID, strconv.Itoa(index), s.TaskID, s.Start, s.End, s.Timestamp}, "\x00")
	return uuid.NewSHA1(sessionNamespace, []byte(key)).String()
}

func readJSON(path string, dst any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
