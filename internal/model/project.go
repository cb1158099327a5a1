package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidStatus = errors.New("model: invalid project status")

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
	ProjectStatusPlanning  ProjectStatus = "planning"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusPlanning:
		return true
	default:
		return false
	}
}

// ProjectSummary is one entry of the project roster.
type ProjectSummary struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Status  ProjectStatus `json:"status"`
	Created string        `json:"created"`
}

// CreatedAt parses the stored creation timestamp.
func (p ProjectSummary) CreatedAt() (time.Time, bool) {
	ts, err := ParseTimestamp(p.Created)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

type Project struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Status  ProjectStatus `json:"status,omitempty"`
	Created string        `json:"created,omitempty"`
	Tasks   []Task        `json:"tasks"`
}

func (p Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, Status: p.Status, Created: p.Created}
}

// CompletedCount returns how many tasks are done.
func (p Project) CompletedCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("model: project id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("model: project name is required")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("model: duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
	}
	for _, t := range p.Tasks {
		for _, dep := range t.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("model: task %s depends on unknown task %q", t.ID, dep)
			}
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp parses ISO-8601 timestamps with or without a zone offset.
// Zoneless values are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("model: unrecognised timestamp %q", raw)
}
