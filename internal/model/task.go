package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDates = errors.New("model: invalid task dates")
	ErrSelfDepends  = errors.New("model: task depends on itself")
)

// DateLayout is the wire format of task start and end dates.
const DateLayout = "2006-01-02"

type Task struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Completed    bool     `json:"completed"`
	Dependencies []string `json:"dependencies"`
	TimeSpent    float64  `json:"timeSpent"`
}

// Progress is the chart progress of the task: 100 when completed, else 0.
func (t Task) Progress() int {
	if t.Completed {
		return 100
	}
	return 0
}

// Span parses the start and end dates. End is never before start.
func (t Task) Span() (time.Time, time.Time, error) {
	start, err := ParseDate(t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidDates, t.Start)
	}
	end, err := ParseDate(t.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidDates, t.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidDates, t.End, t.Start)
	}
	return start, end, nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: task name is required")
	}
	if _, _, err := t.Span(); err != nil {
		return err
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("%w: %q", ErrSelfDepends, t.ID)
		}
	}
	if t.TimeSpent < 0 {
		return errors.New("model: task timeSpent must not be negative")
	}
	return nil
}

// ParseDate accepts a plain date or a full RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

func FindTask(tasks []Task, id string) (int, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
