package storage

import "time"

type Project struct {
	ID      string
	Name    string
	Status  string
	Created string
}

type Task struct {
	ProjectID    string
	ID           string
	Name         string
	StartDate    string
	EndDate      string
	Completed    bool
	Position     int
	Dependencies []string
}

type TimeSession struct {
	ID              string
	ProjectID       string
	TaskID          string
	StartedAt       string
	EndedAt         string
	DurationMinutes int
	LoggedAt        time.Time
}

type ProjectListFilter struct {
	Status string
	Limit  int
	Offset int
}

type TaskListFilter struct {
	ProjectID string
	Completed *bool
}

type TimeSessionListFilter struct {
	ProjectID string
	TaskID    string
	Limit     int
	Offset    int
}
