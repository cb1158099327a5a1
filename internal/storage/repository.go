package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateProject(ctx context.Context, in Project) error
	GetProject(ctx context.Context, id string) (Project, error)
	UpdateProject(ctx context.Context, in Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context, filter ProjectListFilter) ([]Project, error)

	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, projectID, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, projectID, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	CreateTimeSession(ctx context.Context, in TimeSession) error
	ListTimeSessions(ctx context.Context, filter TimeSessionListFilter) ([]TimeSession, error)
}
