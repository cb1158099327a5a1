package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const sqlTimeLayout = time.RFC3339Nano

var ErrUnknownDialect = errors.New("storage: unknown dialect")

// Dialect names a supported database/sql driver.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectMySQL  Dialect = "mysql"
)

func (d Dialect) IsValid() bool {
	switch d {
	case DialectSQLite, DialectMySQL:
		return true
	default:
		return false
	}
}

type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLRepository(db *sql.DB, dialect Dialect) (*SQLRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if !dialect.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	if dialect == DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return &SQLRepository{db: db, dialect: dialect}, nil
}

// Open connects with the given driver; sqlite takes a file path, mysql a
// go-sql-driver DSN.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("storage: dsn is required")
	}
	if !dialect.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	if dialect == DialectMySQL {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// Report matched rather than changed rows so no-op updates are not ErrNotFound.
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// sqlite serialises writers; one connection keeps the PRAGMA in effect.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	repo, err := NewSQLRepository(db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLRepository) Migrate() error {
	return MigrateUp(r.db, r.dialect)
}

func (r *SQLRepository) MigrateDown() error {
	return MigrateDown(r.db, r.dialect)
}

func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) CreateProject(ctx context.Context, in Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, status, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, in.Status, in.Created,
	)
	return err
}

func (r *SQLRepository) GetProject(ctx context.Context, id string) (Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, status, created_at FROM projects WHERE id = ?`, id)
	item, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return item, nil
}

func (r *SQLRepository) UpdateProject(ctx context.Context, in Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, status = ?, created_at = ? WHERE id = ?`,
		in.Name, in.Status, in.Created, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) ListProjects(ctx context.Context, filter ProjectListFilter) ([]Project, error) {
	query := `SELECT id, name, status, created_at FROM projects`
	args := make([]any, 0, 3)
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at ASC, id ASC`
	query += r.applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		item, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateTask(ctx context.Context, in Task) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (project_id, id, name, start_date, end_date, completed, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.ProjectID, in.ID, in.Name, in.StartDate, in.EndDate, boolInt(in.Completed), in.Position,
		); err != nil {
			return err
		}
		return writeDependencies(ctx, tx, in)
	})
}

func (r *SQLRepository) GetTask(ctx context.Context, projectID, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT project_id, id, name, start_date, end_date, completed, position
		FROM tasks WHERE project_id = ? AND id = ?`, projectID, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	deps, err := r.loadDependencies(ctx, projectID)
	if err != nil {
		return Task{}, err
	}
	task.Dependencies = deps[task.ID]
	return task, nil
}

func (r *SQLRepository) UpdateTask(ctx context.Context, in Task) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET name = ?, start_date = ?, end_date = ?, completed = ?, position = ?
			WHERE project_id = ? AND id = ?`,
			in.Name, in.StartDate, in.EndDate, boolInt(in.Completed), in.Position, in.ProjectID, in.ID,
		)
		if err != nil {
			return err
		}
		if err := checkRowsAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE project_id = ? AND task_id = ?`, in.ProjectID, in.ID); err != nil {
			return err
		}
		return writeDependencies(ctx, tx, in)
	})
}

func (r *SQLRepository) DeleteTask(ctx context.Context, projectID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ? AND id = ?`, projectID, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT project_id, id, name, start_date, end_date, completed, position FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.ProjectID != "" {
		clauses = append(clauses, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY project_id ASC, position ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.ProjectID != "" {
		deps, err := r.loadDependencies(ctx, filter.ProjectID)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Dependencies = deps[out[i].ID]
		}
	}
	return out, nil
}

func (r *SQLRepository) CreateTimeSession(ctx context.Context, in TimeSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO time_sessions (id, project_id, task_id, started_at, ended_at, duration_minutes, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ProjectID, in.TaskID, in.StartedAt, in.EndedAt, in.DurationMinutes, mustTime(in.LoggedAt),
	)
	return err
}

func (r *SQLRepository) ListTimeSessions(ctx context.Context, filter TimeSessionListFilter) ([]TimeSession, error) {
	query := `SELECT id, project_id, task_id, started_at, ended_at, duration_minutes, logged_at FROM time_sessions`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.ProjectID != "" {
		clauses = append(clauses, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.TaskID != "" {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY logged_at ASC, id ASC`
	query += r.applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TimeSession, 0)
	for rows.Next() {
		item, scanErr := scanTimeSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLRepository) loadDependencies(ctx context.Context, projectID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, depends_on FROM task_dependencies
		WHERE project_id = ? ORDER BY task_id ASC, position ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var taskID, dep string
		if err := rows.Scan(&taskID, &dep); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], dep)
	}
	return out, rows.Err()
}

func writeDependencies(ctx context.Context, tx *sql.Tx, in Task) error {
	for i, dep := range in.Dependencies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO task_dependencies (project_id, task_id, depends_on, position)
			VALUES (?, ?, ?, ?)`,
			in.ProjectID, in.ID, dep, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqlTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqlTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (r *SQLRepository) applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			// OFFSET is only valid after a LIMIT in both dialects.
			if r.dialect == DialectMySQL {
				sql += " LIMIT 18446744073709551615"
			} else {
				sql += " LIMIT -1"
			}
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (Project, error) {
	var out Project
	if err := s.Scan(&out.ID, &out.Name, &out.Status, &out.Created); err != nil {
		return Project{}, err
	}
	return out, nil
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var completed int
	if err := s.Scan(&out.ProjectID, &out.ID, &out.Name, &out.StartDate, &out.EndDate, &completed, &out.Position); err != nil {
		return Task{}, err
	}
	out.Completed = completed == 1
	return out, nil
}

func scanTimeSession(s scanner) (TimeSession, error) {
	var out TimeSession
	var logged string
	if err := s.Scan(&out.ID, &out.ProjectID, &out.TaskID, &out.StartedAt, &out.EndedAt, &out.DurationMinutes, &logged); err != nil {
		return TimeSession{}, err
	}
	loggedAt, err := parseRequiredTime(logged)
	if err != nil {
		return TimeSession{}, err
	}
	out.LoggedAt = loggedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
