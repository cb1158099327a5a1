package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationFiles embed.FS

func MigrateUp(db *sql.DB, dialect Dialect) error {
	return applyMigrations(db, dialect, ".up.sql", false)
}

func MigrateDown(db *sql.DB, dialect Dialect) error {
	return applyMigrations(db, dialect, ".down.sql", true)
}

func applyMigrations(db *sql.DB, dialect Dialect, suffix string, reverse bool) error {
	if !dialect.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	entries, err := fs.Glob(migrationFiles, "migrations/"+string(dialect)+"/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		// One Exec per statement so the mysql DSN does not need multiStatements.
		for _, stmt := range splitStatements(string(sqlBytes)) {
			if _, execErr := db.Exec(stmt); execErr != nil {
				return fmt.Errorf("apply migration %s: %w", name, execErr)
			}
		}
	}
	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
