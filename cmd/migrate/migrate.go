package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

const downMarker = "-- +migrate Down"

type migrationFile struct {
	name string
	path string
}

func migrationFiles(dir string) ([]migrationFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	files := make([]migrationFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, migrationFile{name: filepath.Base(path), path: path})
	}
	return files, nil
}

func ensureStateTable(ctx context.Context, database *sqlx.DB) error {
	_, err := database.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`)
	return err
}

func appliedMigrations(ctx context.Context, database *sqlx.DB) (map[string]bool, error) {
	if err := ensureStateTable(ctx, database); err != nil {
		return nil, err
	}
	var names []string
	if err := database.SelectContext(ctx, &names, `SELECT filename FROM schema_migrations`); err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(names))
	for _, name := range names {
		applied[name] = true
	}
	return applied, nil
}

func pendingMigrations(ctx context.Context, database *sqlx.DB, dir string) ([]migrationFile, error) {
	files, err := migrationFiles(dir)
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, database)
	if err != nil {
		return nil, err
	}
	return filterPending(files, applied), nil
}

func filterPending(files []migrationFile, applied map[string]bool) []migrationFile {
	var pending []migrationFile
	for _, file := range files {
		if !applied[file.name] {
			pending = append(pending, file)
		}
	}
	return pending
}

// applyMigration runs the up section of a file and records it in one
// transaction.
func applyMigration(ctx context.Context, database *sqlx.DB, file migrationFile) error {
	content, err := os.ReadFile(file.path)
	if err != nil {
		return err
	}
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitSQL(upSection(string(content))) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, file.name); err != nil {
		return err
	}
	return tx.Commit()
}

func upSection(content string) string {
	up, _, _ := strings.Cut(content, downMarker)
	return up
}

func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
