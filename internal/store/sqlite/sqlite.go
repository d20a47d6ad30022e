package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements store.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// every connection to ":memory:" is a separate database; a file needs a
	// single writer anyway
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateExecution(ctx context.Context, rec *model.ExecutionRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (user_id, language, code, stdin, status, stdout, stderr, exit_code, execution_time_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(rec.UserID), rec.Language, rec.Code, rec.Stdin, rec.Status,
		rec.Stdout, rec.Stderr, nullInt(rec.ExitCode), rec.ExecutionTimeMs,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return apperr.Wrapf(err, apperr.DatabaseError, "inserting execution: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Wrapf(err, apperr.DatabaseError, "reading execution id: %v", err)
	}
	rec.ID = id
	return nil
}

func (s *SQLiteStore) UpdateExecution(ctx context.Context, rec *model.ExecutionRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE executions
		SET status = ?, stdout = ?, stderr = ?, exit_code = ?, execution_time_ms = ?, updated_at = ?
		WHERE id = ?`,
		rec.Status, rec.Stdout, rec.Stderr, nullInt(rec.ExitCode), rec.ExecutionTimeMs,
		rec.UpdatedAt.Format(time.RFC3339), rec.ID,
	)
	if err != nil {
		return apperr.Wrapf(err, apperr.DatabaseError, "updating execution: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.Newf(apperr.ExecutionNotFound, "execution %d not found", rec.ID)
	}
	return nil
}

const executionColumns = `id, user_id, language, code, stdin, status, stdout, stderr, exit_code, execution_time_ms, created_at, updated_at`

func (s *SQLiteStore) GetExecution(ctx context.Context, id int64) (*model.ExecutionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+executionColumns+` FROM executions WHERE id = ?`, id)
	rec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.ExecutionNotFound, "execution %d not found", id)
	}
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.DatabaseError, "loading execution: %v", err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListExecutions(ctx context.Context, opts store.ExecutionListOptions) ([]model.ExecutionRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + executionColumns + ` FROM executions WHERE 1 = 1`
	var args []any

	if opts.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *opts.UserID)
	}
	if opts.Language != "" {
		query += ` AND language = ?`
		args = append(args, opts.Language)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.DatabaseError, "listing executions: %v", err)
	}
	defer rows.Close()

	var out []model.ExecutionRecord
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.DatabaseError, "scanning execution: %v", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, tpl *model.Template) error {
	tpl.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (title, language, code, stdin, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		tpl.Title, tpl.Language, tpl.Code, tpl.Stdin, tpl.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return apperr.Wrapf(err, apperr.DatabaseError, "inserting template: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Wrapf(err, apperr.DatabaseError, "reading template id: %v", err)
	}
	tpl.ID = id
	return nil
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id int64) (*model.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, language, code, stdin, created_at FROM templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.TemplateNotFound, "template %d not found", id)
	}
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.DatabaseError, "loading template: %v", err)
	}
	return tpl, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, language, code, stdin, created_at FROM templates ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.DatabaseError, "listing templates: %v", err)
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.DatabaseError, "scanning template: %v", err)
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Scanner interface to work with both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(s scanner) (*model.ExecutionRecord, error) {
	var rec model.ExecutionRecord
	var userID, exitCode sql.NullInt64
	var createdAt, updatedAt string
	err := s.Scan(&rec.ID, &userID, &rec.Language, &rec.Code, &rec.Stdin, &rec.Status,
		&rec.Stdout, &rec.Stderr, &exitCode, &rec.ExecutionTimeMs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := userID.Int64
		rec.UserID = &id
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		rec.ExitCode = &code
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

func scanTemplate(s scanner) (*model.Template, error) {
	var tpl model.Template
	var createdAt string
	if err := s.Scan(&tpl.ID, &tpl.Title, &tpl.Language, &tpl.Code, &tpl.Stdin, &createdAt); err != nil {
		return nil, err
	}
	tpl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &tpl, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
