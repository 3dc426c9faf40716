// This file implements the SQLite-backed report journal.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteReportLog is the default, file-backed journal.
type SQLiteReportLog struct {
	db *sql.DB
}

// NewSQLiteReportLog opens (and if needed creates) the SQLite journal at the
// DSN path and applies migrations.
func NewSQLiteReportLog(opts ...Option) (*SQLiteReportLog, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteReportLog.New: opening journal", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteReportLog DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteReportLog migrations applied")

	return &SQLiteReportLog{db: db}, nil
}

// SaveReport appends one committed report to the journal.
func (s *SQLiteReportLog) SaveReport(r models.SavedReport) error {
	rowJSON, err := json.Marshal(r.Row)
	if err != nil {
		return fmt.Errorf("failed to encode report row: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO reports (id, chat_id, ticket, row_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.ChatID, r.Ticket, string(rowJSON), r.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteReportLog.SaveReport failed", "error", err, "reportID", r.ID)
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}
	slog.Debug("SQLiteReportLog.SaveReport succeeded", "reportID", r.ID, "ticket", r.Ticket)
	return nil
}

// Reports returns all journaled reports.
func (s *SQLiteReportLog) Reports() ([]models.SavedReport, error) {
	rows, err := s.db.Query(`SELECT id, chat_id, ticket, row_json, created_at FROM reports ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteReportLog.Reports query failed", "error", err)
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []models.SavedReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteReportLog) Close() error {
	return s.db.Close()
}
