// This file implements the PostgreSQL-backed report journal.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresReportLog is the PostgreSQL journal backend.
type PostgresReportLog struct {
	db *sql.DB
}

// NewPostgresReportLog opens the Postgres journal and applies migrations.
func NewPostgresReportLog(opts ...Option) (*PostgresReportLog, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresReportLog.New: opening journal", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresReportLog DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresReportLog migrations applied")

	return &PostgresReportLog{db: db}, nil
}

// SaveReport appends one committed report to the journal.
func (s *PostgresReportLog) SaveReport(r models.SavedReport) error {
	rowJSON, err := json.Marshal(r.Row)
	if err != nil {
		return fmt.Errorf("failed to encode report row: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO reports (id, chat_id, ticket, row_json, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.ChatID, r.Ticket, string(rowJSON), r.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresReportLog.SaveReport failed", "error", err, "reportID", r.ID)
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}
	slog.Debug("PostgresReportLog.SaveReport succeeded", "reportID", r.ID, "ticket", r.Ticket)
	return nil
}

// Reports returns all journaled reports.
func (s *PostgresReportLog) Reports() ([]models.SavedReport, error) {
	rows, err := s.db.Query(`SELECT id, chat_id, ticket, row_json, created_at FROM reports ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresReportLog.Reports query failed", "error", err)
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
func (s *PostgresReportLog) Close() error {
	return s.db.Close()
}
