package store

import (
	"strings"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// ReportLog is the local journal of committed reports. Journal writes are
// best-effort: a failure never blocks the user-facing save confirmation.
type ReportLog interface {
	SaveReport(r models.SavedReport) error
	Reports() ([]models.SavedReport, error)
	Close() error
}

// Opts holds configuration for journal backends.
type Opts struct {
	DSN string
}

// Option configures a journal backend.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType reports which database driver a DSN belongs to: "postgres"
// for PostgreSQL URLs and key-value DSNs, "sqlite3" otherwise (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// NewReportLog creates the journal backend matching the DSN type.
func NewReportLog(dsn string) (ReportLog, error) {
	if DetectDSNType(dsn) == "postgres" {
		return NewPostgresReportLog(WithDSN(dsn))
	}
	return NewSQLiteReportLog(WithDSN(dsn))
}
