package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// scanReport scans a SavedReport from sql.Rows.
func scanReport(rows *sql.Rows) (models.SavedReport, error) {
	var r models.SavedReport
	var rowJSON string
	if err := rows.Scan(&r.ID, &r.ChatID, &r.Ticket, &rowJSON, &r.CreatedAt); err != nil {
		return r, fmt.Errorf("scan report failed: %w", err)
	}
	if err := json.Unmarshal([]byte(rowJSON), &r.Row); err != nil {
		return r, fmt.Errorf("decode report row failed: %w", err)
	}
	return r, nil
}
