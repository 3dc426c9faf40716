// Package sheets is the Google Sheets report backend.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// Backend appends report rows to one worksheet of a shared spreadsheet.
type Backend struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

// NewBackend builds a backend authenticated with a service-account key file.
func NewBackend(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*Backend, error) {
	if spreadsheetID == "" || sheetName == "" {
		return nil, &models.ConfigurationError{Component: "sheets", Reason: "spreadsheet id and sheet name are required"}
	}
	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Backend{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (b *Backend) Name() string { return "sheets" }

// EnsureHeaders writes the header row only when the first row is empty. An
// existing first row is left untouched even when it differs.
func (b *Backend) EnsureHeaders(ctx context.Context, columns []string) error {
	resp, err := b.svc.Spreadsheets.Values.
		Get(b.spreadsheetID, b.sheetName+"!1:1").
		Context(ctx).Do()
	if err != nil {
		return &models.UpstreamError{Service: "sheets", Err: err}
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	_, err = b.svc.Spreadsheets.Values.
		Update(b.spreadsheetID, b.sheetName+"!1:1", &sheetsapi.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return &models.UpstreamError{Service: "sheets", Err: err}
	}
	slog.Info("Sheets.EnsureHeaders: header row written", "sheet", b.sheetName)
	return nil
}

// AppendRow appends one report row, suppressing an exact repeat of the last
// stored row.
func (b *Backend) AppendRow(ctx context.Context, row []string) error {
	last, err := b.lastRow(ctx)
	if err != nil {
		slog.Warn("Sheets.AppendRow: could not read last row, appending anyway", "error", err, "sheet", b.sheetName)
	} else if last != nil && models.RowsEqual(last, row) {
		slog.Info("Sheets.AppendRow: duplicate of previous row, skipping", "sheet", b.sheetName)
		return nil
	}

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err = b.svc.Spreadsheets.Values.
		Append(b.spreadsheetID, b.sheetName, &sheetsapi.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return &models.UpstreamError{Service: "sheets", Err: err}
	}
	return nil
}

func (b *Backend) lastRow(ctx context.Context) ([]string, error) {
	resp, err := b.svc.Spreadsheets.Values.
		Get(b.spreadsheetID, b.sheetName).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) < 2 {
		// Header only, or empty sheet.
		return nil, nil
	}
	raw := resp.Values[len(resp.Values)-1]
	row := make([]string, len(raw))
	for i, v := range raw {
		row[i] = fmt.Sprint(v)
	}
	return row, nil
}
