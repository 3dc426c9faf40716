package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// WorkbookBackend appends report rows to one worksheet of an Excel workbook
// stored in the account's drive.
type WorkbookBackend struct {
	client    *Client
	path      string // drive path of the workbook
	sheetName string
	itemID    string
}

// NewWorkbookBackend resolves the workbook on the drive, creating an empty one
// with the target worksheet when it does not exist yet.
func NewWorkbookBackend(ctx context.Context, client *Client, path, sheetName string) (*WorkbookBackend, error) {
	if path == "" || sheetName == "" {
		return nil, &models.ConfigurationError{Component: "graph", Reason: "workbook path and sheet name are required"}
	}
	b := &WorkbookBackend{client: client, path: path, sheetName: sheetName}

	id, err := client.ItemByPath(ctx, path)
	if errors.Is(err, ErrNotFound) {
		id, err = b.createWorkbook(ctx)
	}
	if err != nil {
		return nil, err
	}
	b.itemID = id
	return b, nil
}

// createWorkbook uploads a fresh workbook containing only the target sheet.
func (b *WorkbookBackend) createWorkbook(ctx context.Context) (string, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", b.sheetName); err != nil {
		return "", fmt.Errorf("failed to name worksheet: %w", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize workbook: %w", err)
	}
	id, err := b.client.UploadFile(ctx, b.path, buf.Bytes())
	if err != nil {
		return "", err
	}
	slog.Info("Graph.createWorkbook: workbook created", "path", b.path, "sheet", b.sheetName)
	return id, nil
}

func (b *WorkbookBackend) Name() string { return "graph" }

type rangeValues struct {
	Values [][]interface{} `json:"values"`
}

func (b *WorkbookBackend) rangePath(address string) string {
	return fmt.Sprintf("/me/drive/items/%s/workbook/worksheets('%s')/range(address='%s')",
		b.itemID, b.sheetName, address)
}

// EnsureHeaders writes the header row only when row 1 is empty.
func (b *WorkbookBackend) EnsureHeaders(ctx context.Context, columns []string) error {
	address := fmt.Sprintf("A1:%s1", columnName(len(columns)))

	var current rangeValues
	if err := b.client.getJSON(ctx, b.rangePath(address)+"?$select=values", &current); err != nil {
		return err
	}
	if len(current.Values) > 0 {
		for _, v := range current.Values[0] {
			if s, ok := v.(string); ok && s != "" {
				return nil
			}
		}
	}

	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	payload := rangeValues{Values: [][]interface{}{row}}
	if err := b.client.patchJSON(ctx, b.rangePath(address), payload, nil); err != nil {
		return err
	}
	slog.Info("Graph.EnsureHeaders: header row written", "path", b.path, "sheet", b.sheetName)
	return nil
}

// AppendRow writes one report row after the used range, suppressing an exact
// repeat of the last stored row.
func (b *WorkbookBackend) AppendRow(ctx context.Context, row []string) error {
	usedPath := fmt.Sprintf("/me/drive/items/%s/workbook/worksheets('%s')/usedRange?$select=values,rowCount",
		b.itemID, b.sheetName)

	var used struct {
		Values   [][]interface{} `json:"values"`
		RowCount int             `json:"rowCount"`
	}
	if err := b.client.getJSON(ctx, usedPath, &used); err != nil {
		return err
	}

	if len(used.Values) > 1 {
		last := stringRow(used.Values[len(used.Values)-1])
		if models.RowsEqual(last, row) {
			slog.Info("Graph.AppendRow: duplicate of previous row, skipping", "path", b.path)
			return nil
		}
	}

	next := used.RowCount + 1
	if next < 2 {
		next = 2
	}
	address := fmt.Sprintf("A%d:%s%d", next, columnName(len(row)), next)
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return b.client.patchJSON(ctx, b.rangePath(address), rangeValues{Values: [][]interface{}{values}}, nil)
}

func stringRow(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// columnName converts a 1-based column count into its A1-notation letter.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
