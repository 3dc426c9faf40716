package lookup

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an in-memory workbook with one data sheet plus a stray
// empty sheet, the shape real exports have.
func workbookBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Vacía"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("bad coordinates: %v", err)
			}
			if err := f.SetCellStr("Sheet1", cell, val); err != nil {
				t.Fatalf("failed to set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func staticSource(data []byte) Source {
	return func(ctx context.Context) ([]byte, error) { return data, nil }
}

func TestFindTicket(t *testing.T) {
	orders := workbookBytes(t, [][]string{
		{"TICKET", "CLIENTE", "DNI", "CUADRILLA", "PARTNER"},
		{"T-100", "Juan Perez", "12345678", "CUAD-9", "ACME"},
		{"t-200 ", "Maria Lopez", "87654321", "CUAD-2", "ZETA"},
		{"", "sin ticket", "", "", ""},
	})
	d := NewDirectory(staticSource(orders), nil)
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	order, ok := d.FindTicket(" t-100 ")
	if !ok {
		t.Fatalf("expected T-100 to resolve")
	}
	if order.Client != "Juan Perez" || order.Crew != "CUAD-9" || order.Partner != "ACME" {
		t.Errorf("unexpected order %+v", order)
	}

	if _, ok := d.FindTicket("T-200"); !ok {
		t.Errorf("ticket keys should be trimmed and upper-cased")
	}
	if _, ok := d.FindTicket("T-999"); ok {
		t.Errorf("unknown ticket should miss")
	}
}

func TestNodeFor(t *testing.T) {
	nodes := workbookBytes(t, [][]string{
		{"CODIGO", "NODO"},
		{"CTO-LIM-01", "NODO-5"},
		{"NAP-077", "NODO-2"},
	})
	d := NewDirectory(nil, staticSource(nodes))
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := d.NodeFor("cto-lim-01"); got != "NODO-5" {
		t.Errorf("exact match failed, got %q", got)
	}
	// Field crews often suffix the code on the label.
	if got := d.NodeFor("CTO-LIM-01-B"); got != "NODO-5" {
		t.Errorf("contains match failed, got %q", got)
	}
	if got := d.NodeFor("FAT-1"); got != "" {
		t.Errorf("unknown code should miss, got %q", got)
	}
}

func TestNodeForLongestMatchWins(t *testing.T) {
	nodes := workbookBytes(t, [][]string{
		{"CODIGO", "NODO"},
		{"CTO-LIM", "NODO-1"},
		{"CTO-LIM-01", "NODO-5"},
	})
	d := NewDirectory(nil, staticSource(nodes))
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Both table codes are substrings of the label; the longer, more specific
	// one must win, every time.
	for i := 0; i < 10; i++ {
		if got := d.NodeFor("CTO-LIM-01-B"); got != "NODO-5" {
			t.Fatalf("iteration %d: got %q, want NODO-5", i, got)
		}
	}
	if got := d.NodeFor("CTO-LIM-99"); got != "NODO-1" {
		t.Errorf("shorter code should still match its own labels, got %q", got)
	}
}

func TestRefreshKeepsStaleSnapshotOnFailure(t *testing.T) {
	orders := workbookBytes(t, [][]string{
		{"TICKET", "CLIENTE"},
		{"T-100", "Juan Perez"},
	})

	calls := 0
	src := func(ctx context.Context) ([]byte, error) {
		calls++
		if calls > 1 {
			return nil, fmt.Errorf("fetch failed")
		}
		return orders, nil
	}

	d := NewDirectory(src, nil)
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if err := d.Refresh(context.Background()); err == nil {
		t.Fatalf("second refresh should report the fetch failure")
	}

	if _, ok := d.FindTicket("T-100"); !ok {
		t.Errorf("failed refresh must keep the previous snapshot")
	}
}

func TestLargestSheetWins(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Datos"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	// Sheet1 has a single stray cell; Datos carries the table.
	if err := f.SetCellStr("Sheet1", "A1", "basura"); err != nil {
		t.Fatalf("failed to set cell: %v", err)
	}
	rows := [][]string{{"TICKET"}, {"T-1"}, {"T-2"}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStr("Datos", cell, row[0]); err != nil {
			t.Fatalf("failed to set cell: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	d := NewDirectory(staticSource(buf.Bytes()), nil)
	if err := d.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, ok := d.FindTicket("T-2"); !ok {
		t.Errorf("expected the larger sheet to be parsed")
	}
}
