// Package lookup serves ticket and box-code lookups from periodically
// refreshed workbook snapshots. Reads are lock-free; a refresh swaps in a
// whole new snapshot atomically and a failed refresh keeps the old one.
package lookup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/christaic/bot-incidenciasPEXT/internal/models"
)

// Source fetches the current bytes of one workbook.
type Source func(ctx context.Context) ([]byte, error)

// DefaultRefreshInterval is how often the snapshots are re-fetched. The
// upstream exports regenerate roughly twice an hour, so polling faster only
// re-downloads identical workbooks.
const DefaultRefreshInterval = 35 * time.Minute

// Directory answers work-order and node lookups.
type Directory struct {
	ordersSrc Source
	nodesSrc  Source

	orders atomic.Pointer[map[string]models.WorkOrder]
	nodes  atomic.Pointer[map[string]string]
}

// NewDirectory creates a directory reading from the given sources. Either
// source may be nil; its lookups then always miss.
func NewDirectory(ordersSrc, nodesSrc Source) *Directory {
	d := &Directory{ordersSrc: ordersSrc, nodesSrc: nodesSrc}
	empty := map[string]models.WorkOrder{}
	d.orders.Store(&empty)
	emptyNodes := map[string]string{}
	d.nodes.Store(&emptyNodes)
	return d
}

// FindTicket resolves a ticket against the current work-order snapshot.
func (d *Directory) FindTicket(ticket string) (models.WorkOrder, bool) {
	key := strings.ToUpper(strings.TrimSpace(ticket))
	order, ok := (*d.orders.Load())[key]
	return order, ok
}

// NodeFor resolves the node of a box code. An exact match wins; otherwise the
// longest table code contained in the queried code matches, so suffixed field
// labels still resolve. Longest-first keeps the fallback deterministic when
// one table code is a prefix of another.
func (d *Directory) NodeFor(code string) string {
	key := strings.ToUpper(strings.TrimSpace(code))
	nodes := *d.nodes.Load()
	if node, ok := nodes[key]; ok {
		return node
	}
	bestCode, bestNode := "", ""
	for tableCode, node := range nodes {
		if tableCode == "" || !strings.Contains(key, tableCode) {
			continue
		}
		if len(tableCode) > len(bestCode) || (len(tableCode) == len(bestCode) && tableCode < bestCode) {
			bestCode, bestNode = tableCode, node
		}
	}
	return bestNode
}

// Refresh re-fetches both snapshots. Each source fails independently and a
// failure keeps that source's previous snapshot.
func (d *Directory) Refresh(ctx context.Context) error {
	var firstErr error

	if d.ordersSrc != nil {
		if orders, err := d.loadOrders(ctx); err != nil {
			slog.Error("Directory.Refresh: work-order refresh failed, keeping previous snapshot", "error", err)
			firstErr = err
		} else {
			d.orders.Store(&orders)
			slog.Info("Directory.Refresh: work orders refreshed", "count", len(orders))
		}
	}

	if d.nodesSrc != nil {
		if nodes, err := d.loadNodes(ctx); err != nil {
			slog.Error("Directory.Refresh: node-table refresh failed, keeping previous snapshot", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			d.nodes.Store(&nodes)
			slog.Info("Directory.Refresh: node table refreshed", "count", len(nodes))
		}
	}
	return firstErr
}

// Start refreshes immediately and then on the given interval until the
// context is canceled. The initial refresh result is returned so startup can
// report an unusable source; the service still comes up with empty snapshots.
func (d *Directory) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	err := d.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = d.Refresh(ctx)
			}
		}
	}()
	return err
}

func (d *Directory) loadOrders(ctx context.Context) (map[string]models.WorkOrder, error) {
	rows, err := fetchRows(ctx, d.ordersSrc)
	if err != nil {
		return nil, err
	}
	orders := make(map[string]models.WorkOrder, len(rows))
	for i, row := range rows {
		if i == 0 {
			// Header row.
			continue
		}
		ticket := strings.ToUpper(strings.TrimSpace(cell(row, 0)))
		if ticket == "" {
			continue
		}
		orders[ticket] = models.WorkOrder{
			Ticket:   ticket,
			Client:   strings.TrimSpace(cell(row, 1)),
			Document: strings.TrimSpace(cell(row, 2)),
			Crew:     strings.TrimSpace(cell(row, 3)),
			Partner:  strings.TrimSpace(cell(row, 4)),
		}
	}
	return orders, nil
}

func (d *Directory) loadNodes(ctx context.Context) (map[string]string, error) {
	rows, err := fetchRows(ctx, d.nodesSrc)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]string, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(cell(row, 0)))
		node := strings.TrimSpace(cell(row, 1))
		if code == "" || node == "" {
			continue
		}
		nodes[code] = node
	}
	return nodes, nil
}

// fetchRows pulls the source bytes and returns the rows of the workbook's
// largest sheet. Exports sometimes carry stray empty sheets; the data always
// lives on the biggest one.
func fetchRows(ctx context.Context, src Source) ([][]string, error) {
	data, err := src(ctx)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var best [][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) > len(best) {
			best = rows
		}
	}
	if best == nil {
		return nil, fmt.Errorf("workbook has no readable sheet")
	}
	return best, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
