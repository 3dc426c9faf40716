// Package bot wires the transport, flow engine and backends together and runs
// the service.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/christaic/bot-incidenciasPEXT/internal/drive"
	"github.com/christaic/bot-incidenciasPEXT/internal/flow"
	"github.com/christaic/bot-incidenciasPEXT/internal/geocode"
	"github.com/christaic/bot-incidenciasPEXT/internal/graph"
	"github.com/christaic/bot-incidenciasPEXT/internal/lookup"
	"github.com/christaic/bot-incidenciasPEXT/internal/sheets"
	"github.com/christaic/bot-incidenciasPEXT/internal/store"
	"github.com/christaic/bot-incidenciasPEXT/internal/telegram"
)

// Config is the full service configuration.
type Config struct {
	BotToken         string
	SupervisionChats []int64

	// Google backends share one service-account key file.
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
	ImagesFolder    string

	MapsAPIKey string

	// Graph workbook backend; disabled unless GraphEnabled.
	GraphEnabled  bool
	GraphTenantID string
	GraphClientID string
	GraphToken    string
	WorkbookPath  string
	WorkbookSheet string

	// Optional local journal of committed reports.
	JournalDSN string

	// Lookup workbooks: local paths, or drive paths when prefixed "graph:".
	OrdersPath      string
	NodesPath       string
	RefreshInterval time.Duration
}

// Run assembles every configured module and polls until the context is
// canceled. Optional backends that are not configured are skipped with a log
// line; a configured backend that fails to come up aborts startup.
func Run(ctx context.Context, cfg Config) error {
	client, err := telegram.NewClient(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram startup failed: %w", err)
	}
	slog.Info("Bot.Run: authenticated", "bot", client.Username())

	opts := []flow.Option{
		flow.WithSupervisionChats(cfg.SupervisionChats),
	}

	var sinks []flow.ReportSink
	if cfg.SpreadsheetID != "" {
		sheetSink, err := sheets.NewBackend(ctx, cfg.CredentialsFile, cfg.SpreadsheetID, cfg.SheetName)
		if err != nil {
			return fmt.Errorf("sheets startup failed: %w", err)
		}
		sinks = append(sinks, sheetSink)
	} else {
		slog.Warn("Bot.Run: no spreadsheet configured, sheets backend disabled")
	}

	var graphClient *graph.Client
	if cfg.GraphEnabled {
		ts, err := graph.NewTokenSource(ctx, graph.TokenConfig{
			TenantID:  cfg.GraphTenantID,
			ClientID:  cfg.GraphClientID,
			TokenFile: cfg.GraphToken,
		})
		if err != nil {
			return fmt.Errorf("graph startup failed: %w", err)
		}
		graphClient = graph.NewClient(ctx, ts)
		workbook, err := graph.NewWorkbookBackend(ctx, graphClient, cfg.WorkbookPath, cfg.WorkbookSheet)
		if err != nil {
			return fmt.Errorf("graph workbook startup failed: %w", err)
		}
		sinks = append(sinks, workbook)
	}
	if len(sinks) == 0 {
		return fmt.Errorf("no report backend configured")
	}
	opts = append(opts, flow.WithReportSinks(sinks...))

	if cfg.ImagesFolder != "" {
		images, err := drive.NewStore(ctx, cfg.CredentialsFile, cfg.ImagesFolder)
		if err != nil {
			return fmt.Errorf("drive startup failed: %w", err)
		}
		opts = append(opts, flow.WithImageStore(images))
	} else {
		slog.Warn("Bot.Run: no images folder configured, photo upload disabled")
	}

	if cfg.MapsAPIKey != "" {
		geo, err := geocode.NewClient(cfg.MapsAPIKey)
		if err != nil {
			return fmt.Errorf("geocode startup failed: %w", err)
		}
		opts = append(opts, flow.WithGeocoder(geo))
	} else {
		slog.Warn("Bot.Run: no maps api key configured, regions degrade to sentinels")
	}

	dir := lookup.NewDirectory(
		workbookSource(graphClient, cfg.OrdersPath),
		workbookSource(graphClient, cfg.NodesPath),
	)
	if err := dir.Start(ctx, cfg.RefreshInterval); err != nil {
		slog.Error("Bot.Run: initial lookup refresh failed, serving empty snapshots until next refresh", "error", err)
	}
	opts = append(opts, flow.WithDirectory(dir))

	if cfg.JournalDSN != "" {
		journal, err := store.NewReportLog(cfg.JournalDSN)
		if err != nil {
			return fmt.Errorf("journal startup failed: %w", err)
		}
		defer journal.Close()
		opts = append(opts, flow.WithJournal(journal))
	}

	engine := flow.NewEngine(store.NewRecordStore(), client, opts...)
	poller := telegram.NewPoller(client, engine)
	return poller.Run(ctx)
}

// workbookSource resolves a lookup path into a source: paths prefixed with
// "graph:" download from the drive, anything else reads a local file. An
// empty path yields no source.
func workbookSource(client *graph.Client, path string) lookup.Source {
	if path == "" {
		return nil
	}
	const prefix = "graph:"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		drivePath := path[len(prefix):]
		if client == nil {
			slog.Error("Bot.workbookSource: graph path configured but graph is disabled", "path", path)
			return nil
		}
		return func(ctx context.Context) ([]byte, error) {
			return client.DownloadFile(ctx, drivePath)
		}
	}
	return lookup.FileSource(path)
}
