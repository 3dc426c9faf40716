package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/christaic/bot-incidenciasPEXT/internal/bot"
	"github.com/christaic/bot-incidenciasPEXT/internal/lookup"
	"github.com/christaic/bot-incidenciasPEXT/internal/util"
)

// Default configuration constants
const (
	// DefaultSheetName is the worksheet report rows are appended to
	DefaultSheetName = "Hoja1"
	// DefaultWorkbookSheet is the worksheet of the Graph workbook backend
	DefaultWorkbookSheet = "Hoja1"
	// DefaultGraphTokenFile is where the delegated Graph token is persisted
	DefaultGraphTokenFile = "graph_token.json"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping incident bot with configured modules")
	slog.Debug("Final configuration",
		"token_set", *flags.botToken != "",
		"spreadsheet_set", *flags.spreadsheetID != "",
		"graph_enabled", *flags.graphEnabled,
		"journal_dsn_set", *flags.journalDSN != "")
	if err := bot.Run(ctx, buildBotConfig(flags)); err != nil && ctx.Err() == nil {
		slog.Error("Incident bot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Incident bot exited successfully")
}

// Config holds environment configuration
type Config struct {
	BotToken         string
	SupervisionChats []int64
	CredentialsFile  string
	SpreadsheetID    string
	SheetName        string
	ImagesFolder     string
	MapsAPIKey       string
	GraphEnabled     bool
	GraphTenantID    string
	GraphClientID    string
	GraphToken       string
	WorkbookPath     string
	WorkbookSheet    string
	JournalDSN       string
	OrdersPath       string
	NodesPath        string
}

// Flags holds command line flag values
type Flags struct {
	config Config

	botToken        *string
	credentialsFile *string
	spreadsheetID   *string
	sheetName       *string
	imagesFolder    *string
	mapsAPIKey      *string
	graphEnabled    *bool
	workbookPath    *string
	journalDSN      *string
	ordersPath      *string
	nodesPath       *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:         os.Getenv("BOT_TOKEN"),
		SupervisionChats: util.ParseInt64ListEnv("SUPERVISION_CHAT_IDS"),
		CredentialsFile:  os.Getenv("GCP_CREDENTIALS_FILE"),
		SpreadsheetID:    os.Getenv("SPREADSHEET_ID"),
		SheetName:        os.Getenv("SHEET_NAME"),
		ImagesFolder:     os.Getenv("DRIVE_IMAGES_FOLDER_ID"),
		MapsAPIKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		GraphEnabled:     util.ParseBoolEnv("GRAPH_ENABLED", false),
		GraphTenantID:    os.Getenv("GRAPH_TENANT_ID"),
		GraphClientID:    os.Getenv("GRAPH_CLIENT_ID"),
		GraphToken:       os.Getenv("GRAPH_TOKEN_FILE"),
		WorkbookPath:     os.Getenv("GRAPH_WORKBOOK_PATH"),
		WorkbookSheet:    os.Getenv("GRAPH_WORKBOOK_SHEET"),
		JournalDSN:       os.Getenv("REPORT_DB_DSN"),
		OrdersPath:       os.Getenv("ORDERS_PATH"),
		NodesPath:        os.Getenv("NODES_PATH"),
	}

	if config.SheetName == "" {
		config.SheetName = DefaultSheetName
		slog.Debug("No SHEET_NAME set, using default", "default_sheet", config.SheetName)
	}
	if config.WorkbookSheet == "" {
		config.WorkbookSheet = DefaultWorkbookSheet
	}
	if config.GraphToken == "" {
		config.GraphToken = DefaultGraphTokenFile
	}

	slog.Debug("environment variables loaded",
		"BOT_TOKEN_SET", config.BotToken != "",
		"SUPERVISION_CHAT_IDS", len(config.SupervisionChats),
		"GCP_CREDENTIALS_FILE_SET", config.CredentialsFile != "",
		"SPREADSHEET_ID_SET", config.SpreadsheetID != "",
		"SHEET_NAME", config.SheetName,
		"DRIVE_IMAGES_FOLDER_ID_SET", config.ImagesFolder != "",
		"GOOGLE_MAPS_API_KEY_SET", config.MapsAPIKey != "",
		"GRAPH_ENABLED", config.GraphEnabled,
		"REPORT_DB_DSN_SET", config.JournalDSN != "",
		"ORDERS_PATH", config.OrdersPath,
		"NODES_PATH", config.NodesPath)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		config:          config,
		botToken:        flag.String("bot-token", config.BotToken, "Telegram bot token"),
		credentialsFile: flag.String("gcp-credentials", config.CredentialsFile, "Google service account key file"),
		spreadsheetID:   flag.String("spreadsheet-id", config.SpreadsheetID, "Google Sheets spreadsheet identifier"),
		sheetName:       flag.String("sheet-name", config.SheetName, "worksheet report rows are appended to"),
		imagesFolder:    flag.String("images-folder", config.ImagesFolder, "Drive folder for report photos (id or name)"),
		mapsAPIKey:      flag.String("maps-api-key", config.MapsAPIKey, "Google Maps geocoding API key"),
		graphEnabled:    flag.Bool("graph", config.GraphEnabled, "enable the Microsoft Graph workbook backend"),
		workbookPath:    flag.String("workbook-path", config.WorkbookPath, "drive path of the Graph workbook"),
		journalDSN:      flag.String("journal-dsn", config.JournalDSN, "database DSN for the local report journal"),
		ordersPath:      flag.String("orders-path", config.OrdersPath, "work-order workbook (local path or graph:<drive path>)"),
		nodesPath:       flag.String("nodes-path", config.NodesPath, "node-table workbook (local path or graph:<drive path>)"),
	}
	flag.Parse()
	return flags
}

func buildBotConfig(flags Flags) bot.Config {
	return bot.Config{
		BotToken:         *flags.botToken,
		SupervisionChats: flags.config.SupervisionChats,
		CredentialsFile:  *flags.credentialsFile,
		SpreadsheetID:    *flags.spreadsheetID,
		SheetName:        *flags.sheetName,
		ImagesFolder:     *flags.imagesFolder,
		MapsAPIKey:       *flags.mapsAPIKey,
		GraphEnabled:     *flags.graphEnabled,
		GraphTenantID:    flags.config.GraphTenantID,
		GraphClientID:    flags.config.GraphClientID,
		GraphToken:       flags.config.GraphToken,
		WorkbookPath:     *flags.workbookPath,
		WorkbookSheet:    flags.config.WorkbookSheet,
		JournalDSN:       *flags.journalDSN,
		OrdersPath:       *flags.ordersPath,
		NodesPath:        *flags.nodesPath,
		RefreshInterval:  util.ParseDurationEnv("LOOKUP_REFRESH_INTERVAL", lookup.DefaultRefreshInterval),
	}
}
