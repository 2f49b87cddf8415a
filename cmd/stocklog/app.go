package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ganot/stocklog/internal/config"
	"github.com/ganot/stocklog/internal/sqlite"
)

// app holds the process-wide resources opened at startup.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sqlite.DB
	logFile *logFileWriter
}

// setup loads configuration, builds the logger and opens the database.
// Any error here is fatal for the process.
func setup(configPath string, stdio bool) (*app, error) {
	config.LoadEnvFiles()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	a := &app{cfg: cfg}

	// Stdout carries JSON-RPC in stdio mode.
	logWriter := io.Writer(os.Stdout)
	if stdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			a.logFile = fileWriter
			logWriter = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	a.logger.Info("starting stocklog", append([]any{"version", version}, logAttrs(cfg)...)...)

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = db

	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the database and log file.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func logAttrs(cfg config.Config) []any {
	return []any{
		slog.Int("items", len(cfg.Items)),
		slog.Duration("interval", cfg.Interval()),
		slog.String("timezone", cfg.Location().String()),
		slog.String("db", cfg.DB.Path),
	}
}
