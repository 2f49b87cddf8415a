package main

import (
	"fmt"
	"net/http"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/extract"
	"github.com/ganot/stocklog/internal/mcp"
	"github.com/ganot/stocklog/internal/poller"
	"github.com/ganot/stocklog/internal/source"
	"github.com/ganot/stocklog/internal/sqlite"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	once       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "stocklog",
		Short: "Poll product pages and log per-member stock snapshots",
		Long: `stocklog polls a product feed for each tracked item, sums stock per
member and keeps a time series of snapshots in SQLite. A new snapshot is
written only when a member's stock changes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPoller(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (default $STOCKLOG_CONFIG_PATH)")
	cmd.Flags().BoolVar(&opts.once, "once", false, "run a single polling cycle and exit")

	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot log as read-only MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runPoller(cmd *cobra.Command, opts *rootOptions) error {
	a, err := setup(opts.configPath, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	repo := sqlite.NewSnapshotRepository(a.db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(a.db), a.logger)

	client := source.NewClient(source.Config{
		URLTemplate: cfg.Source.URLTemplate,
		Timeout:     cfg.Source.Timeout(),
		UserAgent:   cfg.Source.UserAgent,
		Headers:     cfg.Source.Headers,
	}, &http.Client{Timeout: cfg.Source.Timeout()}, a.logger)

	reconciler := snapshot.NewReconciler(repo, snapshot.Config{
		Source:          cfg.Source.Tag,
		FailOnReadError: cfg.Reconcile.FailOnReadError,
	}, a.logger)

	driver := poller.NewDriver(poller.Config{
		Items:    cfg.Items,
		Location: cfg.Location(),
	}, client, extract.New(cfg.Extract.StripChars), reconciler, activitySvc, a.logger)

	if opts.once {
		report := driver.RunOnce(cmd.Context())
		a.logger.Info("single pass finished", "failed", report.Failed, "appended", report.Appended, "amended", report.Amended)
		return nil
	}
	return driver.Run(cmd.Context(), cfg.Interval())
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	a, err := setup(opts.configPath, true)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Snapshots: snapshot.NewQueryService(sqlite.NewSnapshotRepository(a.db), a.logger),
			Activity:  activity.NewService(sqlite.NewActivityRepository(a.db), a.logger),
		},
		Version: version,
		Logger:  a.logger,
	})

	a.logger.Info("starting stdio transport")
	if err := server.Run(cmd.Context(), &sdkmcp.StdioTransport{}); err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}
