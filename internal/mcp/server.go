package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SnapshotService defines the snapshot queries needed by MCP.
type SnapshotService interface {
	ListItems(ctx context.Context) ([]snapshot.ItemSummary, error)
	ListMembers(ctx context.Context, itemID string) ([]snapshot.MemberSummary, error)
	History(ctx context.Context, itemID, member string, opts snapshot.HistoryOptions) ([]snapshot.Snapshot, error)
	Latest(ctx context.Context, itemID, member string) (*snapshot.Snapshot, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Snapshots SnapshotService
	Activity  ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures a read-only MCP server over the stock log.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "stocklog",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
