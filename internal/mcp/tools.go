package mcp

import (
	"context"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, svc Services) {
	h := &toolHandlers{snapshots: svc.Snapshots, activity: svc.Activity}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_items",
		Description: "List every tracked item that has been written at least once",
	}, h.listItems)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_members",
		Description: "List the members recorded under an item with their latest stock",
	}, h.listMembers)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_snapshots",
		Description: "Get the snapshot history of one member, newest first",
	}, h.getSnapshots)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_latest_snapshot",
		Description: "Get the most recent snapshot of one member",
	}, h.getLatestSnapshot)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "Get recent per-item polling outcomes, newest first",
	}, h.recentActivity)
}

type toolHandlers struct {
	snapshots SnapshotService
	activity  ActivityService
}

func (h *toolHandlers) listItems(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListItemsParams) (*sdkmcp.CallToolResult, ListItemsResult, error) {
	items, err := h.snapshots.ListItems(ctx)
	if err != nil {
		return nil, ListItemsResult{}, toolError(err)
	}

	out := ListItemsResult{Items: make([]ItemResponse, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, ItemResponse{
			ProdID:        item.ItemID,
			MemberCount:   item.MemberCount,
			SnapshotCount: item.SnapshotCount,
			UpdatedAt:     formatTime(item.UpdatedAt),
		})
	}
	return nil, out, nil
}

func (h *toolHandlers) listMembers(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListMembersParams) (*sdkmcp.CallToolResult, ListMembersResult, error) {
	members, err := h.snapshots.ListMembers(ctx, in.ProdID)
	if err != nil {
		return nil, ListMembersResult{}, toolError(err)
	}

	out := ListMembersResult{ProdID: in.ProdID, Members: make([]MemberResponse, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, MemberResponse{
			Member:        m.Member,
			SnapshotCount: m.SnapshotCount,
			LatestStocks:  m.LatestStocks,
			UpdatedAt:     formatTime(m.UpdatedAt),
		})
	}
	return nil, out, nil
}

func (h *toolHandlers) getSnapshots(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetSnapshotsParams) (*sdkmcp.CallToolResult, GetSnapshotsResult, error) {
	snaps, err := h.snapshots.History(ctx, in.ProdID, in.Member, snapshot.HistoryOptions{
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, GetSnapshotsResult{}, toolError(err)
	}

	out := GetSnapshotsResult{Snapshots: make([]SnapshotResponse, 0, len(snaps))}
	for _, s := range snaps {
		out.Snapshots = append(out.Snapshots, toSnapshotResponse(s))
	}
	return nil, out, nil
}

func (h *toolHandlers) getLatestSnapshot(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetLatestSnapshotParams) (*sdkmcp.CallToolResult, SnapshotResponse, error) {
	snap, err := h.snapshots.Latest(ctx, in.ProdID, in.Member)
	if err != nil {
		return nil, SnapshotResponse{}, toolError(err)
	}
	return nil, toSnapshotResponse(*snap), nil
}

func (h *toolHandlers) recentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityParams) (*sdkmcp.CallToolResult, RecentActivityResult, error) {
	opts := activity.ListOptions{ItemID: in.ProdID, Limit: in.Limit}
	if in.Type != "" {
		activityType := activity.ActivityType(in.Type)
		switch activityType {
		case activity.TypeItemCommitted, activity.TypeItemFailed:
		default:
			return nil, RecentActivityResult{}, &APIError{Code: "INVALID_INPUT", Message: "unknown activity type " + in.Type}
		}
		opts.ActivityType = &activityType
	}

	entries, err := h.activity.GetRecentActivity(ctx, opts)
	if err != nil {
		return nil, RecentActivityResult{}, toolError(err)
	}

	out := RecentActivityResult{Activity: make([]ActivityResponse, 0, len(entries))}
	for _, e := range entries {
		out.Activity = append(out.Activity, toActivityResponse(e))
	}
	return nil, out, nil
}
