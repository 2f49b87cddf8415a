package mcp

import (
	"time"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
)

// Tool inputs

type ListItemsParams struct{}

type ListMembersParams struct {
	ProdID string `json:"prod_id" jsonschema:"tracked item id"`
}

type GetSnapshotsParams struct {
	ProdID string `json:"prod_id" jsonschema:"tracked item id"`
	Member string `json:"member_name" jsonschema:"member name as listed by list_members"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum snapshots to return (default 50, max 500)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of newest snapshots to skip"`
}

type GetLatestSnapshotParams struct {
	ProdID string `json:"prod_id" jsonschema:"tracked item id"`
	Member string `json:"member_name" jsonschema:"member name as listed by list_members"`
}

type RecentActivityParams struct {
	ProdID string `json:"prod_id,omitempty" jsonschema:"only entries for this item"`
	Type   string `json:"type,omitempty" jsonschema:"item_committed or item_failed"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum entries to return (default 100)"`
}

// Tool outputs. Timestamps are RFC 3339 strings.

type ItemResponse struct {
	ProdID        string `json:"prod_id"`
	MemberCount   int    `json:"member_count"`
	SnapshotCount int    `json:"snapshot_count"`
	UpdatedAt     string `json:"updated_at"`
}

type ListItemsResult struct {
	Items []ItemResponse `json:"items"`
}

type MemberResponse struct {
	Member        string `json:"member_name"`
	SnapshotCount int    `json:"snapshot_count"`
	LatestStocks  *int64 `json:"latest_stocks,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

type ListMembersResult struct {
	ProdID  string           `json:"prod_id"`
	Members []MemberResponse `json:"members"`
}

type SnapshotResponse struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	ProdID     string `json:"prod_id"`
	Member     string `json:"member_name"`
	Time       string `json:"time"`
	TimeUTC    string `json:"time_utc"`
	MonthSales int64  `json:"month_sales"`
	SoldNum    int64  `json:"sold_num"`
	Stocks     int64  `json:"stocks"`
	UnitSales  *int64 `json:"unit_sales,omitempty"`
	Source     string `json:"source"`
}

type GetSnapshotsResult struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}

type ActivityResponse struct {
	ID        int64  `json:"id"`
	ProdID    string `json:"prod_id"`
	Member    string `json:"member_name,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

type RecentActivityResult struct {
	Activity []ActivityResponse `json:"activity"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toSnapshotResponse(s snapshot.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:         s.ID,
		Path:       s.Path(),
		ProdID:     s.ItemID,
		Member:     s.Member,
		Time:       s.Time,
		TimeUTC:    formatTime(s.TimeUTC),
		MonthSales: s.MonthSales,
		SoldNum:    s.SoldNum,
		Stocks:     s.Stocks,
		UnitSales:  s.UnitSales,
		Source:     s.Source,
	}
}

func toActivityResponse(e activity.Entry) ActivityResponse {
	resp := ActivityResponse{
		ID:        e.ID,
		ProdID:    e.ItemID,
		Type:      string(e.ActivityType),
		Summary:   e.Summary,
		Details:   e.Details,
		CreatedAt: formatTime(e.CreatedAt),
	}
	if e.Member != nil {
		resp.Member = *e.Member
	}
	return resp
}
