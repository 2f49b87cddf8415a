package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/mcp"
	"github.com/ganot/stocklog/internal/poller"
	"github.com/ganot/stocklog/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "%s returned error: %v", name, res.Content)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestIntegration_PollAndQuery(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t, "1001", "2002")

	ts.Feed.Set("1001", `{
		"monthSales": 120,
		"soldNum": 4500,
		"skuList": [
			{"skuName": "【ABC】XYZ CC", "stocks": 5},
			{"skuName": "【ABC】ZZZ CC", "stocks": 7},
			{"skuName": "限定 王小明", "stocks": "3"}
		]
	}`)
	ts.Feed.Set("2002", `{"monthSales": 1, "soldNum": 2, "skuList": [{"skuName": "ＡＢ", "stocks": 9}]}`)

	report := ts.Driver.RunOnce(ctx)
	require.Equal(t, 0, report.Failed)
	require.Equal(t, 3, report.Appended)

	// Second pass with one change: CC sells 2, the rest is unchanged.
	ts.Feed.Set("1001", `{
		"monthSales": 122,
		"soldNum": 4502,
		"skuList": [
			{"skuName": "【ABC】XYZ CC", "stocks": 3},
			{"skuName": "【ABC】ZZZ CC", "stocks": 7},
			{"skuName": "限定 王小明", "stocks": 3}
		]
	}`)
	report = ts.Driver.RunOnce(ctx)
	require.Equal(t, 0, report.Failed)
	require.Equal(t, 1, report.Appended)
	require.Equal(t, 2, report.Amended)

	session := ts.Connect(t)

	var items mcp.ListItemsResult
	call(t, session, "list_items", nil, &items)
	require.Len(t, items.Items, 2)
	require.Equal(t, "1001", items.Items[0].ProdID)
	require.Equal(t, 2, items.Items[0].MemberCount)
	require.Equal(t, 3, items.Items[0].SnapshotCount)

	var members mcp.ListMembersResult
	call(t, session, "list_members", map[string]any{"prod_id": "2002"}, &members)
	require.Len(t, members.Members, 1)
	require.Equal(t, "AB", members.Members[0].Member)
	require.Equal(t, int64(9), *members.Members[0].LatestStocks)

	var history mcp.GetSnapshotsResult
	call(t, session, "get_snapshots", map[string]any{"prod_id": "1001", "member_name": "CC"}, &history)
	require.Len(t, history.Snapshots, 2)
	require.Equal(t, int64(10), history.Snapshots[0].Stocks)
	require.Equal(t, int64(2), *history.Snapshots[0].UnitSales)
	require.Equal(t, int64(122), history.Snapshots[0].MonthSales)
	require.Equal(t, int64(12), history.Snapshots[1].Stocks)
	require.Nil(t, history.Snapshots[1].UnitSales)

	var latest mcp.SnapshotResponse
	call(t, session, "get_latest_snapshot", map[string]any{"prod_id": "1001", "member_name": "王小明"}, &latest)
	require.Equal(t, int64(3), latest.Stocks)
	require.Equal(t, int64(4502), latest.SoldNum)
	require.Equal(t, "kmstation", latest.Source)
	require.Nil(t, latest.UnitSales)
}

func TestIntegration_FailingItemIsSkipped(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t, "1001", "2002", "3003")

	ts.Feed.Set("1001", `{"skuList": [{"skuName": "XYZ CC", "stocks": 5}]}`)
	ts.Feed.Fail("2002", http.StatusServiceUnavailable)
	ts.Feed.Set("3003", `{"skuList": [{"skuName": "XYZ DD", "stocks": "lots"}]}`)

	report := ts.Driver.RunOnce(ctx)
	require.Equal(t, 2, report.Failed)
	require.Equal(t, 1, report.Appended)
	require.Equal(t, poller.FailureFetch, report.Items[1].Kind)
	require.Equal(t, poller.FailureCoerce, report.Items[2].Kind)
	require.Equal(t, 1, ts.Feed.Hits("3003"))

	items, err := ts.Snapshots.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	session := ts.Connect(t)
	var recent mcp.RecentActivityResult
	call(t, session, "recent_activity", map[string]any{"type": string(activity.TypeItemFailed)}, &recent)
	require.Len(t, recent.Activity, 2)

	kinds := map[string]string{}
	for _, entry := range recent.Activity {
		var details map[string]string
		require.NoError(t, json.Unmarshal([]byte(entry.Details), &details))
		kinds[entry.ProdID] = details["kind"]
	}
	require.Equal(t, map[string]string{"2002": "fetch", "3003": "coerce"}, kinds)

	// The failed items recover on the next pass.
	ts.Feed.Set("2002", `{"skuList": [{"skuName": "XYZ EE", "stocks": 1}]}`)
	ts.Feed.Set("3003", `{"skuList": [{"skuName": "XYZ DD", "stocks": 4}]}`)
	report = ts.Driver.RunOnce(ctx)
	require.Equal(t, 0, report.Failed)
	require.Equal(t, 2, report.Appended)
	require.Equal(t, 1, report.Amended)
}

func TestIntegration_IdempotentPasses(t *testing.T) {
	ctx := context.Background()
	ts := testserver.New(t, "1001")
	ts.Feed.Set("1001", `{"monthSales": 5, "skuList": [{"skuName": "XYZ CC", "stocks": 50}, {"skuName": "abc", "stocks": 1}]}`)

	for i := 0; i < 3; i++ {
		report := ts.Driver.RunOnce(ctx)
		require.Equal(t, 0, report.Failed)
	}

	members, err := ts.Snapshots.ListMembers(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		require.Equal(t, 1, m.SnapshotCount, "member %s", m.Member)
	}
	require.Equal(t, "UNKNOWN", members[1].Member)
}
