package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `stocklog records per-member inventory snapshots of tracked items.

Data model:
- Item (prod_id): a product page polled on a fixed interval.
- Member: canonical name derived from a variant label (trailing uppercase run or 2-4 CJK characters, else UNKNOWN).
- Snapshot: stock of one member at one point in time, stored at logs/{prod_id}/members/{member}/snapshots/{id}.
  A new snapshot is appended only when stock changes; otherwise the latest one has its time and sales figures refreshed.
  unit_sales is previous stock minus current stock and is absent on the first snapshot of a member.

Workflow:
1) list_items to see tracked ids.
2) list_members(prod_id) for members and their latest stock.
3) get_snapshots(prod_id, member_name) or get_latest_snapshot for history.
4) recent_activity to check polling failures.

Docs:
- stocklog://docs/index
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "stocklog://docs/index",
		Name:        "docs_index",
		Title:       "stocklog docs index",
		Description: "How snapshots are written and how to read them back.",
		Content: `# stocklog

## Writing

Each polling cycle fetches every tracked item in turn, sums stock per member and
reconciles each member against its latest snapshot:

- same stock: the latest snapshot is amended (` + "`time`" + `, ` + "`time_utc`" + `, ` + "`month_sales`" + `, ` + "`sold_num`" + `).
- different stock or no history: a new snapshot is appended with
  ` + "`unit_sales = previous - current`" + ` (absent on first write).

All members of one item are committed together. A failed item is skipped and
recorded as ` + "`item_failed`" + ` in the activity log; the cycle continues.

## Reading

- ` + "`time_utc`" + ` is the ordering key; ` + "`time`" + ` is the local wall clock of the poller.
- Negative ` + "`unit_sales`" + ` means stock was replenished.
- Member ` + "`UNKNOWN`" + ` collects variants whose label matched no rule.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
