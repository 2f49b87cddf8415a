package snapshot

import (
	"fmt"
	"time"
)

// DefaultSource is the provenance tag stamped on every snapshot.
const DefaultSource = "kmstation"

// Snapshot is the inventory state of one member under one item at one point in time
type Snapshot struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"prod_id"`
	Member     string    `json:"member_name"`
	Time       string    `json:"time"`
	TimeUTC    time.Time `json:"time_utc"`
	MonthSales int64     `json:"month_sales"`
	SoldNum    int64     `json:"sold_num"`
	Stocks     int64     `json:"stocks"`
	UnitSales  *int64    `json:"unit_sales"`
	Source     string    `json:"source"`
}

// Path returns the hierarchical location of the snapshot.
func (s Snapshot) Path() string {
	return Path(s.ItemID, s.Member, s.ID)
}

// Path builds logs/{item}/members/{member}/snapshots/{id}.
func Path(itemID, member, id string) string {
	return fmt.Sprintf("logs/%s/members/%s/snapshots/%s", itemID, member, id)
}

// ActionKind says how a write action touches the history
type ActionKind string

const (
	ActionAppend ActionKind = "append"
	ActionAmend  ActionKind = "amend"
)

// Observation holds the item-level figures observed in one fetch.
type Observation struct {
	Time       string
	MonthSales int64
	SoldNum    int64
}

// ItemObservation is one fetch of an item with stock aggregated per member.
type ItemObservation struct {
	Observation
	Stocks map[string]int64
}

// WriteAction is the reconciler's decision for one (item, member).
//
// For ActionAppend, Snapshot is the new document. For ActionAmend, Snapshot is
// the existing document with Time, MonthSales and SoldNum replaced; the store
// only writes those fields and refreshes TimeUTC.
type WriteAction struct {
	Kind           ActionKind `json:"kind"`
	Snapshot       Snapshot   `json:"snapshot"`
	PreviousStocks *int64     `json:"previous_stocks,omitempty"`
	Degraded       bool       `json:"degraded,omitempty"`
}

// BatchResult summarizes a committed item batch
type BatchResult struct {
	ItemID   string        `json:"prod_id"`
	Actions  []WriteAction `json:"actions"`
	Appended int           `json:"appended"`
	Amended  int           `json:"amended"`
	Degraded int           `json:"degraded"`
}

// ItemSummary is a lightweight representation of a tracked item for listing
type ItemSummary struct {
	ItemID        string    `json:"prod_id"`
	MemberCount   int       `json:"member_count"`
	SnapshotCount int       `json:"snapshot_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MemberSummary is a lightweight representation of a member under an item
type MemberSummary struct {
	ItemID        string    `json:"prod_id"`
	Member        string    `json:"member_name"`
	SnapshotCount int       `json:"snapshot_count"`
	LatestStocks  *int64    `json:"latest_stocks,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HistoryOptions bounds a history read. Results are newest first.
type HistoryOptions struct {
	Limit  int
	Offset int
}
