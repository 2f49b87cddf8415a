package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeItemCommitted ActivityType = "item_committed"
	TypeItemFailed    ActivityType = "item_failed"
)

// Entry represents a per-item outcome in the activity log
type Entry struct {
	ID           int64        `json:"id"`
	ItemID       string       `json:"prod_id"`
	Member       *string      `json:"member_name,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
