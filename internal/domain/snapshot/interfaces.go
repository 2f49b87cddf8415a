package snapshot

import "context"

// Repository provides persistence for snapshot histories.
//
// Latest returns repository.ErrNotFound when the member has no history.
// CommitBatch applies every action for the item together or not at all.
type Repository interface {
	Latest(ctx context.Context, itemID, member string) (*Snapshot, error)
	CommitBatch(ctx context.Context, itemID string, actions []WriteAction) error
	ListItems(ctx context.Context) ([]ItemSummary, error)
	ListMembers(ctx context.Context, itemID string) ([]MemberSummary, error)
	History(ctx context.Context, itemID, member string, opts HistoryOptions) ([]Snapshot, error)
}
