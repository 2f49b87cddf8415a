package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ItemID       string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
