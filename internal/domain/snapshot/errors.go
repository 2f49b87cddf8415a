package snapshot

import "errors"

var (
	// ErrInvalidInput indicates an empty item or member identifier.
	ErrInvalidInput = errors.New("invalid snapshot input")
	// ErrItemNotFound indicates the item has never been written.
	ErrItemNotFound = errors.New("item not found")
	// ErrSnapshotNotFound indicates the member has no snapshot history.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrReadLatest indicates the latest snapshot could not be read.
	ErrReadLatest = errors.New("reading latest snapshot")
	// ErrCommit indicates the item batch was rejected by the store.
	ErrCommit = errors.New("committing snapshot batch")
)
