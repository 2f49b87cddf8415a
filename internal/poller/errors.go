package poller

import (
	"errors"

	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/source"
)

// ErrInvalidInterval indicates a non-positive loop interval.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// FailureKind classifies why an item was skipped in a cycle
type FailureKind string

const (
	FailureFetch   FailureKind = "fetch"
	FailureCoerce  FailureKind = "coerce"
	FailureRead    FailureKind = "read"
	FailureCommit  FailureKind = "commit"
	FailureUnknown FailureKind = "unknown"
)

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, source.ErrInvalidStock):
		return FailureCoerce
	case errors.Is(err, source.ErrFetch), errors.Is(err, source.ErrInvalidInput):
		return FailureFetch
	case errors.Is(err, snapshot.ErrReadLatest):
		return FailureRead
	case errors.Is(err, snapshot.ErrCommit):
		return FailureCommit
	default:
		return FailureUnknown
	}
}
