package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganot/stocklog/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// QueryService handles read-only access to snapshot histories.
type QueryService struct {
	repo   Repository
	logger *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(repo Repository, logger *slog.Logger) *QueryService {
	return &QueryService{repo: repo, logger: logger}
}

// ListItems returns every item that has been written at least once.
func (s *QueryService) ListItems(ctx context.Context) ([]ItemSummary, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// ListMembers returns the members recorded under an item.
func (s *QueryService) ListMembers(ctx context.Context, itemID string) ([]MemberSummary, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidInput
	}
	members, err := s.repo.ListMembers(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// History returns snapshots for a member, newest first.
func (s *QueryService) History(ctx context.Context, itemID, member string, opts HistoryOptions) ([]Snapshot, error) {
	if strings.TrimSpace(itemID) == "" || strings.TrimSpace(member) == "" {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.History(ctx, itemID, member, opts)
}

// Latest returns the most recent snapshot for a member.
func (s *QueryService) Latest(ctx context.Context, itemID, member string) (*Snapshot, error) {
	if strings.TrimSpace(itemID) == "" || strings.TrimSpace(member) == "" {
		return nil, ErrInvalidInput
	}
	snap, err := s.repo.Latest(ctx, itemID, member)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return snap, nil
}
