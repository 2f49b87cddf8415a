package mocks

import (
	"context"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/stretchr/testify/mock"
)

// SnapshotRepository is a mock for snapshot.Repository.
type SnapshotRepository struct {
	mock.Mock
}

func (m *SnapshotRepository) Latest(ctx context.Context, itemID, member string) (*snapshot.Snapshot, error) {
	args := m.Called(ctx, itemID, member)
	if snap, ok := args.Get(0).(*snapshot.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SnapshotRepository) CommitBatch(ctx context.Context, itemID string, actions []snapshot.WriteAction) error {
	args := m.Called(ctx, itemID, actions)
	return args.Error(0)
}

func (m *SnapshotRepository) ListItems(ctx context.Context) ([]snapshot.ItemSummary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]snapshot.ItemSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SnapshotRepository) ListMembers(ctx context.Context, itemID string) ([]snapshot.MemberSummary, error) {
	args := m.Called(ctx, itemID)
	if list, ok := args.Get(0).([]snapshot.MemberSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SnapshotRepository) History(ctx context.Context, itemID, member string, opts snapshot.HistoryOptions) ([]snapshot.Snapshot, error) {
	args := m.Called(ctx, itemID, member, opts)
	if list, ok := args.Get(0).([]snapshot.Snapshot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
