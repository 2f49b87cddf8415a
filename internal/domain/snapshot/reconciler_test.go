package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/repository"
	"github.com/ganot/stocklog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var obs = snapshot.Observation{Time: "2026-10-15 09:30:00", MonthSales: 120, SoldNum: 4500}

func int64Ptr(v int64) *int64 { return &v }

func TestReconciler_Decide_FirstWriteAppends(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "CC").Return(nil, repository.ErrNotFound)

	rec := snapshot.NewReconciler(repo, snapshot.Config{}, nil)
	action, err := rec.Decide(ctx, "1001", "CC", 50, obs)
	require.NoError(t, err)
	require.Equal(t, snapshot.ActionAppend, action.Kind)
	require.Nil(t, action.Snapshot.UnitSales)
	require.Nil(t, action.PreviousStocks)
	require.False(t, action.Degraded)
	require.NotEmpty(t, action.Snapshot.ID)
	require.Equal(t, int64(50), action.Snapshot.Stocks)
	require.Equal(t, snapshot.DefaultSource, action.Snapshot.Source)
	require.Equal(t, obs.Time, action.Snapshot.Time)
	require.Equal(t, obs.MonthSales, action.Snapshot.MonthSales)
	require.Equal(t, obs.SoldNum, action.Snapshot.SoldNum)
}

func TestReconciler_Decide_Delta(t *testing.T) {
	tests := []struct {
		name     string
		last     int64
		observed int64
		want     int64
	}{
		{name: "units sold", last: 50, observed: 35, want: 15},
		{name: "restock", last: 50, observed: 60, want: -10},
		{name: "sold out", last: 3, observed: 0, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := &mocks.SnapshotRepository{}
			repo.On("Latest", ctx, "1001", "CC").Return(&snapshot.Snapshot{
				ID:     "s1",
				ItemID: "1001",
				Member: "CC",
				Stocks: tt.last,
			}, nil)

			rec := snapshot.NewReconciler(repo, snapshot.Config{Source: "feed"}, nil)
			action, err := rec.Decide(ctx, "1001", "CC", tt.observed, obs)
			require.NoError(t, err)
			require.Equal(t, snapshot.ActionAppend, action.Kind)
			require.NotNil(t, action.Snapshot.UnitSales)
			require.Equal(t, tt.want, *action.Snapshot.UnitSales)
			require.Equal(t, tt.last, *action.PreviousStocks)
			require.NotEqual(t, "s1", action.Snapshot.ID)
			require.Equal(t, "feed", action.Snapshot.Source)
		})
	}
}

func TestReconciler_Decide_UnchangedAmends(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "CC").Return(&snapshot.Snapshot{
		ID:         "s1",
		ItemID:     "1001",
		Member:     "CC",
		Time:       "2026-10-15 09:00:00",
		MonthSales: 100,
		SoldNum:    4400,
		Stocks:     35,
		UnitSales:  int64Ptr(15),
		Source:     snapshot.DefaultSource,
	}, nil)

	rec := snapshot.NewReconciler(repo, snapshot.Config{}, nil)
	action, err := rec.Decide(ctx, "1001", "CC", 35, obs)
	require.NoError(t, err)
	require.Equal(t, snapshot.ActionAmend, action.Kind)
	require.Equal(t, "s1", action.Snapshot.ID)
	require.Equal(t, int64(35), action.Snapshot.Stocks)
	require.Equal(t, int64(15), *action.Snapshot.UnitSales)
	require.Equal(t, obs.Time, action.Snapshot.Time)
	require.Equal(t, obs.MonthSales, action.Snapshot.MonthSales)
	require.Equal(t, obs.SoldNum, action.Snapshot.SoldNum)
}

func TestReconciler_Decide_ReadFailureDegrades(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "CC").Return(nil, errors.New("database is locked"))

	rec := snapshot.NewReconciler(repo, snapshot.Config{}, nil)
	action, err := rec.Decide(ctx, "1001", "CC", 35, obs)
	require.NoError(t, err)
	require.Equal(t, snapshot.ActionAppend, action.Kind)
	require.True(t, action.Degraded)
	require.Nil(t, action.Snapshot.UnitSales)
}

func TestReconciler_Decide_ReadFailureStrict(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "CC").Return(nil, errors.New("database is locked"))

	rec := snapshot.NewReconciler(repo, snapshot.Config{FailOnReadError: true}, nil)
	_, err := rec.Decide(ctx, "1001", "CC", 35, obs)
	require.ErrorIs(t, err, snapshot.ErrReadLatest)
}

func TestReconciler_Decide_InvalidInput(t *testing.T) {
	rec := snapshot.NewReconciler(&mocks.SnapshotRepository{}, snapshot.Config{}, nil)
	_, err := rec.Decide(context.Background(), "", "CC", 1, obs)
	require.ErrorIs(t, err, snapshot.ErrInvalidInput)
	_, err = rec.Decide(context.Background(), "1001", " ", 1, obs)
	require.ErrorIs(t, err, snapshot.ErrInvalidInput)
}

func TestReconciler_ReconcileItem_CommitsOneBatch(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "AB").Return(&snapshot.Snapshot{ID: "a1", ItemID: "1001", Member: "AB", Stocks: 7}, nil)
	repo.On("Latest", ctx, "1001", "CC").Return(nil, repository.ErrNotFound)
	repo.On("Latest", ctx, "1001", "王小明").Return(nil, errors.New("timeout"))
	repo.On("CommitBatch", ctx, "1001", mock.MatchedBy(func(actions []snapshot.WriteAction) bool {
		return len(actions) == 3 &&
			actions[0].Snapshot.Member == "AB" &&
			actions[1].Snapshot.Member == "CC" &&
			actions[2].Snapshot.Member == "王小明"
	})).Return(nil)

	rec := snapshot.NewReconciler(repo, snapshot.Config{}, nil)
	result, err := rec.ReconcileItem(ctx, "1001", snapshot.ItemObservation{
		Observation: obs,
		Stocks:      map[string]int64{"CC": 12, "AB": 7, "王小明": 3},
	})
	require.NoError(t, err)
	require.Equal(t, "1001", result.ItemID)
	require.Equal(t, 1, result.Amended)
	require.Equal(t, 2, result.Appended)
	require.Equal(t, 1, result.Degraded)
	repo.AssertNumberOfCalls(t, "CommitBatch", 1)
}

func TestReconciler_ReconcileItem_DecisionFailureSkipsCommit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "AB").Return(nil, repository.ErrNotFound)
	repo.On("Latest", ctx, "1001", "CC").Return(nil, errors.New("disk I/O error"))

	rec := snapshot.NewReconciler(repo, snapshot.Config{FailOnReadError: true}, nil)
	_, err := rec.ReconcileItem(ctx, "1001", snapshot.ItemObservation{
		Observation: obs,
		Stocks:      map[string]int64{"AB": 1, "CC": 2},
	})
	require.ErrorIs(t, err, snapshot.ErrReadLatest)
	repo.AssertNotCalled(t, "CommitBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_ReconcileItem_CommitFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SnapshotRepository{}
	repo.On("Latest", ctx, "1001", "CC").Return(nil, repository.ErrNotFound)
	repo.On("CommitBatch", ctx, "1001", mock.Anything).Return(errors.New("constraint failed"))

	rec := snapshot.NewReconciler(repo, snapshot.Config{}, nil)
	result, err := rec.ReconcileItem(ctx, "1001", snapshot.ItemObservation{
		Observation: obs,
		Stocks:      map[string]int64{"CC": 12},
	})
	require.ErrorIs(t, err, snapshot.ErrCommit)
	require.Nil(t, result)
}

func TestSnapshot_Path(t *testing.T) {
	snap := snapshot.Snapshot{ID: "abc", ItemID: "1001", Member: "CC"}
	require.Equal(t, "logs/1001/members/CC/snapshots/abc", snap.Path())
}
