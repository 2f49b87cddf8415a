package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	now := time.Now().UTC()
	entry1 := &activity.Entry{
		ItemID:       "1001",
		ActivityType: activity.TypeItemCommitted,
		Summary:      "1 appended, 0 amended",
		Details:      `{"appended":1}`,
		CreatedAt:    now,
	}
	entry2 := &activity.Entry{
		ItemID:       "1001",
		ActivityType: activity.TypeItemFailed,
		Summary:      "fetch failed",
		CreatedAt:    now.Add(time.Second),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListOptions{ItemID: "1001"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"appended":1}`, entries[1].Details)
	require.Empty(t, entries[0].Details)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	member := "CC"
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		ItemID:       "1001",
		Member:       &member,
		ActivityType: activity.TypeItemFailed,
		Summary:      "invalid stock",
	}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		ItemID:       "2002",
		ActivityType: activity.TypeItemCommitted,
		Summary:      "ok",
	}))

	failed := activity.TypeItemFailed
	entries, err := repo.List(ctx, activity.ListOptions{ActivityType: &failed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "1001", entries[0].ItemID)
	require.NotNil(t, entries[0].Member)
	require.Equal(t, "CC", *entries[0].Member)

	entries, err = repo.List(ctx, activity.ListOptions{ItemID: "2002"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].Member)

	entries, err = repo.List(ctx, activity.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
