package store

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
)

func newHistoryStore(t *testing.T, limit int) *SearchHistoryStore {
	t.Helper()
	return NewSearchHistoryStore(newTestStore(t), limit, slog.New(slog.DiscardHandler))
}

func TestSearchHistoryStore_RecordNewestFirst(t *testing.T) {
	s := newHistoryStore(t, 8)
	ctx := context.Background()

	_, err := s.Record(ctx, "first", domain.TargetNone, nil, 0)
	require.NoError(t, err)
	_, err = s.Record(ctx, "second", domain.TargetNone, nil, 0)
	require.NoError(t, err)

	history := s.List(ctx)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "second", history.Items[0].Query)
	assert.Equal(t, "first", history.Items[1].Query)
	assert.Greater(t, history.Items[0].Timestamp, history.Items[1].Timestamp)
}

func TestSearchHistoryStore_DedupSameQueryAndTarget(t *testing.T) {
	s := newHistoryStore(t, 8)
	ctx := context.Background()

	_, err := s.Record(ctx, "한강", domain.TargetNone, nil, 3)
	require.NoError(t, err)
	_, err = s.Record(ctx, "소년이 온다", domain.TargetNone, nil, 1)
	require.NoError(t, err)
	entry, err := s.Record(ctx, "한강", domain.TargetNone, []domain.BookRecord{{ISBN: "x"}}, 7)
	require.NoError(t, err)

	history := s.List(ctx)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "한강", history.Items[0].Query)
	assert.Equal(t, entry.Timestamp, history.Items[0].Timestamp)
	assert.Equal(t, 7, history.Items[0].TotalCount)

	// Same text under a different target is a distinct history identity.
	_, err = s.Record(ctx, "한강", domain.TargetPerson, nil, 0)
	require.NoError(t, err)
	assert.Len(t, s.List(ctx).Items, 3)
}

func TestSearchHistoryStore_CapEnforced(t *testing.T) {
	s := newHistoryStore(t, 8)
	ctx := context.Background()

	for i := range 20 {
		_, err := s.Record(ctx, fmt.Sprintf("query-%02d", i), domain.TargetNone, nil, 0)
		require.NoError(t, err)
	}

	history := s.List(ctx)
	require.Len(t, history.Items, 8)
	assert.Equal(t, "query-19", history.Items[0].Query)
	assert.Equal(t, "query-12", history.Items[7].Query)
}

func TestSearchHistoryStore_RemoveByTimestamp(t *testing.T) {
	s := newHistoryStore(t, 8)
	ctx := context.Background()

	entry, err := s.Record(ctx, "go", domain.TargetNone, nil, 0)
	require.NoError(t, err)
	_, err = s.Record(ctx, "rust", domain.TargetNone, nil, 0)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, entry.Timestamp))
	history := s.List(ctx)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "rust", history.Items[0].Query)

	err = s.Remove(ctx, entry.Timestamp)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSearchHistoryStore_EmptyQueryRejected(t *testing.T) {
	s := newHistoryStore(t, 8)
	_, err := s.Record(context.Background(), "", domain.TargetNone, nil, 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSearchHistoryStore_TimestampsUniqueWithinMillisecond(t *testing.T) {
	s := newHistoryStore(t, 8)
	frozen := time.Now()
	s.now = func() time.Time { return frozen }
	ctx := context.Background()

	a, err := s.Record(ctx, "a", domain.TargetNone, nil, 0)
	require.NoError(t, err)
	b, err := s.Record(ctx, "b", domain.TargetNone, nil, 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.Timestamp, b.Timestamp)
}

func TestSearchHistoryStore_ReplaceReappliesBounds(t *testing.T) {
	s := newHistoryStore(t, 3)
	ctx := context.Background()

	entries := []domain.SearchHistoryEntry{
		{Query: "newest", Timestamp: 50},
		{Query: "dup", Timestamp: 40},
		{Query: "dup", Timestamp: 30},
		{Query: "old", Timestamp: 20},
		{Query: "oldest", Timestamp: 10},
	}
	require.NoError(t, s.Replace(ctx, entries))

	history := s.List(ctx)
	require.Len(t, history.Items, 3)
	assert.Equal(t, "newest", history.Items[0].Query)
	assert.Equal(t, "dup", history.Items[1].Query)
	assert.Equal(t, int64(40), history.Items[1].Timestamp)
	assert.Equal(t, "old", history.Items[2].Query)
}
