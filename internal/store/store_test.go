package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := domain.LikedBooks{
		ISBNs: []string{"9788966260959"},
		Books: []domain.BookRecord{{ISBN: "9788966260959", Title: "클린 코드"}},
	}
	require.NoError(t, s.WriteDocument(ctx, LikedDocument, &in))

	var out domain.LikedBooks
	require.NoError(t, s.ReadDocument(ctx, LikedDocument, &out))
	assert.Equal(t, in, out)
}

func TestStore_MissingDocument(t *testing.T) {
	s := newTestStore(t)

	var out domain.SearchHistory
	err := s.ReadDocument(context.Background(), HistoryDocument, &out)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestStore_WriteReplacesDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteDocument(ctx, HistoryDocument, &domain.SearchHistory{
		Items: []domain.SearchHistoryEntry{{Query: "go", Timestamp: 1}},
	}))
	require.NoError(t, s.WriteDocument(ctx, HistoryDocument, &domain.SearchHistory{
		Items: []domain.SearchHistoryEntry{{Query: "rust", Timestamp: 2}},
	}))

	var out domain.SearchHistory
	require.NoError(t, s.ReadDocument(ctx, HistoryDocument, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "rust", out.Items[0].Query)
}
