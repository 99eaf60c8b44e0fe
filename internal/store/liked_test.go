package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
)

// faultyDocs fails reads and/or writes on demand.
type faultyDocs struct {
	DocumentStore
	readErr  error
	writeErr error
}

func (f *faultyDocs) ReadDocument(ctx context.Context, name string, dest any) error {
	if f.readErr != nil {
		return f.readErr
	}
	return f.DocumentStore.ReadDocument(ctx, name, dest)
}

func (f *faultyDocs) WriteDocument(ctx context.Context, name string, doc any) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.DocumentStore.WriteDocument(ctx, name, doc)
}

func book(isbn string) domain.BookRecord {
	return domain.BookRecord{ISBN: isbn, Title: "title-" + isbn}
}

func TestLikedBookStore_AddListRemove(t *testing.T) {
	s := NewLikedBookStore(newTestStore(t), nil)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, book("111")))
	require.NoError(t, s.Add(ctx, book("222")))

	liked := s.List(ctx)
	assert.Equal(t, []string{"111", "222"}, liked.ISBNs)
	assert.True(t, liked.Contains("111"))

	require.NoError(t, s.Remove(ctx, "111"))
	liked = s.List(ctx)
	assert.Equal(t, []string{"222"}, liked.ISBNs)
	require.NoError(t, liked.CheckInvariant())
}

func TestLikedBookStore_AddIsIdempotent(t *testing.T) {
	s := NewLikedBookStore(newTestStore(t), nil)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, book("111")))
	require.NoError(t, s.Add(ctx, book("111")))
	assert.Len(t, s.List(ctx).ISBNs, 1)
}

func TestLikedBookStore_RemoveAbsentIsNoop(t *testing.T) {
	s := NewLikedBookStore(newTestStore(t), nil)
	require.NoError(t, s.Remove(context.Background(), "does-not-exist"))
}

func TestLikedBookStore_EmptyISBNRejected(t *testing.T) {
	s := NewLikedBookStore(newTestStore(t), nil)
	err := s.Add(context.Background(), domain.BookRecord{Title: "no isbn"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestLikedBookStore_ReadFailureDegradesToEmpty(t *testing.T) {
	docs := &faultyDocs{DocumentStore: newTestStore(t), readErr: fmt.Errorf("disk gone")}
	s := NewLikedBookStore(docs, slog.New(slog.DiscardHandler))

	liked := s.List(context.Background())
	assert.Empty(t, liked.ISBNs)
	assert.Empty(t, liked.Books)
}

func TestLikedBookStore_WriteFailureIsPersistenceError(t *testing.T) {
	docs := &faultyDocs{DocumentStore: newTestStore(t), writeErr: fmt.Errorf("disk full")}
	s := NewLikedBookStore(docs, slog.New(slog.DiscardHandler))

	err := s.Add(context.Background(), book("111"))
	assert.True(t, errors.Is(err, errors.ErrPersistence))
}

func TestLikedBookStore_CorruptDocumentDegradesToEmpty(t *testing.T) {
	backing := newTestStore(t)
	ctx := context.Background()

	// An ISBN without a cached record violates the document invariant.
	require.NoError(t, backing.WriteDocument(ctx, LikedDocument, &domain.LikedBooks{
		ISBNs: []string{"111"},
	}))

	s := NewLikedBookStore(backing, slog.New(slog.DiscardHandler))
	assert.Empty(t, s.List(ctx).ISBNs)
}

func TestLikedBookStore_ConcurrentTogglesDoNotLoseUpdates(t *testing.T) {
	s := NewLikedBookStore(newTestStore(t), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Add(ctx, book(fmt.Sprintf("isbn-%02d", i))))
		}()
	}
	wg.Wait()

	liked := s.List(ctx)
	assert.Len(t, liked.ISBNs, 20)
	require.NoError(t, liked.CheckInvariant())
}
