package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

func newTestIndex(t *testing.T) *LikedIndex {
	t.Helper()
	idx, err := NewLikedIndex(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func seedShelf(t *testing.T, idx *LikedIndex) {
	t.Helper()
	books := []domain.BookRecord{
		{
			ISBN:        "9788966260959",
			Title:       "클린 코드",
			Contents:    "애자일 소프트웨어 장인 정신",
			Authors:     []string{"로버트 C. 마틴"},
			Translators: []string{"박재호", "이해영"},
			Publisher:   "인사이트",
			PublishedAt: time.Date(2013, 12, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			ISBN:        "9788936434120",
			Title:       "소년이 온다",
			Authors:     []string{"한강"},
			Publisher:   "창비",
			PublishedAt: time.Date(2014, 5, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			ISBN:        "9788954699372",
			Title:       "작별하지 않는다",
			Authors:     []string{"한강"},
			Publisher:   "문학동네",
			PublishedAt: time.Date(2021, 9, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	docs := make([]*LikedDocument, 0, len(books))
	for i := range books {
		docs = append(docs, BookToDocument(&books[i], time.Now().UnixMilli()))
	}
	require.NoError(t, idx.IndexDocuments(docs))
}

func hitISBNs(result *Result) []string {
	isbns := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		isbns = append(isbns, h.ISBN)
	}
	return isbns
}

func TestLikedIndex_TitleSearch(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "클린", Target: domain.TargetTitle})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "9788966260959", result.Hits[0].ISBN)
	assert.Equal(t, "클린 코드", result.Hits[0].Title)
}

func TestLikedIndex_PersonSearchCoversTranslators(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "한강", Target: domain.TargetPerson})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)

	result, err = idx.Search(context.Background(), Params{Query: "박재호", Target: domain.TargetPerson})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "9788966260959", result.Hits[0].ISBN)
}

func TestLikedIndex_TargetScopesFields(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	// "한강" is an author, so a title-targeted search must not find it.
	result, err := idx.Search(context.Background(), Params{Query: "한강", Target: domain.TargetTitle})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestLikedIndex_ISBNExactMatch(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "9788936434120", Target: domain.TargetISBN})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "소년이 온다", result.Hits[0].Title)

	result, err = idx.Search(context.Background(), Params{Query: "9788936434", Target: domain.TargetISBN})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestLikedIndex_EmptyQueryBrowsesShelf(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	result, err := idx.Search(context.Background(), Params{Sort: domain.SortLatest})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	// Latest sorts by publish date, newest first.
	assert.Equal(t, []string{"9788954699372", "9788936434120", "9788966260959"}, hitISBNs(result))
}

func TestLikedIndex_DeleteDocument(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	require.NoError(t, idx.DeleteDocument("9788966260959"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	result, err := idx.Search(context.Background(), Params{Query: "클린"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestLikedIndex_RebuildMirrorsShelf(t *testing.T) {
	idx := newTestIndex(t)
	seedShelf(t, idx)

	book := domain.BookRecord{ISBN: "only-one", Title: "혼자 남은 책"}
	require.NoError(t, idx.Rebuild([]*LikedDocument{BookToDocument(&book, time.Now().UnixMilli())}))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestLikedIndex_ReopensExistingIndex(t *testing.T) {
	dir := t.TempDir()
	idx, err := NewLikedIndex(Options{DataPath: dir, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	seedShelf(t, idx)
	require.NoError(t, idx.Close())

	reopened, err := NewLikedIndex(Options{DataPath: dir, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}
