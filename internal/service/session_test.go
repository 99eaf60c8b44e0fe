package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// fakeSearcher records issued queries and serves canned pages.
type fakeSearcher struct {
	mu      sync.Mutex
	pages   map[string]*domain.SearchPage
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query domain.SearchQuery, page, _ int) (*domain.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query.Text)

	if result, ok := f.pages[fmt.Sprintf("%s/%d", query.Text, page)]; ok {
		return result, nil
	}
	return &domain.SearchPage{IsLast: true}, nil
}

func (f *fakeSearcher) issuedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func resultPage(isLast bool, total int, isbns ...string) *domain.SearchPage {
	items := make([]domain.BookRecord, 0, len(isbns))
	for _, isbn := range isbns {
		items = append(items, domain.BookRecord{ISBN: isbn, Title: "title-" + isbn})
	}
	return &domain.SearchPage{Items: items, TotalCount: total, PageableCount: total, IsLast: isLast}
}

type sessionEnv struct {
	searcher *fakeSearcher
	liked    *LikedBookService
	history  *HistoryService
	service  *SearchService
}

func newSessionEnv(t *testing.T, pages map[string]*domain.SearchPage) *sessionEnv {
	t.Helper()
	discard := slog.New(slog.DiscardHandler)

	backing, err := store.New(t.TempDir(), discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })

	env := &sessionEnv{
		searcher: &fakeSearcher{pages: pages},
		liked:    NewLikedBookService(store.NewLikedBookStore(backing, discard), nil, nil, discard),
		history:  NewHistoryService(store.NewSearchHistoryStore(backing, 8, discard), discard),
	}
	env.service = NewSearchService(env.searcher, env.liked, env.history, SessionConfig{
		PageSize:      10,
		DebounceDelay: 40 * time.Millisecond,
		TTL:           time.Minute,
	}, discard)
	t.Cleanup(env.service.Close)
	return env
}

func settled(s *Session) func() bool {
	return func() bool {
		v := s.View()
		return !v.IsFetching && len(v.Items) > 0
	}
}

func TestSession_DebounceCollapsesKeystrokes(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"abc/1": resultPage(true, 1, "isbn-abc"),
	})
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("a")
	s.SetSimpleInput("ab")
	s.SetSimpleInput("abc")

	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"abc"}, env.searcher.issuedQueries())
}

func TestSession_SimpleInputClearsDetailedForm(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"한강/1": resultPage(true, 2, "a", "b"),
		"코드/1": resultPage(true, 1, "c"),
	})
	s := env.service.CreateSession(context.Background())

	s.SubmitDetailed("한강", domain.TargetPerson)
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	view := s.View()
	assert.Equal(t, ModeDetailed, view.Mode)
	assert.Equal(t, "한강", view.QueryText)
	assert.Equal(t, domain.TargetPerson, view.Target)

	s.SetSimpleInput("코드")
	view = s.View()
	assert.Equal(t, ModeSimple, view.Mode)
	assert.Equal(t, "코드", view.QueryText)
	assert.Equal(t, domain.TargetNone, view.Target)
}

func TestSession_DetailedSubmitSkipsSettleDelay(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"한강/1": resultPage(true, 1, "a"),
	})
	s := env.service.CreateSession(context.Background())

	// Pending simple input is superseded by the explicit submit.
	s.SetSimpleInput("draft")
	s.SubmitDetailed("한강", domain.TargetPerson)

	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"한강"}, env.searcher.issuedQueries())
	assert.Equal(t, "한강", s.View().QueryText)
}

func TestSession_EmptyStates(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"hit/1": resultPage(true, 1, "a"),
	})
	s := env.service.CreateSession(context.Background())

	// Before any input: prompt.
	assert.Equal(t, EmptyStatePrompt, s.View().EmptyState)

	// Zero-result query: no_results, not prompt.
	s.SetSimpleInput("nothing-matches")
	s.Flush()
	require.Eventually(t, func() bool {
		return s.View().EmptyState == EmptyStateNoResults
	}, time.Second, 5*time.Millisecond)

	// Clearing the input clears results and returns to prompt.
	s.SetSimpleInput("hit")
	s.Flush()
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	s.SetSimpleInput("")
	s.Flush()
	view := s.View()
	assert.Empty(t, view.Items)
	assert.Equal(t, EmptyStatePrompt, view.EmptyState)
}

func TestSession_QueryNormalizationDedupsIdentity(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"golang/1": resultPage(true, 1, "a"),
	})
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("golang")
	s.Flush()
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	// Full-width variant normalizes to the same identity: no refetch.
	s.SetSimpleInput("ｇｏｌａｎｇ")
	s.Flush()
	assert.Equal(t, []string{"golang"}, env.searcher.issuedQueries())
	assert.Len(t, s.View().Items, 1)
}

func TestSession_HistoryRecordedOnSettle(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"클린 코드/1": resultPage(true, 1, "9788966260959"),
	})
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("클린 코드")
	s.Flush()
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	entries := env.history.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "클린 코드", entries[0].Query)
	assert.Equal(t, domain.TargetNone, entries[0].Target)
	assert.Equal(t, 1, entries[0].TotalCount)
	require.Len(t, entries[0].Results, 1)
	assert.Equal(t, "9788966260959", entries[0].Results[0].ISBN)

	// Rendering again must not double-record the same settlement.
	_ = s.View()
	_ = s.View()
	assert.Len(t, env.history.List(context.Background()), 1)
}

func TestSession_ScrollRefreshesHistorySnapshot(t *testing.T) {
	// The provider revises its total between pages; the history entry
	// must follow the page it snapshots.
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"go/1": resultPage(false, 100, "p1a", "p1b"),
		"go/2": resultPage(true, 50, "p2a"),
	})
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("go")
	s.Flush()
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	entries := env.history.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, 100, entries[0].TotalCount)

	require.NoError(t, s.FetchMore(context.Background()))

	entries = env.history.List(context.Background())
	require.Len(t, entries, 1)
	// The entry holds the latest page's items and total, not the
	// aggregate view's first-page total.
	require.Len(t, entries[0].Results, 1)
	assert.Equal(t, "p2a", entries[0].Results[0].ISBN)
	assert.Equal(t, 50, entries[0].TotalCount)
}

func TestSession_ZeroResultQueryRecordsNoHistory(t *testing.T) {
	env := newSessionEnv(t, nil)
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("nothing")
	s.Flush()
	require.Eventually(t, func() bool { return !s.View().IsFetching && s.View().EmptyState == EmptyStateNoResults },
		time.Second, 5*time.Millisecond)

	assert.Empty(t, env.history.List(context.Background()))
}

func TestSession_ToggleLikeRoundTrip(t *testing.T) {
	env := newSessionEnv(t, map[string]*domain.SearchPage{
		"go/1": resultPage(true, 1, "isbn-1"),
	})
	s := env.service.CreateSession(context.Background())

	s.SetSimpleInput("go")
	s.Flush()
	require.Eventually(t, settled(s), time.Second, 5*time.Millisecond)

	ctx := context.Background()
	liked, err := s.ToggleLike(ctx, "isbn-1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, s.View().Items[0].Liked)
	assert.True(t, env.liked.List(ctx).Contains("isbn-1"))

	liked, err = s.ToggleLike(ctx, "isbn-1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, s.View().Items[0].Liked)
	assert.False(t, env.liked.List(ctx).Contains("isbn-1"))
}

func TestSession_ToggleLikeUnknownISBN(t *testing.T) {
	env := newSessionEnv(t, nil)
	s := env.service.CreateSession(context.Background())

	_, err := s.ToggleLike(context.Background(), "never-fetched")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = s.ToggleLike(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestSearchService_SessionLifecycle(t *testing.T) {
	env := newSessionEnv(t, nil)

	s := env.service.CreateSession(context.Background())
	found, err := env.service.Session(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, found)

	env.service.RemoveSession(s.ID)
	_, err = env.service.Session(s.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSearchService_ExpiresIdleSessions(t *testing.T) {
	env := newSessionEnv(t, nil)

	s := env.service.CreateSession(context.Background())
	env.service.expireSessions(time.Now().Add(2 * time.Minute))

	_, err := env.service.Session(s.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
