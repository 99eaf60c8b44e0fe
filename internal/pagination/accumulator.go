// Package pagination drives fetch-next-page accumulation for an active search query.
package pagination

import (
	"context"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

// Searcher fetches one page of results for a query.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery, page, size int) (*domain.SearchPage, error)
}

// State is the accumulator's lifecycle position for the current query.
type State string

// Accumulator states.
const (
	StateIdle         State = "idle"          // no active query
	StateLoading      State = "loading"       // first page in flight
	StateReady        State = "ready"         // >=1 page loaded or first fetch retryable
	StateFetchingMore State = "fetching_more" // next page in flight, prior pages retained
	StateExhausted    State = "exhausted"     // last page reached
)

// Accumulator accumulates provider pages for one query identity.
// Pages from two different identities are never concatenated: Reset
// discards everything and in-flight fetches for a superseded identity
// are dropped on completion via request tagging.
//
// At most one fetch is in flight at a time; FetchNext while fetching is
// a no-op rather than queued.
type Accumulator struct {
	searcher Searcher
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	query    domain.SearchQuery
	identity string
	pages    []*domain.SearchPage
	fetching bool
	fetchTag string
}

// New creates an accumulator in the Idle state.
func New(searcher Searcher, pageSize int, logger *slog.Logger) *Accumulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Accumulator{
		searcher: searcher,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Reset switches the accumulator to a new query identity, discarding all
// accumulated pages. A reset to the same identity keeps existing pages.
// An in-flight fetch for the old identity keeps running but its result is
// discarded when it completes.
func (a *Accumulator) Reset(query domain.SearchQuery) {
	a.mu.Lock()
	defer a.mu.Unlock()

	identity := query.Identity()
	if identity == a.identity {
		return
	}

	a.query = query
	a.identity = identity
	a.pages = nil
	a.fetching = false
	a.fetchTag = ""
}

// FetchNext requests page len(pages)+1 for the current query.
//
// No-ops (not errors): inactive query, a fetch already in flight, or the
// last page already reached. On provider failure the accumulated pages
// are untouched and the error is returned; the caller may retry by
// calling FetchNext again.
func (a *Accumulator) FetchNext(ctx context.Context) error {
	a.mu.Lock()
	if !a.query.Active() || a.fetching || a.exhaustedLocked() {
		a.mu.Unlock()
		return nil
	}

	query := a.query
	identity := a.identity
	page := len(a.pages) + 1
	tag := gonanoid.Must()
	a.fetching = true
	a.fetchTag = tag
	a.mu.Unlock()

	result, err := a.searcher.Search(ctx, query, page, a.pageSize)

	a.mu.Lock()
	defer a.mu.Unlock()

	// The response belongs to the query that was active at request time.
	// If the identity moved on (or the fetch was superseded), discard it.
	if a.identity != identity || a.fetchTag != tag {
		a.logger.Debug("discarding stale page fetch",
			"query", query.Text,
			"page", page,
		)
		return nil
	}

	a.fetching = false
	a.fetchTag = ""

	if err != nil {
		return err
	}

	a.pages = append(a.pages, result)
	return nil
}

// Snapshot is a consistent read of the accumulator for rendering.
// LastPageItems and LastPageTotal are the most recently fetched page on
// its own, for consumers that snapshot per-page rather than
// per-aggregate.
type Snapshot struct {
	State         State
	Query         domain.SearchQuery
	Items         []domain.BookRecord
	LastPageItems []domain.BookRecord
	LastPageTotal int
	TotalCount    int
	HasNextPage   bool
	IsFetching    bool
	PageCount     int
}

// Snapshot returns the aggregate view: items in page order, the first
// page's authoritative total, and the has-more flag derived from the most
// recent page.
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	var items []domain.BookRecord
	for _, p := range a.pages {
		items = append(items, p.Items...)
	}

	totalCount := 0
	lastPageTotal := 0
	var lastPageItems []domain.BookRecord
	if len(a.pages) > 0 {
		// First page's reported total wins even if later pages disagree.
		totalCount = a.pages[0].TotalCount
		last := a.pages[len(a.pages)-1]
		lastPageItems = last.Items
		lastPageTotal = last.TotalCount
	}

	return Snapshot{
		State:         a.stateLocked(),
		Query:         a.query,
		Items:         items,
		LastPageItems: lastPageItems,
		LastPageTotal: lastPageTotal,
		TotalCount:    totalCount,
		HasNextPage:   a.hasNextPageLocked(),
		IsFetching:    a.fetching,
		PageCount:     len(a.pages),
	}
}

// HasNextPage reports whether another page can be fetched.
func (a *Accumulator) HasNextPage() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasNextPageLocked()
}

// IsFetching reports whether a fetch is in flight.
func (a *Accumulator) IsFetching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetching
}

func (a *Accumulator) hasNextPageLocked() bool {
	if len(a.pages) == 0 {
		return a.query.Active()
	}
	return !a.pages[len(a.pages)-1].IsLast
}

func (a *Accumulator) exhaustedLocked() bool {
	return len(a.pages) > 0 && a.pages[len(a.pages)-1].IsLast
}

func (a *Accumulator) stateLocked() State {
	switch {
	case !a.query.Active():
		return StateIdle
	case a.fetching && len(a.pages) == 0:
		return StateLoading
	case a.fetching:
		return StateFetchingMore
	case a.exhaustedLocked():
		return StateExhausted
	default:
		return StateReady
	}
}
