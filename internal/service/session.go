package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaekjang/chaekjang-server/internal/debounce"
	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
	"github.com/chaekjang/chaekjang-server/internal/normalize"
	"github.com/chaekjang/chaekjang-server/internal/pagination"
)

// fetchTimeout bounds debounce-triggered provider fetches, which run
// outside any request context.
const fetchTimeout = 15 * time.Second

// Mode selects which input feeds the active query.
type Mode string

// Search modes. Simple is free text with no target; detailed is the
// explicit form with a target field. Only one mode's text is live at a
// time.
const (
	ModeSimple   Mode = "simple"
	ModeDetailed Mode = "detailed"
)

// EmptyState tells the client which empty message to render.
type EmptyState string

// Empty states. "Nothing searched yet" and "the search found nothing"
// are distinct messages.
const (
	EmptyStateNone      EmptyState = ""
	EmptyStatePrompt    EmptyState = "prompt"
	EmptyStateNoResults EmptyState = "no_results"
)

// SessionConfig tunes per-session behavior.
type SessionConfig struct {
	PageSize      int
	DebounceDelay time.Duration
	TTL           time.Duration
}

// Session is one client's search state: the active mode and its input
// text, the debounced effective query, the page accumulator, and a
// liked-set snapshot for per-item liked flags.
//
// The session mutex serializes state transitions; the accumulator and
// debouncer carry their own locking.
type Session struct {
	ID string

	logger    *slog.Logger
	liked     *LikedBookService
	history   *HistoryService
	acc       *pagination.Accumulator
	debouncer *debounce.Debouncer[domain.SearchQuery]

	mu             sync.Mutex
	mode           Mode
	simpleText     string
	detailedText   string
	detailedTarget domain.SearchTarget
	likedSnapshot  *domain.LikedBooks
	lastRecordKey  string
	lastAccess     time.Time
}

func newSession(id string, searcher pagination.Searcher, liked *LikedBookService, history *HistoryService, cfg SessionConfig, logger *slog.Logger) *Session {
	s := &Session{
		ID:            id,
		logger:        logger,
		liked:         liked,
		history:       history,
		acc:           pagination.New(searcher, cfg.PageSize, logger),
		mode:          ModeSimple,
		likedSnapshot: liked.List(context.Background()),
		lastAccess:    time.Now(),
	}
	s.debouncer = debounce.New(cfg.DebounceDelay, s.applyQuery)
	return s
}

// SetSimpleInput records a keystroke in the simple search box. Entering
// the simple box always leaves detailed mode and clears the detailed
// form; the effective query only updates once the input settles.
func (s *Session) SetSimpleInput(text string) {
	s.mu.Lock()
	s.mode = ModeSimple
	s.detailedText = ""
	s.detailedTarget = domain.TargetNone
	s.simpleText = text
	s.mu.Unlock()

	s.debouncer.Set(domain.SearchQuery{Text: text, Sort: domain.SortAccuracy})
}

// SubmitDetailed applies the detailed search form: switches to detailed
// mode, clears the simple box, and issues the query immediately (an
// explicit submit does not wait out the settle delay).
func (s *Session) SubmitDetailed(text string, target domain.SearchTarget) {
	s.mu.Lock()
	s.mode = ModeDetailed
	s.simpleText = ""
	s.detailedText = text
	s.detailedTarget = target
	s.mu.Unlock()

	s.debouncer.Set(domain.SearchQuery{Text: text, Target: target, Sort: domain.SortAccuracy})
	s.debouncer.Flush()
}

// applyQuery is the debouncer callback: the settled input becomes the
// effective query. An inactive query clears the result set; an active
// one gets its first page fetched right away.
func (s *Session) applyQuery(query domain.SearchQuery) {
	query.Text = normalize.Query(query.Text)
	s.acc.Reset(query)
	if !query.Active() {
		return
	}

	// A settle on an unchanged identity keeps its pages; only a fresh
	// identity needs the first page.
	snap := s.acc.Snapshot()
	if snap.PageCount > 0 || snap.IsFetching {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	if err := s.acc.FetchNext(ctx); err != nil {
		s.logger.Warn("search fetch failed", "query", query.Text, "error", err)
		return
	}
	s.recordIfSettled(ctx)
}

// FetchMore requests the next page. Redundant calls while a fetch is in
// flight or past the last page are dropped by the accumulator. A provider
// failure keeps the accumulated pages and surfaces to the caller, who can
// retry by calling again.
func (s *Session) FetchMore(ctx context.Context) error {
	if err := s.acc.FetchNext(ctx); err != nil {
		return err
	}
	s.recordIfSettled(ctx)
	return nil
}

// recordIfSettled writes a history entry once per settled (query, page
// set) combination: the fetch must have completed, at least one item must
// be present, and the same settlement must not have been recorded before.
// Repeated scrolling therefore refreshes the history snapshot to the most
// recently fetched page.
func (s *Session) recordIfSettled(ctx context.Context) {
	snap := s.acc.Snapshot()
	if snap.IsFetching || len(snap.Items) == 0 {
		return
	}

	key := fmt.Sprintf("%s#%d", snap.Query.Identity(), snap.PageCount)
	s.mu.Lock()
	if key == s.lastRecordKey {
		s.mu.Unlock()
		return
	}
	s.lastRecordKey = key
	s.mu.Unlock()

	if _, err := s.history.Record(ctx, snap.Query.Text, snap.Query.Target, snap.LastPageItems, snap.LastPageTotal); err != nil {
		s.logger.Warn("failed to record search history",
			"query", snap.Query.Text,
			"error", err,
		)
	}
}

// ToggleLike flips the liked state for isbn and persists the change.
// The in-memory flip happens before the write (optimistic) and is not
// reverted when the write fails; the failure surfaces to the caller and
// the next successful refresh reconverges the snapshot. Returns the new
// liked state.
func (s *Session) ToggleLike(ctx context.Context, isbn string) (bool, error) {
	if isbn == "" {
		return false, errors.Validation("isbn is required")
	}

	snap := s.acc.Snapshot()

	s.mu.Lock()
	wasLiked := s.likedSnapshot.Contains(isbn)
	var book domain.BookRecord
	if wasLiked {
		s.likedSnapshot.Remove(isbn)
	} else {
		found := false
		for i := range snap.Items {
			if snap.Items[i].ISBN == isbn {
				book = snap.Items[i]
				found = true
				break
			}
		}
		if !found {
			s.mu.Unlock()
			return false, errors.NotFound("isbn not present in current results")
		}
		s.likedSnapshot.Add(book)
	}
	nowLiked := !wasLiked
	s.mu.Unlock()

	var err error
	if nowLiked {
		err = s.liked.Like(ctx, book)
	} else {
		err = s.liked.Unlike(ctx, isbn)
	}
	if err != nil {
		s.logger.Warn("like toggle write failed", "isbn", isbn, "liked", nowLiked, "error", err)
		return nowLiked, err
	}

	refreshed := s.liked.List(ctx)
	s.mu.Lock()
	s.likedSnapshot = refreshed
	s.mu.Unlock()
	return nowLiked, nil
}

// IsLiked reports the session's current liked flag for isbn, optimistic
// flips included.
func (s *Session) IsLiked(isbn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likedSnapshot.Contains(isbn)
}

// BookView is one result item with its liked flag resolved.
type BookView struct {
	domain.BookRecord
	Liked bool `json:"liked"`
}

// View is the session's renderable state.
type View struct {
	SessionID   string              `json:"session_id"`
	Mode        Mode                `json:"mode"`
	QueryText   string              `json:"query_text"`
	Target      domain.SearchTarget `json:"target,omitempty"`
	Items       []BookView          `json:"items"`
	TotalCount  int                 `json:"total_count"`
	HasNextPage bool                `json:"has_next_page"`
	IsFetching  bool                `json:"is_fetching"`
	EmptyState  EmptyState          `json:"empty_state,omitempty"`
}

// View renders the session: the raw input of the active mode, the
// accumulated items with liked flags, and pagination signals.
func (s *Session) View() View {
	snap := s.acc.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.simpleText
	if s.mode == ModeDetailed {
		text = s.detailedText
	}

	items := make([]BookView, 0, len(snap.Items))
	for _, b := range snap.Items {
		items = append(items, BookView{BookRecord: b, Liked: s.likedSnapshot.Contains(b.ISBN)})
	}

	empty := EmptyStateNone
	switch {
	case snap.State == pagination.StateIdle:
		empty = EmptyStatePrompt
	case !snap.IsFetching && snap.PageCount > 0 && len(snap.Items) == 0:
		empty = EmptyStateNoResults
	}

	return View{
		SessionID:   s.ID,
		Mode:        s.mode,
		QueryText:   text,
		Target:      s.detailedTarget,
		Items:       items,
		TotalCount:  snap.TotalCount,
		HasNextPage: snap.HasNextPage,
		IsFetching:  snap.IsFetching,
		EmptyState:  empty,
	}
}

// Flush forces any pending debounced input through immediately.
// Exposed for deterministic tests and the settle-sensitive API paths.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Close stops the session's debounce timer.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *Session) expired(ttl time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess) > ttl
}
