package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
)

// SearchHistoryStore persists the search-history document: a bounded,
// deduplicated list of recorded searches, newest first. Mutations are
// serialized read-modify-write cycles like LikedBookStore.
type SearchHistoryStore struct {
	docs   DocumentStore
	limit  int
	logger *slog.Logger

	mu     sync.Mutex
	lastTS int64
	now    func() time.Time
}

// NewSearchHistoryStore creates a SearchHistoryStore capped at limit
// entries. A non-positive limit falls back to domain.DefaultHistoryLimit.
func NewSearchHistoryStore(docs DocumentStore, limit int, logger *slog.Logger) *SearchHistoryStore {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SearchHistoryStore{docs: docs, limit: limit, logger: logger, now: time.Now}
}

// List returns the current history, newest first. Read failures degrade
// to an empty history.
func (s *SearchHistoryStore) List(ctx context.Context) *domain.SearchHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Record inserts a history entry for the query, replacing any prior entry
// with the same (query, target) pair and truncating to the store's limit.
// The returned entry carries the assigned timestamp, which identifies it
// for later removal.
func (s *SearchHistoryStore) Record(ctx context.Context, query string, target domain.SearchTarget, results []domain.BookRecord, totalCount int) (domain.SearchHistoryEntry, error) {
	if query == "" {
		return domain.SearchHistoryEntry{}, errors.Validation("cannot record an empty query")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := domain.SearchHistoryEntry{
		Query:      query,
		Target:     target,
		Timestamp:  s.nextTimestampLocked(),
		Results:    results,
		TotalCount: totalCount,
	}

	history := s.loadLocked(ctx)
	history.Record(entry, s.limit)

	if err := s.docs.WriteDocument(ctx, HistoryDocument, history); err != nil {
		return domain.SearchHistoryEntry{}, errors.Persistence("save search history", err)
	}

	s.logger.Debug("search recorded",
		"query", query,
		"target", string(target),
		"results", len(results),
		"history_size", len(history.Items),
	)
	return entry, nil
}

// Remove deletes the entry identified by timestamp.
// Returns errors.ErrNotFound when no entry matches.
func (s *SearchHistoryStore) Remove(ctx context.Context, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadLocked(ctx)
	if !history.Remove(timestamp) {
		return errors.NotFound("no history entry with that timestamp")
	}

	if err := s.docs.WriteDocument(ctx, HistoryDocument, history); err != nil {
		return errors.Persistence("save search history", err)
	}
	return nil
}

// Replace overwrites the whole history, re-applying the dedup and length
// bounds. Used by the legacy data importer.
func (s *SearchHistoryStore) Replace(ctx context.Context, entries []domain.SearchHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replay oldest-to-newest so Record keeps the newest duplicate.
	var history domain.SearchHistory
	for i := len(entries) - 1; i >= 0; i-- {
		history.Record(entries[i], s.limit)
	}

	if err := s.docs.WriteDocument(ctx, HistoryDocument, &history); err != nil {
		return errors.Persistence("save search history", err)
	}
	return nil
}

func (s *SearchHistoryStore) loadLocked(ctx context.Context) *domain.SearchHistory {
	var history domain.SearchHistory
	err := s.docs.ReadDocument(ctx, HistoryDocument, &history)
	switch {
	case err == nil:
	case errors.Is(err, ErrDocumentNotFound):
		return &domain.SearchHistory{}
	default:
		s.logger.Warn("failed to load search history, starting from empty", "error", err)
		return &domain.SearchHistory{}
	}
	return &history
}

// nextTimestampLocked returns epoch milliseconds, bumped when two records
// land in the same millisecond so timestamps stay unique identities.
func (s *SearchHistoryStore) nextTimestampLocked() int64 {
	ts := s.now().UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts
	return ts
}
