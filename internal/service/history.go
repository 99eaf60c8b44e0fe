package service

import (
	"context"
	"log/slog"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// HistoryService exposes the recorded search history.
type HistoryService struct {
	store  *store.SearchHistoryStore
	logger *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(historyStore *store.SearchHistoryStore, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HistoryService{store: historyStore, logger: logger}
}

// List returns recorded searches, newest first.
func (s *HistoryService) List(ctx context.Context) []domain.SearchHistoryEntry {
	return s.store.List(ctx).Items
}

// Record stores a settled search outcome.
func (s *HistoryService) Record(ctx context.Context, query string, target domain.SearchTarget, results []domain.BookRecord, totalCount int) (domain.SearchHistoryEntry, error) {
	return s.store.Record(ctx, query, target, results, totalCount)
}

// Remove deletes the entry identified by timestamp.
func (s *HistoryService) Remove(ctx context.Context, timestamp int64) error {
	return s.store.Remove(ctx, timestamp)
}
