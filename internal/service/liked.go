// Package service wires the search pipeline together: per-session search
// orchestration, the liked-books shelf, and the search history.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
	"github.com/chaekjang/chaekjang-server/internal/media/covers"
	"github.com/chaekjang/chaekjang-server/internal/search"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// coverTimeout bounds the best-effort blurhash fetch during a like.
const coverTimeout = 5 * time.Second

// LikedBookService manages the liked-books shelf: the persisted liked
// set, the full-text shelf index, and cover placeholders.
type LikedBookService struct {
	store  *store.LikedBookStore
	index  *search.LikedIndex
	covers *covers.Fetcher
	logger *slog.Logger
}

// NewLikedBookService creates a LikedBookService. The index and cover
// fetcher may be nil; both are enrichments, not requirements.
func NewLikedBookService(likedStore *store.LikedBookStore, index *search.LikedIndex, coverFetcher *covers.Fetcher, logger *slog.Logger) *LikedBookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LikedBookService{
		store:  likedStore,
		index:  index,
		covers: coverFetcher,
		logger: logger,
	}
}

// List returns the current liked set.
func (s *LikedBookService) List(ctx context.Context) *domain.LikedBooks {
	return s.store.List(ctx)
}

// Like adds book to the shelf. The persisted write is the one operation
// that can fail; the cover placeholder and the index update are
// best-effort and only logged.
func (s *LikedBookService) Like(ctx context.Context, book domain.BookRecord) error {
	if s.covers != nil && book.CoverBlurhash == "" && book.ThumbnailURL != "" {
		coverCtx, cancel := context.WithTimeout(ctx, coverTimeout)
		hash, err := s.covers.BlurhashFromURL(coverCtx, book.ThumbnailURL)
		cancel()
		if err != nil {
			s.logger.Debug("cover placeholder skipped", "isbn", book.ISBN, "error", err)
		} else {
			book.CoverBlurhash = hash
		}
	}

	if err := s.store.Add(ctx, book); err != nil {
		return err
	}

	if s.index != nil {
		doc := search.BookToDocument(&book, time.Now().UnixMilli())
		if err := s.index.IndexDocument(doc); err != nil {
			s.logger.Warn("failed to index liked book", "isbn", book.ISBN, "error", err)
		}
	}
	return nil
}

// Unlike removes isbn from the shelf.
func (s *LikedBookService) Unlike(ctx context.Context, isbn string) error {
	if err := s.store.Remove(ctx, isbn); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteDocument(isbn); err != nil {
			s.logger.Warn("failed to deindex liked book", "isbn", isbn, "error", err)
		}
	}
	return nil
}

// SearchShelf runs a full-text search over the liked set. Without an
// index there is nothing to search.
func (s *LikedBookService) SearchShelf(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.index == nil {
		return nil, errors.Config("shelf index not configured")
	}
	return s.index.Search(ctx, params)
}

// SyncIndex rebuilds the shelf index from the persisted liked set.
// Called at startup and after a legacy data import.
func (s *LikedBookService) SyncIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	liked := s.store.List(ctx)
	docs := make([]*search.LikedDocument, 0, len(liked.Books))
	now := time.Now().UnixMilli()
	for i := range liked.Books {
		docs = append(docs, search.BookToDocument(&liked.Books[i], now))
	}

	if err := s.index.Rebuild(docs); err != nil {
		return err
	}
	s.logger.Info("shelf index synced", "documents", len(docs))
	return nil
}
