package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
)

// LikedBookStore persists the liked-books document. All mutations are
// whole-document read-modify-write cycles serialized by a mutex so
// concurrent toggles cannot lose updates.
type LikedBookStore struct {
	docs   DocumentStore
	logger *slog.Logger

	mu sync.Mutex
}

// NewLikedBookStore creates a LikedBookStore on top of docs.
func NewLikedBookStore(docs DocumentStore, logger *slog.Logger) *LikedBookStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LikedBookStore{docs: docs, logger: logger}
}

// List returns the current liked set. Read failures and corrupt documents
// degrade to an empty set rather than an error: the liked set is a cache
// of user intent and the pipeline must keep working without it.
func (s *LikedBookStore) List(ctx context.Context) *domain.LikedBooks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Add puts book into the liked set and writes the document back.
// Adding an already-liked ISBN is a no-op. A book without an ISBN cannot
// be liked and is rejected with a validation error.
func (s *LikedBookStore) Add(ctx context.Context, book domain.BookRecord) error {
	if book.ISBN == "" {
		return errors.Validation("cannot like a book without an isbn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	liked := s.loadLocked(ctx)
	if !liked.Add(book) {
		return nil
	}

	if err := s.docs.WriteDocument(ctx, LikedDocument, liked); err != nil {
		return errors.Persistence("save liked books", err)
	}

	s.logger.Debug("book liked", "isbn", book.ISBN, "title", book.Title, "count", len(liked.ISBNs))
	return nil
}

// Remove deletes isbn from the liked set and writes the document back.
// Removing an absent ISBN is a no-op.
func (s *LikedBookStore) Remove(ctx context.Context, isbn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	liked := s.loadLocked(ctx)
	if !liked.Remove(isbn) {
		return nil
	}

	if err := s.docs.WriteDocument(ctx, LikedDocument, liked); err != nil {
		return errors.Persistence("save liked books", err)
	}

	s.logger.Debug("book unliked", "isbn", isbn, "count", len(liked.ISBNs))
	return nil
}

// Replace overwrites the whole liked set. Used by the legacy data
// importer; regular toggles go through Add and Remove.
func (s *LikedBookStore) Replace(ctx context.Context, liked *domain.LikedBooks) error {
	if err := liked.CheckInvariant(); err != nil {
		return errors.Validation("liked set is inconsistent").WithDetails(map[string]string{"cause": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.docs.WriteDocument(ctx, LikedDocument, liked); err != nil {
		return errors.Persistence("save liked books", err)
	}
	return nil
}

func (s *LikedBookStore) loadLocked(ctx context.Context) *domain.LikedBooks {
	var liked domain.LikedBooks
	err := s.docs.ReadDocument(ctx, LikedDocument, &liked)
	switch {
	case err == nil:
	case errors.Is(err, ErrDocumentNotFound):
		return &domain.LikedBooks{}
	default:
		s.logger.Warn("failed to load liked books, starting from empty", "error", err)
		return &domain.LikedBooks{}
	}

	if err := liked.CheckInvariant(); err != nil {
		s.logger.Error("liked books document is inconsistent, starting from empty", "error", err)
		return &domain.LikedBooks{}
	}
	return &liked
}
