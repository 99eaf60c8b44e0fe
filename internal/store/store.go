// Package store persists the liked-books and search-history documents.
//
// Persistence follows the whole-document model: every mutation loads the
// current document, applies the change in memory, and writes the full
// document back. The backing implementation is badger, but stores depend
// on the DocumentStore interface so tests (and future backends) can swap
// it out.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// ErrDocumentNotFound is returned when a named document has never been written.
var ErrDocumentNotFound = errors.New("store: document not found")

// DocumentStore reads and replaces whole named JSON documents.
type DocumentStore interface {
	// ReadDocument unmarshals the named document into dest.
	// Returns ErrDocumentNotFound when the document does not exist.
	ReadDocument(ctx context.Context, name string, dest any) error

	// WriteDocument replaces the named document atomically.
	WriteDocument(ctx context.Context, name string, doc any) error
}

// Document names. These match the resource names of the legacy flat-file
// deployment so imported data keeps its identity.
const (
	LikedDocument   = "liked"
	HistoryDocument = "searchHistory"
)

const documentPrefix = "doc:"

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// ReadDocument implements DocumentStore.
func (s *Store) ReadDocument(_ context.Context, name string, dest any) error {
	key := []byte(documentPrefix + name)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %s: %w", name, err)
	}
	return nil
}

// WriteDocument implements DocumentStore.
func (s *Store) WriteDocument(_ context.Context, name string, doc any) error {
	key := []byte(documentPrefix + name)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}
