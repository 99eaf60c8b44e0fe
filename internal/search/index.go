package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// LikedIndex wraps a Bleve index over the liked-books shelf.
//
// Thread safety: all public methods are safe for concurrent use.
// The mutex guards against index corruption during rebuilds.
type LikedIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the liked-books index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Uses discard if nil
}

// mappingVersion is incremented whenever the index mapping changes,
// triggering an automatic rebuild on startup.
const mappingVersion = "1"

// NewLikedIndex creates or opens the shelf index. A corrupted index or an
// outdated mapping version is removed and recreated; the shelf document
// remains the source of truth, so a rebuild only costs a re-sync.
func NewLikedIndex(opts Options) (*LikedIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexPath := filepath.Join(opts.DataPath, "liked.bleve")
	versionPath := filepath.Join(opts.DataPath, "liked.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("shelf index has no version file, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("shelf index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing shelf index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write shelf index version file", "error", writeErr)
		}
		logger.Info("created shelf index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened shelf index", "path", indexPath)
	}

	return &LikedIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *LikedIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument indexes one liked book, keyed by ISBN.
func (s *LikedIndex) IndexDocument(doc *LikedDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Map form keeps field names aligned with the lowercase mapping.
	return s.index.Index(doc.ISBN, doc.ToMap())
}

// IndexDocuments indexes a batch of liked books.
func (s *LikedIndex) IndexDocuments(docs []*LikedDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ISBN, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ISBN, err)
		}
	}
	return s.index.Batch(batch)
}

// DeleteDocument removes a book from the index by ISBN.
func (s *LikedIndex) DeleteDocument(isbn string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(isbn)
}

// DocumentCount returns the number of indexed books.
func (s *LikedIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and repopulates it from docs. Used at startup
// and after a legacy data import so the index mirrors the shelf document.
func (s *LikedIndex) Rebuild(docs []*LikedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ISBN, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ISBN, err)
		}
	}
	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("commit rebuild batch: %w", err)
	}

	s.logger.Info("rebuilt shelf index", "path", s.path, "documents", len(docs))
	return nil
}
