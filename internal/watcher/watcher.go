// Package watcher imports legacy flat-file data. The previous deployment
// persisted the liked set and the search history as two JSON files
// (liked.json, searchHistory.json); dropping those files into the import
// directory migrates them into the document store.
package watcher

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/metadata/kakao"
)

// Legacy file names, as written by the original deployment.
const (
	likedFile   = "liked.json"
	historyFile = "searchHistory.json"
)

// defaultSettleDelay is how long a file must be quiet before import.
// Copies into the import directory arrive as a burst of writes.
const defaultSettleDelay = 2 * time.Second

// LikedImporter replaces the whole liked set.
type LikedImporter interface {
	Replace(ctx context.Context, liked *domain.LikedBooks) error
}

// HistoryImporter replaces the whole search history.
type HistoryImporter interface {
	Replace(ctx context.Context, entries []domain.SearchHistoryEntry) error
}

// Config wires the importer.
type Config struct {
	Dir         string        // Import directory, created if missing
	SettleDelay time.Duration // Zero means defaultSettleDelay
	Liked       LikedImporter
	History     HistoryImporter
	AfterImport func(ctx context.Context) error // Optional, runs after each successful import
	Logger      *slog.Logger
}

// Importer watches the import directory and migrates legacy files as
// they appear. Removal events are ignored: deleting an import file never
// deletes imported data.
type Importer struct {
	cfg     Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates the importer and starts watching the configured directory.
func New(cfg Config) (*Importer, error) {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(cfg.Dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch import directory: %w", err)
	}

	imp := &Importer{
		cfg:     cfg,
		watcher: fsWatcher,
		logger:  cfg.Logger,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}

	imp.wg.Add(1)
	go imp.run()

	imp.logger.Info("legacy import watcher started", "dir", cfg.Dir)
	return imp, nil
}

// ImportExisting imports legacy files already present in the directory.
// Called once at startup so a pre-seeded import directory is picked up
// without waiting for a filesystem event.
func (imp *Importer) ImportExisting(ctx context.Context) {
	for _, name := range []string{likedFile, historyFile} {
		path := filepath.Join(imp.cfg.Dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := imp.importFile(ctx, path); err != nil {
			imp.logger.Warn("startup import failed", "file", name, "error", err)
		}
	}
}

// Stop tears the watcher down. Pending settle timers are cancelled.
func (imp *Importer) Stop() error {
	close(imp.done)

	imp.mu.Lock()
	for _, timer := range imp.pending {
		timer.Stop()
	}
	clear(imp.pending)
	imp.mu.Unlock()

	err := imp.watcher.Close()
	imp.wg.Wait()
	return err
}

func (imp *Importer) run() {
	defer imp.wg.Done()

	for {
		select {
		case <-imp.done:
			return
		case event, ok := <-imp.watcher.Events:
			if !ok {
				return
			}
			imp.handleEvent(event)
		case err, ok := <-imp.watcher.Errors:
			if !ok {
				return
			}
			imp.logger.Warn("import watcher error", "error", err)
		}
	}
}

func (imp *Importer) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if name != likedFile && name != historyFile {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		imp.cancelPending(event.Name)
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// Restart the settle timer; import fires once the writes stop.
	imp.mu.Lock()
	defer imp.mu.Unlock()

	if timer, ok := imp.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	imp.pending[event.Name] = time.AfterFunc(imp.cfg.SettleDelay, func() {
		imp.settled(path)
	})
}

func (imp *Importer) cancelPending(path string) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if timer, ok := imp.pending[path]; ok {
		timer.Stop()
		delete(imp.pending, path)
	}
}

func (imp *Importer) settled(path string) {
	imp.mu.Lock()
	delete(imp.pending, path)
	imp.mu.Unlock()

	select {
	case <-imp.done:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := imp.importFile(ctx, path); err != nil {
		imp.logger.Warn("legacy import failed", "file", filepath.Base(path), "error", err)
	}
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	switch filepath.Base(path) {
	case likedFile:
		err = imp.importLiked(ctx, data)
	case historyFile:
		err = imp.importHistory(ctx, data)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if imp.cfg.AfterImport != nil {
		if err := imp.cfg.AfterImport(ctx); err != nil {
			imp.logger.Warn("post-import hook failed", "file", filepath.Base(path), "error", err)
		}
	}

	imp.logger.Info("legacy data imported", "file", filepath.Base(path))
	return nil
}

// legacyLikedFile mirrors the original liked.json: an ISBN list plus the
// provider-shaped book documents.
type legacyLikedFile struct {
	ISBNs []string         `json:"isbns"`
	Books []kakao.Document `json:"books"`
}

func (imp *Importer) importLiked(ctx context.Context, data []byte) error {
	var file legacyLikedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse liked file: %w", err)
	}

	// Rebuild through Add so membership stays consistent even if the
	// legacy file carries duplicates or orphan records.
	liked := &domain.LikedBooks{}
	for i := range file.Books {
		liked.Add(file.Books[i].ToDomain())
	}

	if err := imp.cfg.Liked.Replace(ctx, liked); err != nil {
		return fmt.Errorf("import liked set: %w", err)
	}
	return nil
}

// legacyHistoryFile mirrors the original searchHistory.json. The original
// wrote camelCase totalCount.
type legacyHistoryFile struct {
	Items []legacyHistoryEntry `json:"items"`
}

type legacyHistoryEntry struct {
	Query      string           `json:"query"`
	Target     string           `json:"target"`
	Timestamp  int64            `json:"timestamp"`
	Results    []kakao.Document `json:"results"`
	TotalCount int              `json:"totalCount"`
}

func (imp *Importer) importHistory(ctx context.Context, data []byte) error {
	var file legacyHistoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse history file: %w", err)
	}

	entries := make([]domain.SearchHistoryEntry, 0, len(file.Items))
	for _, item := range file.Items {
		target, err := domain.ParseTarget(item.Target)
		if err != nil {
			target = domain.TargetNone
		}
		results := make([]domain.BookRecord, 0, len(item.Results))
		for i := range item.Results {
			results = append(results, item.Results[i].ToDomain())
		}
		entries = append(entries, domain.SearchHistoryEntry{
			Query:      item.Query,
			Target:     target,
			Timestamp:  item.Timestamp,
			Results:    results,
			TotalCount: item.TotalCount,
		})
	}

	if err := imp.cfg.History.Replace(ctx, entries); err != nil {
		return fmt.Errorf("import search history: %w", err)
	}
	return nil
}
