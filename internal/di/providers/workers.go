package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/service"
	"github.com/chaekjang/chaekjang-server/internal/store"
	"github.com/chaekjang/chaekjang-server/internal/watcher"
)

// ImporterHandle wraps the legacy import watcher with shutdown capability.
// The Importer is nil when no import path is configured.
type ImporterHandle struct {
	*watcher.Importer
}

// Shutdown implements do.Shutdownable.
func (h *ImporterHandle) Shutdown() error {
	if h.Importer == nil {
		return nil
	}
	return h.Importer.Stop()
}

// ProvideImporter provides the legacy flat-file import watcher.
func ProvideImporter(i do.Injector) (*ImporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.WatchPath == "" {
		log.Info("Legacy import watcher disabled, no import path configured")
		return &ImporterHandle{Importer: nil}, nil
	}

	likedStore := do.MustInvoke[*store.LikedBookStore](i)
	historyStore := do.MustInvoke[*store.SearchHistoryStore](i)
	likedService := do.MustInvoke[*service.LikedBookService](i)

	imp, err := watcher.New(watcher.Config{
		Dir:         cfg.Import.WatchPath,
		Liked:       likedStore,
		History:     historyStore,
		AfterImport: likedService.SyncIndex,
		Logger:      log.Logger,
	})
	if err != nil {
		return nil, err
	}

	// Pick up files already sitting in the import directory.
	imp.ImportExisting(context.Background())

	return &ImporterHandle{Importer: imp}, nil
}
