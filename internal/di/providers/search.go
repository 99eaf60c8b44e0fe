package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/search"
	"github.com/chaekjang/chaekjang-server/internal/service"
)

// LikedIndexHandle wraps the shelf index with shutdown capability.
type LikedIndexHandle struct {
	*search.LikedIndex
}

// Shutdown implements do.Shutdownable.
func (h *LikedIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideLikedIndex provides the Bleve index over liked books.
func ProvideLikedIndex(i do.Injector) (*LikedIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewLikedIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Shelf index initialized", "documents", docCount)

	return &LikedIndexHandle{LikedIndex: index}, nil
}

// SyncShelfIndexIfNeeded rebuilds the shelf index when it is empty but the
// liked-books document is not, e.g. after the index was rebuilt for a new
// mapping version. Should be called after all services are wired.
func SyncShelfIndexIfNeeded(i do.Injector) {
	likedService := do.MustInvoke[*service.LikedBookService](i)
	indexHandle := do.MustInvoke[*LikedIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	liked := likedService.List(ctx)
	if len(liked.Books) == 0 {
		return
	}

	log.Info("Shelf index is empty but liked books exist, triggering rebuild",
		"book_count", len(liked.Books),
	)

	go func() {
		if err := likedService.SyncIndex(context.Background()); err != nil {
			log.Error("Shelf index rebuild failed", "error", err)
		} else {
			count, _ := indexHandle.DocumentCount()
			log.Info("Shelf index rebuild completed", "documents", count)
		}
	}()
}
