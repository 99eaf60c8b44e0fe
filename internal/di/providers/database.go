package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// StoreHandle wraps the document store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideLikedBookStore provides the liked-books document layer.
func ProvideLikedBookStore(i do.Injector) (*store.LikedBookStore, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewLikedBookStore(storeHandle.Store, log.Logger), nil
}

// ProvideSearchHistoryStore provides the search-history document layer.
func ProvideSearchHistoryStore(i do.Injector) (*store.SearchHistoryStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewSearchHistoryStore(storeHandle.Store, cfg.Search.HistoryLimit, log.Logger), nil
}
