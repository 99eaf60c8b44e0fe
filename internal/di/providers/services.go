package providers

import (
	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/media/covers"
	"github.com/chaekjang/chaekjang-server/internal/service"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// ProvideLikedBookService provides the liked-books service.
func ProvideLikedBookService(i do.Injector) (*service.LikedBookService, error) {
	likedStore := do.MustInvoke[*store.LikedBookStore](i)
	indexHandle := do.MustInvoke[*LikedIndexHandle](i)
	coverFetcher := do.MustInvoke[*covers.Fetcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLikedBookService(likedStore, indexHandle.LikedIndex, coverFetcher, log.Logger), nil
}

// ProvideHistoryService provides the search-history service.
func ProvideHistoryService(i do.Injector) (*service.HistoryService, error) {
	historyStore := do.MustInvoke[*store.SearchHistoryStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHistoryService(historyStore, log.Logger), nil
}

// SearchServiceHandle wraps the search service with shutdown capability.
type SearchServiceHandle struct {
	*service.SearchService
}

// Shutdown implements do.Shutdownable.
func (h *SearchServiceHandle) Shutdown() error {
	h.SearchService.Close()
	return nil
}

// ProvideSearchService provides the session-based search service.
func ProvideSearchService(i do.Injector) (*SearchServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	kakaoHandle := do.MustInvoke[*KakaoClientHandle](i)
	likedService := do.MustInvoke[*service.LikedBookService](i)
	historyService := do.MustInvoke[*service.HistoryService](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(kakaoHandle.Client, likedService, historyService, service.SessionConfig{
		PageSize:      cfg.Search.PageSize,
		DebounceDelay: cfg.Search.DebounceDelay,
		TTL:           cfg.Search.SessionTTL,
	}, log.Logger)

	log.Info("Search service started",
		"page_size", cfg.Search.PageSize,
		"debounce_delay", cfg.Search.DebounceDelay,
		"session_ttl", cfg.Search.SessionTTL,
	)

	return &SearchServiceHandle{SearchService: svc}, nil
}
