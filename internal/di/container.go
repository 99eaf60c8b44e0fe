// Package di provides dependency injection configuration for the Chaekjang server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/di/providers"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/media/covers"
	"github.com/chaekjang/chaekjang-server/internal/service"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideLikedBookStore)
	do.Provide(injector, providers.ProvideSearchHistoryStore)

	// Search layer
	do.Provide(injector, providers.ProvideLikedIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideKakaoClient)
	do.Provide(injector, providers.ProvideCoverFetcher)

	// Business services
	do.Provide(injector, providers.ProvideLikedBookService)
	do.Provide(injector, providers.ProvideHistoryService)
	do.Provide(injector, providers.ProvideSearchService)

	// Workers
	do.Provide(injector, providers.ProvideImporter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*store.LikedBookStore](injector)
	_ = do.MustInvoke[*store.SearchHistoryStore](injector)
	_ = do.MustInvoke[*providers.LikedIndexHandle](injector)
	_ = do.MustInvoke[*providers.KakaoClientHandle](injector)
	_ = do.MustInvoke[*covers.Fetcher](injector)

	// Business services
	_ = do.MustInvoke[*service.LikedBookService](injector)
	_ = do.MustInvoke[*service.HistoryService](injector)
	_ = do.MustInvoke[*providers.SearchServiceHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.ImporterHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the shelf index if it came up empty
	providers.SyncShelfIndexIfNeeded(injector)

	return nil
}
