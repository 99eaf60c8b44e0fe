package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/chaekjang/chaekjang-server/internal/api"
	"github.com/chaekjang/chaekjang-server/internal/config"
	"github.com/chaekjang/chaekjang-server/internal/logger"
	"github.com/chaekjang/chaekjang-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*LikedIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	searchHandle := do.MustInvoke[*SearchServiceHandle](i)
	likedService := do.MustInvoke[*service.LikedBookService](i)
	historyService := do.MustInvoke[*service.HistoryService](i)

	handler := api.NewServer(api.Options{
		Services: api.Services{
			Search:  searchHandle.SearchService,
			Liked:   likedService,
			History: historyService,
		},
		Store:          storeHandle.Store,
		Index:          indexHandle.LikedIndex,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
