// Package api provides the HTTP API server and handlers for Chaekjang.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chaekjang/chaekjang-server/internal/search"
	"github.com/chaekjang/chaekjang-server/internal/service"
	"github.com/chaekjang/chaekjang-server/internal/store"
)

// Version is stamped at build time.
var Version = "dev"

// Services groups the service dependencies for handlers.
type Services struct {
	Search  *service.SearchService
	Liked   *service.LikedBookService
	History *service.HistoryService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services Services
	store    *store.Store
	index    *search.LikedIndex
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// Options configures the server.
type Options struct {
	Services       Services
	Store          *store.Store       // For health checks; may be nil in tests
	Index          *search.LikedIndex // For health checks; may be nil
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("Chaekjang API", Version)
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services: opts.Services,
		store:    opts.Store,
		index:    opts.Index,
		router:   router,
		api:      api,
		logger:   opts.Logger,
	}

	s.registerHealthRoutes()
	s.registerSessionRoutes()
	s.registerLikedRoutes()
	s.registerHistoryRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
