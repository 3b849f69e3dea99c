// Package server provides the HTTP API for grabhack.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/decision"
	"github.com/swapnilxi/grab-hack/internal/ingest"
	"github.com/swapnilxi/grab-hack/internal/qa"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// Server is the HTTP server for the grabhack API.
type Server struct {
	answerer *qa.Answerer
	ingestor *ingest.Ingestor
	decider  *decision.Decider
	store    vector.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	answerer *qa.Answerer,
	ingestor *ingest.Ingestor,
	decider *decision.Decider,
	store vector.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		answerer: answerer,
		ingestor: ingestor,
		decider:  decider,
		store:    store,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/ask", s.handleAsk)
		r.Post("/documents", s.handleIngest)
		r.Post("/decisions/{domain}", s.handleDecide)
		r.Post("/decisions/{domain}/validate", s.handleValidate)
		r.Post("/chat", s.handleChat)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops. After Stop it
// returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
