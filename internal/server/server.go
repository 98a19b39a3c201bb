// Package server exposes the knowledge store, critic, verifier and controller over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ppiankov/brandguard/internal/knowledge"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/util"
	"go.uber.org/zap"
)

// toolTimeout bounds the synchronous tool endpoints; runs are bounded by the controller
const toolTimeout = 60 * time.Second

// Searcher answers similarity queries
type Searcher interface {
	SearchScored(ctx context.Context, query string, category model.Category, k int) ([]knowledge.Match, error)
	Len() int
}

// Critic scores a single draft
type Critic interface {
	Critique(draft model.ChannelDraft) model.Scorecard
}

// Verifier grounds claims in candidate chunks
type Verifier interface {
	Verify(ctx context.Context, claims []string, candidateIDs []string) ([]model.Claim, error)
}

// Runner executes a full generation run
type Runner interface {
	Run(ctx context.Context, brief model.EventBrief) *model.RunResult
}

// Server is the HTTP server for the BrandGuard API
type Server struct {
	store    Searcher
	critic   Critic
	verifier Verifier
	runner   Runner
	config   model.ServerConfig
	topK     int
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
// topK is the default result count for retrieve requests.
func NewServer(store Searcher, critic Critic, verifier Verifier, runner Runner, cfg model.ServerConfig, topK int, logger *zap.Logger) *Server {
	if topK <= 0 {
		topK = 5
	}
	return &Server{
		store:    store,
		critic:   critic,
		verifier: verifier,
		runner:   runner,
		config:   cfg,
		topK:     topK,
		logger:   util.OrNop(logger),
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(toolTimeout))
			r.Post("/retrieve", s.handleRetrieve)
			r.Post("/critique", s.handleCritique)
			r.Post("/verify", s.handleVerify)
		})
		r.Post("/runs", s.handleRun)
	})

	return r
}

// Addr is the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
