package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vozlegal/intake/internal/config"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/model"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"
)

// Server exposes the intake flow to the chat, SMS, and voice platforms
// over HTTP webhooks.
type Server struct {
	cfg        config.ServerConfig
	intake     *service.Intake
	models     model.ModelRouter
	index      *knowledge.Index
	searchTopK int
	httpServer *http.Server
}

func NewServer(cfg config.ServerConfig, intake *service.Intake, models model.ModelRouter) *Server {
	return &Server{cfg: cfg, intake: intake, models: models}
}

// EnableKnowledgeSearch exposes semantic search over the knowledge base.
// Call before Start.
func (s *Server) EnableKnowledgeSearch(index *knowledge.Index, topK int) {
	if topK <= 0 {
		topK = config.DefaultKnowledgeSearchTopK
	}
	s.index = index
	s.searchTopK = topK
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(traceID)
	r.Use(rateLimit(s.cfg.RatePerSecond, s.cfg.RateBurst))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/webhooks/chat", s.handleTurn(session.ChannelChat))
		r.Post("/webhooks/sms", s.handleTurn(session.ChannelSMS))
		r.Post("/webhooks/voice", s.handleTurn(session.ChannelVoice))

		r.Delete("/sessions/{id}", s.handleEndSession)
		r.Get("/sessions/stats", s.handleStats)

		r.Post("/analysis/removal-defense", s.handleRemovalDefense)
		r.Post("/analysis/bond-motion", s.handleBondMotion)

		r.Get("/knowledge/search", s.handleKnowledgeSearch)
	})

	return r
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	readTimeout, err := config.DurationOrDefault(s.cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return err
	}
	writeTimeout, err := config.DurationOrDefault(s.cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return err
	}
	idleTimeout, err := config.DurationOrDefault(s.cfg.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownTimeout, err := config.DurationOrDefault(s.cfg.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		shutdownTimeout = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	slog.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
