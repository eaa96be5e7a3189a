// Package devserver is a local stand-in for the textbook backend. It serves
// the same JSON contract so the client can run end to end.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/domain/ports/repository"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

const requestTimeout = 60 * time.Second

type Server struct {
	accounts repository.AccountRepository
	issuer   *TokenIssuer
	ai       adapter.Answerer
	limiter  LoginLimiter
	cfg      config.DevServerConfig
	log      *zerolog.Logger
	router   chi.Router
}

// New requires a JWT secret. limiter may be nil to disable login throttling.
func New(cfg config.DevServerConfig, accounts repository.AccountRepository, ai adapter.Answerer, limiter LoginLimiter, logger *zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("devserver: jwt_secret is required")
	}
	if ai == nil {
		return nil, errors.New("devserver: answerer is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.LoginLimit <= 0 {
		limiter = nil
	}
	s := &Server{
		accounts: accounts,
		issuer:   NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		ai:       ai,
		limiter:  limiter,
		cfg:      cfg,
		log:      logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		RequestLog(s.log),
		Recover(s.log),
		Timeout(requestTimeout),
		CORS("http://localhost:3000", "http://127.0.0.1:3000"),
	)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/me", s.handleMe)
		r.Post("/chat", s.handleChat)
		r.Post("/personalize", s.handlePersonalize)
		r.Post("/translate", s.handleTranslate)
	})
	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until ctx is cancelled, then drains for up to 5s.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Str("ai", s.ai.Name()).Msg("devserver listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
