package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/fanclub/internal/auth"
	"github.com/hongminglow/fanclub/internal/config"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/handlers"
	"github.com/hongminglow/fanclub/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, svc *fanclub.Service) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, svc),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the routed, middleware-wrapped handler. Tests mount it on httptest.
func Handler(cfg config.Config, svc *fanclub.Service) http.Handler {
	mux := http.NewServeMux()
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokenManager, svc)

	handlers.NewHealthHandler(time.Now(), cfg.StorageBackend).Register(mux)
	handlers.NewAuthHandler(svc, tokenManager, authn).Register(mux)
	handlers.NewFanclubHandler(svc, authn).Register(mux)
	handlers.NewPostHandler(svc, authn).Register(mux)
	handlers.NewChatHandler(svc, authn).Register(mux)
	handlers.NewUploadHandler(cfg.UploadDir, cfg.MaxUploadBytes, authn).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
