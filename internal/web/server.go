package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"idlerig/internal/config"
	"idlerig/internal/database"
)

type Server struct {
	server *http.Server
}

func NewServer(cfg *config.Config, repo *database.Repository) *Server {
	handler := NewHandler(cfg, repo)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server: httpServer,
	}
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	slog.Info("Starting status API", "url", "http://"+s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down status API")
	return s.server.Shutdown(ctx)
}
