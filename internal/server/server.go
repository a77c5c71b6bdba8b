// Package server exposes the recommendation engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"
)

const (
	defaultAddr         = ":5001"
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 120 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	// Uploads are re-encoded as base64 and sent to the vision API, so
	// there is no reason to accept arbitrarily large bodies.
	maxUploadBytes = 16 << 20
)

// Config holds the listener settings. Zero values fall back to the defaults
// below; the write timeout default is generous because the analyze flow fans
// out into several model calls.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns the production listener settings.
func DefaultConfig() Config {
	return Config{
		Addr:         defaultAddr,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
}

// Server wraps http.Server with configurable timeouts.
type Server struct {
	httpServer *http.Server
}

// New creates a server for the given handler, filling unset config fields
// from DefaultConfig.
func New(cfg Config, handler http.Handler) *Server {
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run blocks serving requests until the listener fails or Stop is called.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully, honoring the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
