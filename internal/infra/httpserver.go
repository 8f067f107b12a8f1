package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server so main can start it and drain it on SIGTERM
// without poking at the stdlib type directly.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the API server. The write timeout must accommodate a
// synchronous single try-on, which waits on the remote synthesis call.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	return &HTTPServer{server: srv}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests. Running batches are not waited on;
// their progress is already persisted per item.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
