package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aluiziotomazelli/wifi-manager/internal/audit"
	"github.com/aluiziotomazelli/wifi-manager/internal/auth"
)

// Server is the local HTTP control surface over the Manager Core.
type Server struct {
	httpServer     *http.Server
	manager        ManagerPort
	telemetry      TelemetryPort
	audit          *audit.Logger
	authMiddleware *auth.Middleware
	startTime      time.Time
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

// NewServer builds a Server. authMiddleware is required: the control
// surface has no unauthenticated mode.
func NewServer(mgr ManagerPort, hub TelemetryPort, auditLogger *audit.Logger, authMiddleware *auth.Middleware, readTimeout, writeTimeout, idleTimeout time.Duration) *Server {
	return &Server{
		manager:        mgr,
		telemetry:      hub,
		audit:          auditLogger,
		authMiddleware: authMiddleware,
		startTime:      time.Now(),
		readTimeout:    readTimeout,
		writeTimeout:   writeTimeout,
		idleTimeout:    idleTimeout,
	}
}

// Start serves the API at addr. It blocks until the server stops.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// logAction is a small helper every handler calls to audit itself.
func (s *Server) logAction(ctx context.Context, action string, err error, start time.Time) {
	if s.audit == nil {
		return
	}
	s.audit.LogAction(ctx, action, err, time.Since(start))
}
