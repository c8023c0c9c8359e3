package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aluiziotomazelli/wifi-manager/internal/audit"
	"github.com/aluiziotomazelli/wifi-manager/internal/auth"
)

const basePath = "/v1/wifi"

// RegisterRoutes wires every WiFi manager control-surface endpoint onto mux,
// each except /health guarded by the auth middleware's scope check.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	read := s.authMiddleware.RequireScope(auth.ScopeRead)
	control := s.authMiddleware.RequireScope(auth.ScopeControl)
	telemetryScope := s.authMiddleware.RequireScope(auth.ScopeTelemetry)

	mux.HandleFunc(basePath+"/state", s.authMiddleware.RequireAuth(read(s.handleState)))
	mux.HandleFunc(basePath+"/start", s.authMiddleware.RequireAuth(control(s.handleStart)))
	mux.HandleFunc(basePath+"/stop", s.authMiddleware.RequireAuth(control(s.handleStop)))
	mux.HandleFunc(basePath+"/connect", s.authMiddleware.RequireAuth(control(s.handleConnect)))
	mux.HandleFunc(basePath+"/disconnect", s.authMiddleware.RequireAuth(control(s.handleDisconnect)))
	mux.HandleFunc(basePath+"/credentials", s.authMiddleware.RequireAuth(control(s.handleCredentials)))
	mux.HandleFunc(basePath+"/factory-reset", s.authMiddleware.RequireAuth(control(s.handleFactoryReset)))
	mux.HandleFunc(basePath+"/events", s.authMiddleware.RequireAuth(telemetryScope(s.handleEvents)))
	mux.HandleFunc(basePath+"/health", s.handleHealth)
}

// decodeStrict decodes a JSON body, rejecting unknown fields and trailing
// data.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// asyncOrSync reads an optional ?wait_ms= query parameter: 0 (default)
// selects the async variant, any positive value the sync variant with that
// timeout.
func asyncOrSync(r *http.Request) (sync bool, timeout time.Duration) {
	raw := r.URL.Query().Get("wait_ms")
	if raw == "" {
		return false, 0
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return false, 0
	}
	return true, time.Duration(ms) * time.Millisecond
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed", nil)
		return
	}
	valid, err := s.manager.IsCredentialsValid()
	if err != nil {
		WriteManagerError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"state":            s.manager.GetState().String(),
		"credentialsValid": valid,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.runCommand(w, r, "start", s.manager.StartAsync, s.manager.StartSync)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.runCommand(w, r, "stop", s.manager.StopAsync, s.manager.StopSync)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.runCommand(w, r, "connect", s.manager.ConnectAsync, s.manager.ConnectSync)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.runCommand(w, r, "disconnect", s.manager.DisconnectAsync, s.manager.DisconnectSync)
}

// runCommand dispatches a start/stop/connect/disconnect request to its
// async or sync variant per the wait_ms query parameter, and audits the
// call either way.
func (s *Server) runCommand(w http.ResponseWriter, r *http.Request, action string, async func() error, sync func(time.Duration) error) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is allowed", nil)
		return
	}
	start := time.Now()
	wantSync, timeout := asyncOrSync(r)

	var err error
	if wantSync {
		err = sync(timeout)
	} else {
		err = async()
	}

	ctx := s.auditContext(r)
	s.logAction(ctx, action, err, start)

	if err != nil {
		WriteManagerError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"state": s.manager.GetState().String()})
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := s.auditContext(r)

	switch r.Method {
	case http.MethodPost:
		var req struct {
			SSID     string `json:"ssid"`
			Password string `json:"password"`
		}
		if err := decodeStrict(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", nil)
			return
		}
		err := s.manager.SetCredentials(r.Context(), req.SSID, req.Password)
		s.logAction(ctx, "set_credentials", err, start)
		if err != nil {
			WriteManagerError(w, err)
			return
		}
		WriteSuccess(w, map[string]interface{}{"ssid": req.SSID})
	case http.MethodDelete:
		err := s.manager.ClearCredentials(r.Context())
		s.logAction(ctx, "clear_credentials", err, start)
		if err != nil {
			WriteManagerError(w, err)
			return
		}
		WriteSuccess(w, nil)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST and DELETE are allowed", nil)
	}
}

func (s *Server) handleFactoryReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is allowed", nil)
		return
	}
	start := time.Now()
	ctx := s.auditContext(r)

	err := s.manager.FactoryReset(r.Context())
	s.logAction(ctx, "factory_reset", err, start)
	if err != nil {
		WriteManagerError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"state": s.manager.GetState().String()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed", nil)
		return
	}
	if s.telemetry == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "telemetry hub not available", nil)
		return
	}
	if err := s.telemetry.Subscribe(w, r); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "telemetry stream failed", nil)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed", nil)
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"status":    "ok",
		"uptimeSec": time.Since(s.startTime).Seconds(),
		"state":     s.manager.GetState().String(),
	})
}

// auditContext carries the authenticated subject into the audit log; a
// request without claims keeps its context and is logged as "local".
func (s *Server) auditContext(r *http.Request) context.Context {
	if claims := auth.GetClaimsFromRequest(r); claims != nil {
		return audit.WithActor(r.Context(), claims.Subject)
	}
	return r.Context()
}
