// Package server exposes the intake pipeline over HTTP. The transport
// layer is pure plumbing: it hands the orchestrator raw bytes plus the
// signature header and writes back the status and JSON body it returns.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/falconforge/athena-bridge/internal/intake"
	"github.com/falconforge/athena-bridge/internal/relay"
	"github.com/falconforge/athena-bridge/internal/schema"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Athena-Signature"

// maxBodyBytes caps inbound CAP payloads.
const maxBodyBytes = 1 << 20 // 1MB

// Config holds HTTP intake server configuration.
type Config struct {
	Port       int
	Secret     string
	SchemaPath string
	BridgeURL  string
	Token      string
}

// Server runs the HTTP intake endpoint backed by the orchestrator.
type Server struct {
	cfg   Config
	store *schema.Store
	orch  *intake.Orchestrator
	http  *http.Server
}

// New loads the schema store and wires the intake pipeline.
func New(cfg Config) (*Server, error) {
	store, err := schema.NewStore(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		store: store,
		orch: &intake.Orchestrator{
			Secret: cfg.Secret,
			Store:  store,
			Relay:  relay.NewDispatcher(cfg.BridgeURL, cfg.Token),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /cap", s.handleCAP)
	mux.HandleFunc("GET /{$}", s.handleLiveness)
	mux.HandleFunc("GET /healthz", s.handleLiveness)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Store returns the schema store, for the hot-reload watcher.
func (s *Server) Store() *schema.Store {
	return s.store
}

// Serve starts the HTTP server on the configured port. Blocks until
// shut down.
func (s *Server) Serve() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ServeOn starts the HTTP server on the given listener. For testing.
func (s *Server) ServeOn(lis net.Listener) error {
	if err := s.http.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleCAP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   string(intake.MalformedPayload),
			"message": "unreadable request body",
		})
		return
	}

	resp, failure := s.orch.Process(r.Context(), raw, r.Header.Get(SignatureHeader))
	if failure != nil {
		writeJSON(w, statusFor(failure.Kind), failure)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps the intake failure taxonomy onto HTTP status codes.
func statusFor(kind intake.Kind) int {
	switch kind {
	case intake.Unauthorized:
		return http.StatusUnauthorized
	case intake.SchemaViolation:
		return http.StatusUnprocessableEntity
	case intake.SchemaUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
