// Package server exposes the n8n tool dispatcher over MCP: newline-delimited
// JSON-RPC on stdio, and a small HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"n8n-mcp/internal/tools"
)

// Name is advertised as the MCP server name.
const Name = "n8n-mcp"

// Config contains server configuration values.
type Config struct {
	// Token guards the HTTP endpoints with a bearer token. Empty leaves them open.
	Token   string
	Version string
}

// Dispatcher runs tool invocations.
type Dispatcher interface {
	List() []tools.Descriptor
	Invoke(ctx context.Context, name string, args map[string]any) tools.Result
}

// Server contains the configured router, dispatcher and advertised tool list.
type Server struct {
	cfg        Config
	router     *chi.Mux
	dispatcher Dispatcher
	tools      []mcp.Tool
	logger     *zap.Logger
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, d Dispatcher, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	advertised, err := toMCPTools(d.List())
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		dispatcher: d,
		tools:      advertised,
		logger:     logger,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/tools", s.handleListTools)
		r.Post("/call", s.handleCall)
	})

	return s, nil
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mcp.ListToolsResult{Tools: s.tools})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Name == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing tool name"})
		return
	}
	res := s.dispatcher.Invoke(r.Context(), *req.Name, req.Args)
	writeJSON(w, http.StatusOK, toCallToolResult(res))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
