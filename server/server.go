// Package server exposes the read-only status HTTP API over the execution
// log. It is observability only, nothing in the pipeline consumes it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/nightfeed/nightfeed/pkg/store"
)

//go:generate moq -out mocks/execution_reader.go -pkg mocks -skip-ensure -fmt goimports . ExecutionReader

// ExecutionReader provides read access to the execution log
type ExecutionReader interface {
	GetExecutions(ctx context.Context, date, status string, limit int) ([]store.Execution, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Server represents the status HTTP server instance
type Server struct {
	config     ConfigProvider
	executions ExecutionReader
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// New initializes a new server instance
func New(cfg ConfigProvider, executions ExecutionReader, version string, debug bool) *Server {
	s := &Server{
		config:     cfg,
		executions: executions,
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting status server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("nightfeed", "nightfeed", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /executions", s.executionsHandler)
	})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// executionRecord is the API view of one execution log entry
type executionRecord struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	Stage           string `json:"stage"`
	Status          string `json:"status"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	CreatedAt       int64  `json:"created_at"`
}

// executionsHandler lists execution log entries, newest first, optionally
// filtered by date and status
func (s *Server) executionsHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 1000 {
			RenderError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	execs, err := s.executions.GetExecutions(r.Context(), date, status, limit)
	if err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	records := make([]executionRecord, 0, len(execs))
	for _, e := range execs {
		rec := executionRecord{
			ID:        e.ID,
			Date:      e.Date,
			Stage:     e.Stage,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		}
		if e.DurationSeconds.Valid {
			d := e.DurationSeconds.Int64
			rec.DurationSeconds = &d
		}
		if e.ErrorMessage.Valid {
			rec.ErrorMessage = e.ErrorMessage.String
		}
		records = append(records, rec)
	}

	RenderJSON(w, r, http.StatusOK, map[string]interface{}{
		"executions": records,
		"count":      len(records),
	})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
