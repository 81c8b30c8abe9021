package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/catapult/internal/auth"
	"github.com/mattjoyce/catapult/internal/dispatch"
)

// Server is the webhook HTTP server.
type Server struct {
	config     Config
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	server     *http.Server
}

// New creates a new webhook server instance.
func New(config Config, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tls := s.config.SSLCertChain != "" && s.config.SSLPrivateKey != ""
	s.logger.Info("webhook server starting", "listen", s.config.Listen, "tls", tls)

	errCh := make(chan error, 1)
	go func() {
		var err error
		if tls {
			err = s.server.ListenAndServeTLS(s.config.SSLCertChain, s.config.SSLPrivateKey)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/{hook}", s.handleTrigger)
	r.Post("/{hook}", s.handleTrigger)

	return r
}

// loggingMiddleware logs HTTP requests. Bodies and credential headers are
// never logged.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleTrigger handles one hook invocation.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	hookName := chi.URLParam(r, "hook")

	// Read the raw bytes first; signature verification needs them exactly
	// as received.
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	var params map[string]string
	if r.Method == http.MethodPost && len(body) > 0 {
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		params = p.Parameters
	}

	outcome := s.dispatcher.Dispatch(r.Context(), dispatch.Request{
		HookName:        hookName,
		RawBody:         body,
		SignatureHeader: auth.SignatureHeader(r.Header),
		AuthHeader:      r.Header.Get("Authorization"),
		Parameters:      params,
	})

	switch outcome.Code {
	case dispatch.CodeDispatched:
		s.respondJSON(w, http.StatusAccepted, TriggerResponse{
			Status: outcome.Code.String(),
			Hook:   outcome.Hook,
		})
	case dispatch.CodeNotFound:
		s.respondError(w, http.StatusNotFound, outcome.Message)
	case dispatch.CodeUnauthorized:
		if s.config.BasicAuthConfigured {
			w.Header().Set("WWW-Authenticate", `Basic realm="catapult"`)
		}
		s.respondError(w, http.StatusUnauthorized, outcome.Message)
	case dispatch.CodeRenderFailed:
		s.respondError(w, http.StatusBadRequest, outcome.Message)
	default:
		s.respondError(w, http.StatusBadGateway, outcome.Message)
	}
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
