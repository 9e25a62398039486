// Package http provides the HTTP transport layer for the catalog service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/mvaleed/catalog/internal/auth"
	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/service"
)

// Server is the HTTP server for the catalog service.
type Server struct {
	httpServer      *http.Server
	router          *chi.Mux
	categoryService *service.CategoryService
	jwtManager      *auth.JWTManager
	validate        *validator.Validate
	logger          *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	categoryService *service.CategoryService,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		categoryService: categoryService,
		jwtManager:      jwtManager,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ListenAndServe starts the HTTP server on the given address. After
// Shutdown it returns http.ErrServerClosed, even if it had not started yet.
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1/categories", func(r chi.Router) {
		// Reads are public
		r.Get("/", s.handleListCategories)
		r.Get("/{id}", s.handleGetCategory)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission("categories", "write"))
				r.Post("/", s.handleCreateCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Post("/{id}/activate", s.handleActivateCategory)
				r.Post("/{id}/deactivate", s.handleDeactivateCategory)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission("categories", "delete"))
				r.Delete("/{id}", s.handleDeleteCategory)
			})
		})
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Response helpers

type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	var resp errorResponse

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp = errorResponse{
			Error:   ve.Message,
			Code:    "INVALID_INPUT",
			Details: map[string]string{ve.Field: ve.Message},
		}

	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		resp = errorResponse{Error: err.Error(), Code: "INVALID_INPUT"}

	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Error: "resource not found", Code: "NOT_FOUND"}

	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
		resp = errorResponse{Error: "resource already exists", Code: "ALREADY_EXISTS"}

	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		resp = errorResponse{Error: "unauthorized", Code: "UNAUTHORIZED"}

	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		resp = errorResponse{Error: "forbidden", Code: "FORBIDDEN"}

	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		resp = errorResponse{Error: "conflict", Code: "CONFLICT"}

	default:
		s.logger.Error("unhandled error", slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Context helpers

type contextKey string

const (
	claimsKey contextKey = "claims"
)

func setClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func getClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
