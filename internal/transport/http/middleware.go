package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mvaleed/catalog/internal/auth"
)

// authMiddleware validates JWT tokens and sets the claims in context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: "missing authorization header",
				Code:  "UNAUTHORIZED",
			})
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: "invalid authorization header format",
				Code:  "UNAUTHORIZED",
			})
			return
		}

		claims, err := s.jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: msg,
				Code:  "UNAUTHORIZED",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
	})
}

// requirePermission returns middleware that checks for a specific permission.
func (s *Server) requirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := getClaims(r.Context())
			if claims == nil {
				s.writeJSON(w, http.StatusUnauthorized, errorResponse{
					Error: "unauthorized",
					Code:  "UNAUTHORIZED",
				})
				return
			}

			if !claims.HasPermission(resource, action) {
				s.logger.Warn("permission denied",
					"subject", claims.Subject,
					"permission", resource+":"+action,
				)
				s.writeJSON(w, http.StatusForbidden, errorResponse{
					Error: "you don't have permission to perform this action",
					Code:  "FORBIDDEN",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
