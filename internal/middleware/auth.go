package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/service"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
)

// ContextKey represents keys used in request context.
type ContextKey string

const (
	// UserContextKey is the key for the authenticated user in context.
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for the request ID in context.
	RequestIDContextKey ContextKey = "request_id"
)

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *domain.UserProfile {
	if user, ok := ctx.Value(UserContextKey).(*domain.UserProfile); ok {
		return user
	}
	return nil
}

// Auth requires a valid organizer bearer token and stores the resulting
// profile in the request context.
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			ctx := r.Context()
			profile, err := authService.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Debug("Bearer token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeErrorResponse writes a structured error response.
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	resp := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":      appErr.Type,
			"message":   appErr.Message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.WithError(err).Error("Failed to write error response")
	}
}
