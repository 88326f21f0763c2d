package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
)

const requestIDHeader = "X-Request-Id"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyPrincipal contextKey = "principal"

// requestLogger assigns a request ID, attaches a request-scoped logger to the
// context and logs each completed request.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			reqLogger := base.With("request_id", requestID)
			ctx := logger.WithContext(r.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			reqLogger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// authMiddleware resolves a Bearer token into a principal stored on the
// context. Requests without a valid token continue anonymously; handlers use
// GetPrincipal when authentication is required.
func authMiddleware(identity *service.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := identity.CurrentPrincipal(r.Header.Get("Authorization"))
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := setPrincipal(r.Context(), principal)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx, nil).With("user_id", principal.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, p)
}

// principalFrom returns the caller or nil for anonymous requests.
func principalFrom(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(contextKeyPrincipal).(*domain.Principal)
	return p
}

// GetPrincipal returns the authenticated caller from context.
// Returns a 401 error if the request is anonymous.
func GetPrincipal(ctx context.Context) (*domain.Principal, error) {
	p := principalFrom(ctx)
	if p == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return p, nil
}
