package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/logger"
)

// rateLimitWrites is a huma operation middleware that limits write endpoints
// per caller. Authenticated callers are keyed by user ID, anonymous ones by IP.
func (s *Server) rateLimitWrites(ctx huma.Context, next func(huma.Context)) {
	key := "ip:" + clientIP(ctx)
	if p := principalFrom(ctx.Context()); p != nil {
		key = "user:" + p.ID
	}

	if !s.writeLimiter.Allow(key) {
		logger.FromContext(ctx.Context(), s.logger).Warn("Rate limit exceeded",
			"key", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	next(ctx)
}

// writeLimited is attached to operations that create content.
func (s *Server) writeLimited() huma.Middlewares {
	return huma.Middlewares{s.rateLimitWrites}
}

// clientIP extracts the client IP for rate limiting.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(ctx.RemoteAddr())
	if err != nil {
		return ctx.RemoteAddr()
	}
	return host
}
