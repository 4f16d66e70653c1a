package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/security"
	"kidsvids/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	SessionContextKey ContextKey = "session"
	ClaimsContextKey  ContextKey = "claims"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens   *security.TokenIssuer
	sessions *session.Manager
	limiter  *security.RateLimiter
	log      *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenIssuer, sessions *session.Manager, limiter *security.RateLimiter, log *zap.Logger) *Middleware {
	return &Middleware{
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		log:      log,
	}
}

// bearerClaims verifies the Authorization header, if any
func (m *Middleware) bearerClaims(r *http.Request) (*security.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, false
	}
	claims, err := m.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return nil, false
	}
	return claims, true
}

// RequireSession is middleware that requires a device token and attaches the
// device's session to the request context
func (m *Middleware) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.bearerClaims(r)
		if !ok || claims.Role != security.RoleParent {
			respondWithError(w, m.log, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		sess, err := m.sessions.Get(r.Context(), claims.Subject)
		if err != nil {
			respondWithError(w, m.log, http.StatusInternalServerError, ErrInternalServerError, "failed to open session", err)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is middleware that requires an admin token
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.bearerClaims(r)
		if !ok {
			respondWithError(w, m.log, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		if claims.Role != security.RoleAdmin {
			respondWithError(w, m.log, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit is middleware that limits credential attempts per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			respondWithError(w, m.log, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response status for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Logging middleware logs HTTP requests
func Logging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// GetSessionFromContext retrieves the device session from the request context
func GetSessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(SessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetClaimsFromContext retrieves the verified token claims from the request context
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
