package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"eventsignup/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions *security.SessionManager
	limiter  *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessions *security.SessionManager, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		sessions: sessions,
		limiter:  limiter,
	}
}

// RequireAuth rejects requests without a valid session cookie
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := m.sessionFromRequest(r)
		if session == nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the session to the context when present but lets
// anonymous requests through. Handlers that serve both new visitors and
// returning ones use this.
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := m.sessionFromRequest(r); session != nil {
			r = r.WithContext(context.WithValue(r.Context(), SessionContextKey, session))
		}
		next(w, r)
	}
}

// RateLimit throttles by client address
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(clientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) sessionFromRequest(r *http.Request) *security.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	session, err := m.sessions.Validate(cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// SessionFromContext returns the session attached by auth middleware, or nil
func SessionFromContext(ctx context.Context) *security.Session {
	session, _ := ctx.Value(SessionContextKey).(*security.Session)
	return session
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}
