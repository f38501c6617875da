package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventsignup/internal/security"
)

func newTestMiddleware(t *testing.T) (*Middleware, *security.SessionManager) {
	t.Helper()
	sessions := security.NewSessionManager("test-key", time.Hour)
	return NewMiddleware(sessions, security.NewRateLimiter(100, time.Minute)), sessions
}

func sessionCookie(t *testing.T, sessions *security.SessionManager) *http.Cookie {
	t.Helper()
	token, _, err := sessions.Issue("person-1", "jane@example.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	m, _ := newTestMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("POST", "/api/GetOrCreateHouse", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", recorder.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	m, _ := newTestMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	r := httptest.NewRequest("POST", "/api/GetOrCreateHouse", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})

	recorder := httptest.NewRecorder()
	handler(recorder, r)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", recorder.Code)
	}
}

func TestRequireAuthAttachesSession(t *testing.T) {
	m, sessions := newTestMiddleware(t)

	var got *security.Session
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	})

	r := httptest.NewRequest("POST", "/api/GetOrCreateHouse", nil)
	r.AddCookie(sessionCookie(t, sessions))

	recorder := httptest.NewRecorder()
	handler(recorder, r)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if got == nil || got.PersonID != "person-1" {
		t.Errorf("session = %+v, want person-1", got)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	m, _ := newTestMiddleware(t)

	called := false
	handler := m.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if SessionFromContext(r.Context()) != nil {
			t.Error("expected no session")
		}
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("POST", "/api/CompleteRegistration", nil))

	if !called {
		t.Error("expected handler to run")
	}
}

func TestOptionalAuthAttachesValidSession(t *testing.T) {
	m, sessions := newTestMiddleware(t)

	handler := m.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil || session.EmailAddress != "jane@example.com" {
			t.Errorf("session = %+v", session)
		}
	})

	r := httptest.NewRequest("POST", "/api/CompleteRegistration", nil)
	r.AddCookie(sessionCookie(t, sessions))
	handler(httptest.NewRecorder(), r)
}

func TestRateLimitMiddleware(t *testing.T) {
	sessions := security.NewSessionManager("test-key", time.Hour)
	m := NewMiddleware(sessions, security.NewRateLimiter(2, time.Hour))

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler(recorder, httptest.NewRequest("POST", "/api/FindEmail", nil))
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("POST", "/api/FindEmail", nil))
	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", recorder.Code)
	}
}
