package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager("test-key", time.Hour)

	token, expiresAt, err := m.Issue("person-123", "jane@example.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expected expiry in the future")
	}

	session, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if session.PersonID != "person-123" {
		t.Errorf("PersonID = %q, want person-123", session.PersonID)
	}
	if session.EmailAddress != "jane@example.com" {
		t.Errorf("EmailAddress = %q, want jane@example.com", session.EmailAddress)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	m := NewSessionManager("test-key", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); err != ErrInvalidSession {
				t.Errorf("Validate() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewSessionManager("key-one", time.Hour)
	verifier := NewSessionManager("key-two", time.Hour)

	token, _, err := issuer.Issue("person-123", "jane@example.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := verifier.Validate(token); err != ErrInvalidSession {
		t.Errorf("Validate() error = %v, want ErrInvalidSession", err)
	}
}

func TestValidateRejectsExpiredSession(t *testing.T) {
	m := NewSessionManager("test-key", -time.Minute)

	token, _, err := m.Issue("person-123", "jane@example.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := m.Validate(token); err != ErrInvalidSession {
		t.Errorf("Validate() error = %v, want ErrInvalidSession", err)
	}
}

func TestIsSecureRequest(t *testing.T) {
	t.Run("plain http", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/", nil)
		if IsSecureRequest(r) {
			t.Error("expected insecure")
		}
	})

	t.Run("forwarded proto", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		if !IsSecureRequest(r) {
			t.Error("expected secure")
		}
	})
}

func TestCreateSessionCookieFlags(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	cookie := CreateSessionCookie(r, "session_id", "value", time.Now().Add(time.Hour))

	if !cookie.HttpOnly {
		t.Error("expected HttpOnly")
	}
	if !cookie.Secure {
		t.Error("expected Secure behind https")
	}
	if cookie.Path != "/" {
		t.Errorf("Path = %q, want /", cookie.Path)
	}
}

func TestCreateDeleteCookieExpires(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/", nil)

	cookie := CreateDeleteCookie(r, "session_id")

	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Errorf("Value = %q, want empty", cookie.Value)
	}
}
