package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsignup/internal/directory"
	"eventsignup/internal/metrics"
	"eventsignup/internal/models"
	"eventsignup/internal/security"
	"eventsignup/internal/validation"
)

var (
	// ErrEmailNotFound indicates the address has no person record in the directory
	ErrEmailNotFound = errors.New("email address not found")
	// ErrTokenInvalid indicates the login code was wrong, expired, or used up
	ErrTokenInvalid = errors.New("verification code invalid or expired")
)

// personFinder is the one directory lookup the login flow needs
type personFinder interface {
	FindPersonByEmail(ctx context.Context, emailAddress string) (*directory.Record[directory.PersonAttributes], error)
}

// tokenStore persists one-time login tokens
type tokenStore interface {
	CreateToken(token *models.LoginToken) error
	Consume(tokenID string, maxAttempts int, matches func(t *models.LoginToken) bool) (*models.LoginToken, bool, error)
	DeleteExpiredTokens() error
}

// FindEmailResult is the outcome of looking up an email address. Either the
// caller's session already covers the address (Verified) or a one-time code
// was mailed and TokenID identifies it.
type FindEmailResult struct {
	Verified bool   `json:"Verified"`
	PersonID string `json:"PersonID,omitempty"`
	TokenID  string `json:"TokenID,omitempty"`
}

// AuthService handles email lookup and one-time login codes
type AuthService struct {
	directory   personFinder
	tokens      tokenStore
	email       *EmailService
	metrics     *metrics.Metrics
	tokenExpiry time.Duration
	maxAttempts int
}

// NewAuthService creates a new auth service
func NewAuthService(dir personFinder, tokens tokenStore, email *EmailService, m *metrics.Metrics, tokenExpiry time.Duration, maxAttempts int) *AuthService {
	return &AuthService{
		directory:   dir,
		tokens:      tokens,
		email:       email,
		metrics:     m,
		tokenExpiry: tokenExpiry,
		maxAttempts: maxAttempts,
	}
}

// FindEmail looks up an address in the directory. A session that already
// covers the address short-circuits verification; otherwise a one-time code
// is generated, stored hashed, and e-mailed to the address.
func (s *AuthService) FindEmail(ctx context.Context, emailAddress string, session *security.Session) (*FindEmailResult, error) {
	emailAddress = strings.TrimSpace(emailAddress)
	if err := validation.ValidateEmail(emailAddress); err != nil {
		return nil, err
	}

	person, err := s.directory.FindPersonByEmail(ctx, emailAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if person == nil {
		return nil, ErrEmailNotFound
	}

	if session != nil && strings.EqualFold(session.EmailAddress, emailAddress) {
		return &FindEmailResult{Verified: true, PersonID: person.ID}, nil
	}

	code, err := security.GenerateLoginCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate login code: %w", err)
	}
	codeHash, err := security.HashLoginCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash login code: %w", err)
	}

	token := &models.LoginToken{
		TokenID:      uuid.NewString(),
		EmailAddress: emailAddress,
		PersonID:     person.ID,
		CodeHash:     codeHash,
		ExpiresAt:    time.Now().Add(s.tokenExpiry),
	}
	if err := s.tokens.CreateToken(token); err != nil {
		return nil, err
	}

	if s.email.IsEnabled() {
		if err := s.email.SendLoginCode(ctx, emailAddress, code); err != nil {
			return nil, fmt.Errorf("failed to send login code: %w", err)
		}
	} else {
		log.Printf("Email disabled; login code for %s: %s", emailAddress, code)
	}

	s.metrics.TokensIssued.Inc()
	return &FindEmailResult{TokenID: token.TokenID}, nil
}

// VerifyToken checks a login code against a stored token. The token is
// consumed on success and every failed attempt counts toward the limit.
func (s *AuthService) VerifyToken(ctx context.Context, tokenID, code string) (*models.LoginToken, error) {
	tokenID = strings.TrimSpace(tokenID)
	code = strings.TrimSpace(code)
	if tokenID == "" || code == "" {
		s.metrics.TokenVerifications.WithLabelValues("failure").Inc()
		return nil, ErrTokenInvalid
	}

	token, ok, err := s.tokens.Consume(tokenID, s.maxAttempts, func(t *models.LoginToken) bool {
		return security.CheckLoginCode(code, t.CodeHash)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.TokenVerifications.WithLabelValues("failure").Inc()
		return nil, ErrTokenInvalid
	}

	s.metrics.TokenVerifications.WithLabelValues("success").Inc()
	return token, nil
}

// CleanupExpiredTokens removes expired tokens; run periodically
func (s *AuthService) CleanupExpiredTokens() {
	if err := s.tokens.DeleteExpiredTokens(); err != nil {
		log.Printf("Failed to clean up expired tokens: %v", err)
	}
}
