package models

import "time"

// LoginToken is a short-lived one-time code e-mailed to verify account
// ownership. CodeHash stores a bcrypt hash; the plain code only exists in
// the e-mail that carried it.
type LoginToken struct {
	TokenID         string
	EmailAddress    string
	PersonID        string
	CodeHash        string
	ExpiresAt       time.Time
	BadAttemptCount int
	CreatedAt       time.Time
}

// IsExpired checks if the token has expired
func (t *LoginToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsExhausted reports whether the token has seen too many bad attempts
func (t *LoginToken) IsExhausted(maxAttempts int) bool {
	return t.BadAttemptCount >= maxAttempts
}
