package repository

import (
	"database/sql"
	"fmt"

	"eventsignup/internal/database"
	"eventsignup/internal/models"
)

// TokenRepository handles database operations for login tokens
type TokenRepository struct {
	db *database.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateToken stores a new login token
func (r *TokenRepository) CreateToken(token *models.LoginToken) error {
	query := `
		INSERT INTO login_tokens (token_id, email_address, person_id, code_hash, expires_at, bad_attempt_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`
	_, err := r.db.Exec(query, token.TokenID, token.EmailAddress, token.PersonID, token.CodeHash, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create login token: %w", err)
	}
	return nil
}

// Consume runs one verification attempt as a single atomic unit. The attempt
// counter is incremented up front inside the transaction, which also write-
// locks the row so concurrent attempts against the same token serialize and
// cannot both slip under the exhaustion limit. On success the token row is
// deleted (single use) and returned; every other path leaves the incremented
// counter behind and reports no success.
//
// matches is called with the stored token only when it is neither expired
// nor exhausted.
func (r *TokenRepository) Consume(tokenID string, maxAttempts int, matches func(t *models.LoginToken) bool) (*models.LoginToken, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE login_tokens SET bad_attempt_count = bad_attempt_count + 1 WHERE token_id = ?",
		tokenID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record attempt: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, false, fmt.Errorf("failed to record attempt: %w", err)
	} else if affected == 0 {
		return nil, false, nil
	}

	var token models.LoginToken
	err = tx.QueryRow(
		`SELECT token_id, email_address, person_id, code_hash, expires_at, bad_attempt_count
		 FROM login_tokens WHERE token_id = ?`,
		tokenID,
	).Scan(&token.TokenID, &token.EmailAddress, &token.PersonID, &token.CodeHash, &token.ExpiresAt, &token.BadAttemptCount)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load login token: %w", err)
	}

	// The pre-increment means a token that had already seen maxAttempts
	// failures now reads maxAttempts+1; success requires the prior count to
	// have been below the limit.
	ok := !token.IsExpired() &&
		token.BadAttemptCount <= maxAttempts &&
		matches(&token)

	if ok {
		if _, err := tx.Exec("DELETE FROM login_tokens WHERE token_id = ?", tokenID); err != nil {
			return nil, false, fmt.Errorf("failed to consume login token: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !ok {
		return nil, false, nil
	}
	return &token, true, nil
}

// DeleteExpiredTokens removes tokens past their expiry
func (r *TokenRepository) DeleteExpiredTokens() error {
	_, err := r.db.Exec("DELETE FROM login_tokens WHERE expires_at < CURRENT_TIMESTAMP")
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return nil
}
