package handlers

import (
	"errors"
	"net/http"

	"eventsignup/internal/security"
	"eventsignup/internal/service"
	"eventsignup/internal/validation"
)

// AuthHandler handles email lookup and login-code verification
type AuthHandler struct {
	authService *service.AuthService
	sessions    *security.SessionManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, sessions *security.SessionManager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

type findEmailRequest struct {
	EmailAddress string `json:"EmailAddress"`
}

// FindEmail looks an address up in the directory. Known addresses either
// verify against the caller's existing session or trigger a one-time code.
func (h *AuthHandler) FindEmail(w http.ResponseWriter, r *http.Request) {
	var req findEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.authService.FindEmail(r.Context(), req.EmailAddress, SessionFromContext(r.Context()))
	if err != nil {
		var verr validation.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		case errors.Is(err, service.ErrEmailNotFound):
			respondWithError(w, http.StatusNotFound, "Email address not found", "", nil)
		default:
			respondWithError(w, http.StatusBadGateway, ErrDirectoryUnavailable, "Email lookup failed", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

type verifyTokenRequest struct {
	TokenID string `json:"TokenID"`
	Token   string `json:"Token"`
}

type verifyTokenResponse struct {
	PersonID     string `json:"PersonID"`
	EmailAddress string `json:"EmailAddress"`
}

// VerifyLoginToken checks a one-time code and starts a session on success
func (h *AuthHandler) VerifyLoginToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	token, err := h.authService.VerifyToken(r.Context(), req.TokenID, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondWithError(w, http.StatusBadRequest, "Verification code invalid or expired", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Token verification failed", err)
		return
	}

	sessionToken, expiresAt, err := h.sessions.Issue(token.PersonID, token.EmailAddress)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to issue session", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, sessionToken, expiresAt))

	respondWithJSON(w, http.StatusOK, verifyTokenResponse{
		PersonID:     token.PersonID,
		EmailAddress: token.EmailAddress,
	})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}
