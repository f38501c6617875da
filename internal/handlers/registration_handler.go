package handlers

import (
	"errors"
	"net/http"

	"eventsignup/internal/directory"
	"eventsignup/internal/service"
	"eventsignup/internal/validation"
)

// RegistrationHandler serves household disclosure and registration submission
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// GetOrCreateHouse returns the authenticated person's household roster with
// a signed identifier set. Requires auth middleware.
func (h *RegistrationHandler) GetOrCreateHouse(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	disclosure, err := h.registrations.GetOrCreateHousehold(r.Context(), session.PersonID)
	if err != nil {
		var apiErr *directory.APIError
		if errors.As(err, &apiErr) {
			respondWithError(w, http.StatusBadGateway, ErrDirectoryUnavailable, "Household lookup failed", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Household lookup failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, disclosure)
}

// CompleteRegistration applies one submitted registration
func (h *RegistrationHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var input service.RegistrationInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	err := h.registrations.CompleteRegistration(r.Context(), SessionFromContext(r.Context()), &input)
	if err != nil {
		var verr validation.ValidationError
		var apiErr *directory.APIError
		switch {
		case errors.Is(err, service.ErrEventNotFound),
			errors.Is(err, service.ErrNoPeople),
			errors.Is(err, service.ErrPrimaryContactRequired):
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		case errors.As(err, &verr):
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		case errors.Is(err, service.ErrNotAuthorized),
			errors.Is(err, service.ErrIdentifierScope):
			respondWithError(w, http.StatusForbidden, err.Error(), "Registration rejected", err)
		case errors.As(err, &apiErr):
			respondWithError(w, http.StatusBadGateway, ErrDirectoryUnavailable, "Registration failed", err)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Registration failed", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
