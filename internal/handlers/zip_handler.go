package handlers

import (
	"errors"
	"net/http"

	"eventsignup/internal/service"
	"eventsignup/internal/validation"
)

// ZipHandler resolves zip codes for form autofill
type ZipHandler struct {
	zips *service.ZipService
}

// NewZipHandler creates a new zip handler
func NewZipHandler(zips *service.ZipService) *ZipHandler {
	return &ZipHandler{zips: zips}
}

// GetZip returns the city and state for a zip code
func (h *ZipHandler) GetZip(w http.ResponseWriter, r *http.Request) {
	info, err := h.zips.Lookup(r.Context(), r.PathValue("zip"))
	if err != nil {
		var verr validation.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		case errors.Is(err, service.ErrZipNotFound):
			respondWithError(w, http.StatusNotFound, "Zip code not found", "", nil)
		default:
			respondWithError(w, http.StatusBadGateway, ErrDirectoryUnavailable, "Zip lookup failed", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}
