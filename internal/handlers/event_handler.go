package handlers

import (
	"net/http"

	"eventsignup/internal/repository"
)

// EventHandler serves event listings and details
type EventHandler struct {
	events *repository.EventRepository
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *repository.EventRepository) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents returns all upcoming events with their fee tiers
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.GetUpcomingEvents()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list events", err)
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// GetEvent returns one event by id
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEventByID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load event", err)
		return
	}
	if event == nil {
		respondWithError(w, http.StatusNotFound, "Event not found", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, event)
}
