package api

import (
	"encoding/json"
	"net/http"
	"time"

	"benevita/internal/auth"
	"benevita/internal/entities"
	"benevita/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	Bookings  *service.BookingService
	Companion *service.CompanionService
}

func NewBookingHandler(bookings *service.BookingService, companion *service.CompanionService) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Companion: companion}
}

// Reserve books a slot for the authenticated subject.
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok || actor.Role != auth.RoleSubject {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req entities.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.Bookings.Reserve(r.Context(), actor.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List answers the actor's bookings, enriched for display.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var (
		views []entities.BookingView
		err   error
	)
	if actor.Role == auth.RoleProvider {
		views, err = h.Companion.BookingsForProvider(actor.ID)
	} else {
		views, err = h.Companion.BookingsForSubject(actor.ID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Bookings.Cancel(r.Context(), mux.Vars(r)["id"], actor.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment canceled"})
}

func (h *BookingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok || actor.Role != auth.RoleSubject {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req entities.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Bookings.Rate(mux.Vars(r)["id"], actor.ID, req.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Note recorded"})
}

// SlotHolder reveals who holds a reserved slot on a provider's calendar.
func (h *BookingHandler) SlotHolder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		http.Error(w, "Invalid at, expected RFC 3339 instant", http.StatusBadRequest)
		return
	}

	holder, err := h.Bookings.SlotHolder(mux.Vars(r)["id"], at, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holder)
}
