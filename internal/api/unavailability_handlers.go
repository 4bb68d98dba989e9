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

type UnavailabilityHandler struct {
	Service *service.UnavailabilityService
}

func NewUnavailabilityHandler(svc *service.UnavailabilityService) *UnavailabilityHandler {
	return &UnavailabilityHandler{Service: svc}
}

func (h *UnavailabilityHandler) Declare(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok || actor.Role != auth.RoleProvider {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req entities.UnavailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Declare(r.Context(), actor.ID, req.BeginAt, req.EndAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UnavailabilityHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok || actor.Role != auth.RoleProvider {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.Revoke(r.Context(), actor.ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unavailability deleted"})
}

// List answers the provider's own intervals overlapping [from, to). Missing
// bounds default to the coming month.
func (h *UnavailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok || actor.Role != auth.RoleProvider {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 1, 0)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid from, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid to, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to = parsed
	}

	intervals, err := h.Service.List(actor.ID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intervals)
}
