package api

import (
	"net/http"
	"time"

	"benevita/internal/service"

	"github.com/gorilla/mux"
)

type CalendarHandler struct {
	Calendar  *service.CalendarService
	Providers service.ProviderStore
}

func NewCalendarHandler(calendar *service.CalendarService, providers service.ProviderStore) *CalendarHandler {
	return &CalendarHandler{Calendar: calendar, Providers: providers}
}

// ListProviders answers the provider directory, filterable by service
// specialty and intervention mode.
func (h *CalendarHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.Providers.ListProviders(
		r.URL.Query().Get("service"),
		r.URL.Query().Get("intervention"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	type providerView struct {
		ID           string `json:"provider_id"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Service      string `json:"service"`
		Intervention string `json:"intervention"`
		PriceCents   int    `json:"price_cents"`
	}
	views := make([]providerView, len(providers))
	for i, p := range providers {
		views[i] = providerView{
			ID:           p.ID,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Service:      p.Service,
			Intervention: p.Intervention,
			PriceCents:   p.PriceCents,
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// WeekCalendar answers the resolved week grid for a provider. week_start
// accepts any date; it is floored to the ISO week boundary server-side.
func (h *CalendarHandler) WeekCalendar(w http.ResponseWriter, r *http.Request) {
	providerID := mux.Vars(r)["id"]

	weekStart := time.Now().UTC()
	if raw := r.URL.Query().Get("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid week_start, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		weekStart = parsed
	}

	resp, err := h.Calendar.WeekCalendar(r.Context(), providerID, weekStart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
