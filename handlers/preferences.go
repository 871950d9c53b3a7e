package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"streamscout/models"
	"streamscout/services/browse"
)

type preferencesService interface {
	Load() models.UserPreferences
	Save(prefs models.UserPreferences)
	ToggleFavorite(id string) []string
}

type regionSetter interface {
	SetRegion(ctx context.Context, region models.Region) browse.Snapshot
}

// PreferencesHandler persists the viewer's region and favorites and keeps the
// orchestrator's region in sync.
type PreferencesHandler struct {
	Preferences  preferencesService
	Orchestrator regionSetter
}

func NewPreferencesHandler(preferences preferencesService, orchestrator regionSetter) *PreferencesHandler {
	return &PreferencesHandler{Preferences: preferences, Orchestrator: orchestrator}
}

// Get handles GET /api/preferences.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Preferences.Load())
}

// Update handles PUT /api/preferences. An unknown region code falls back to
// the default region rather than erroring.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var incoming models.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid preferences payload"})
		return
	}

	incoming.SelectedRegion = models.RegionByCode(incoming.SelectedRegion.Code)
	if incoming.FavoriteIDs == nil {
		incoming.FavoriteIDs = []string{}
	}

	previous := h.Preferences.Load()
	h.Preferences.Save(incoming)
	if previous.SelectedRegion.Code != incoming.SelectedRegion.Code {
		h.Orchestrator.SetRegion(r.Context(), incoming.SelectedRegion)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(incoming)
}

// ToggleFavorite handles POST /api/preferences/favorites/{id}/toggle.
func (h *PreferencesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "id is required"})
		return
	}

	favorites := h.Preferences.ToggleFavorite(id)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"favoriteIds": favorites})
}

// Regions handles GET /api/regions.
func (h *PreferencesHandler) Regions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.PopularRegions)
}
