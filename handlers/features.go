package handlers

import (
	"encoding/json"
	"net/http"

	"streamscout/config"
)

type featureStore interface {
	Features() config.FeatureFlags
	UpdateFeatures(flags config.FeatureFlags) error
}

// FeaturesHandler exposes the category feature flags. Flag changes take
// effect for new orchestrators only; the running one keeps the flags it was
// built with.
type FeaturesHandler struct {
	Store featureStore
}

func NewFeaturesHandler(store featureStore) *FeaturesHandler {
	return &FeaturesHandler{Store: store}
}

// Get handles GET /api/config/features.
func (h *FeaturesHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Store.Features())
}

// Update handles PUT /api/config/features.
func (h *FeaturesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var flags config.FeatureFlags
	if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid feature flags payload"})
		return
	}
	if err := h.Store.UpdateFeatures(flags); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to persist feature flags"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flags)
}
