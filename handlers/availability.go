package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"streamscout/models"
)

type catalogAvailabilityService interface {
	Availability(ctx context.Context, id string, kind models.MediaType, region string) models.AvailabilityInfo
}

type sportAvailabilityService interface {
	Availability(ctx context.Context, title, country string) models.AvailabilityInfo
}

type regionProvider interface {
	Region() models.Region
}

// AvailabilityHandler answers "where can I watch this" for a single item in
// the viewer's selected region.
type AvailabilityHandler struct {
	Catalog catalogAvailabilityService
	Sports  sportAvailabilityService
	Regions regionProvider
}

func NewAvailabilityHandler(catalog catalogAvailabilityService, sports sportAvailabilityService, regions regionProvider) *AvailabilityHandler {
	return &AvailabilityHandler{Catalog: catalog, Sports: sports, Regions: regions}
}

// Availability handles GET /api/availability?type=&id=&title=. Catalog lookups
// need an id, sport lookups a title.
func (h *AvailabilityHandler) Availability(w http.ResponseWriter, r *http.Request) {
	kind := models.MediaType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	region := h.Regions.Region()

	var info models.AvailabilityInfo
	switch kind {
	case models.MediaTypeMovie, models.MediaTypeTV:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "id is required"})
			return
		}
		info = h.Catalog.Availability(r.Context(), id, kind, region.Code)
	case models.MediaTypeSport:
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		if title == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "title is required"})
			return
		}
		info = h.Sports.Availability(r.Context(), title, region.Name)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown media type"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}
