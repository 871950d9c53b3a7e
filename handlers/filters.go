package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"streamscout/models"
)

type filterTaxonomyService interface {
	Genres(ctx context.Context, kind models.MediaType) []models.Genre
	WatchProviders(ctx context.Context, region string, kind models.MediaType) []models.Provider
}

// FiltersHandler serves the genre and provider choices for a catalog
// category, scoped to the viewer's selected region.
type FiltersHandler struct {
	Catalog filterTaxonomyService
	Regions regionProvider
}

func NewFiltersHandler(catalog filterTaxonomyService, regions regionProvider) *FiltersHandler {
	return &FiltersHandler{Catalog: catalog, Regions: regions}
}

// Filters handles GET /api/filters?category=movie|tv.
func (h *FiltersHandler) Filters(w http.ResponseWriter, r *http.Request) {
	category := models.MediaType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	if !category.IsCatalog() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "filters only apply to movie and tv"})
		return
	}

	region := h.Regions.Region()
	genres := h.Catalog.Genres(r.Context(), category)
	providers := h.Catalog.WatchProviders(r.Context(), region.Code, category)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"genres":    genres,
		"providers": providers,
	})
}
