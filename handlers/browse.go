package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"streamscout/models"
	"streamscout/services/browse"
)

// fallbackPoster backs sport cards that ended the hydration chain without an
// image.
const fallbackPoster = "https://picsum.photos/300/450?grayscale"

// browseOrchestrator is the orchestrator surface the browse handler needs.
type browseOrchestrator interface {
	Home(ctx context.Context) browse.Snapshot
	Navigate(ctx context.Context, category models.MediaType, endpoint, title string) browse.Snapshot
	Search(ctx context.Context, query string) browse.Snapshot
	ToggleGenre(ctx context.Context, id int64) browse.Snapshot
	ToggleProvider(ctx context.Context, id int64) browse.Snapshot
	SetSort(ctx context.Context, sort string) browse.Snapshot
	Snapshot() browse.Snapshot
}

// BrowseHandler serves the dashboard, category browse, filter and search
// views off the orchestrator's state.
type BrowseHandler struct {
	Orchestrator browseOrchestrator
}

func NewBrowseHandler(orchestrator browseOrchestrator) *BrowseHandler {
	return &BrowseHandler{Orchestrator: orchestrator}
}

// Dashboard handles GET /api/dashboard.
func (h *BrowseHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.Orchestrator.Home(r.Context())
	writeSnapshot(w, snap)
}

// Browse handles GET /api/browse?category=&endpoint=&title=.
func (h *BrowseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	category := models.MediaType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	switch category {
	case models.MediaTypeMovie, models.MediaTypeTV, models.MediaTypeSport:
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown category"})
		return
	}

	endpoint := strings.TrimSpace(r.URL.Query().Get("endpoint"))
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	snap := h.Orchestrator.Navigate(r.Context(), category, endpoint, title)
	writeSnapshot(w, snap)
}

// Search handles GET /api/search?q=.
func (h *BrowseHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "query is required"})
		return
	}
	snap := h.Orchestrator.Search(r.Context(), query)
	writeSnapshot(w, snap)
}

// ToggleFilter handles POST /api/browse/filters?kind=genre|provider&id=.
func (h *BrowseHandler) ToggleFilter(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid filter id"})
		return
	}

	var snap browse.Snapshot
	switch kind {
	case "genre":
		snap = h.Orchestrator.ToggleGenre(r.Context(), id)
	case "provider":
		snap = h.Orchestrator.ToggleProvider(r.Context(), id)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown filter kind"})
		return
	}
	writeSnapshot(w, snap)
}

// SetSort handles POST /api/browse/sort?sort=.
func (h *BrowseHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	sort := strings.TrimSpace(r.URL.Query().Get("sort"))
	if sort == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "sort is required"})
		return
	}
	snap := h.Orchestrator.SetSort(r.Context(), sort)
	writeSnapshot(w, snap)
}

// State handles GET /api/state without triggering any fetches.
func (h *BrowseHandler) State(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, h.Orchestrator.Snapshot())
}

func writeSnapshot(w http.ResponseWriter, snap browse.Snapshot) {
	snap.Results = withFallbackPosters(snap.Results)
	snap.Dashboard.LiveSports = withFallbackPosters(snap.Dashboard.LiveSports)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// withFallbackPosters substitutes the generated placeholder for sport items
// lacking a hydrated image. Catalog items are left as-is.
func withFallbackPosters(items []models.MediaItem) []models.MediaItem {
	out := make([]models.MediaItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].MediaType == models.MediaTypeSport && out[i].PosterURL == "" {
			out[i].PosterURL = fallbackPoster
		}
	}
	return out
}
