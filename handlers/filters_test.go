package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamscout/models"
)

type fakeFilterTaxonomy struct {
	genres    []models.Genre
	providers []models.Provider

	lastGenreKind    models.MediaType
	lastProviderKind models.MediaType
	lastRegion       string
}

func (f *fakeFilterTaxonomy) Genres(_ context.Context, kind models.MediaType) []models.Genre {
	f.lastGenreKind = kind
	return f.genres
}

func (f *fakeFilterTaxonomy) WatchProviders(_ context.Context, region string, kind models.MediaType) []models.Provider {
	f.lastRegion = region
	f.lastProviderKind = kind
	return f.providers
}

func TestFiltersHandler_Filters(t *testing.T) {
	fake := &fakeFilterTaxonomy{
		genres:    []models.Genre{{ID: 28, Name: "Action"}},
		providers: []models.Provider{{ID: 8, Name: "Netflix"}},
	}
	orch := &fakeOrchestrator{region: models.Region{Code: "FR", Name: "France"}}
	handler := NewFiltersHandler(fake, orch)

	req := httptest.NewRequest(http.MethodGet, "/api/filters?category=TV", nil)
	rec := httptest.NewRecorder()
	handler.Filters(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.lastGenreKind != models.MediaTypeTV || fake.lastProviderKind != models.MediaTypeTV {
		t.Fatalf("category should normalize to tv, got %q/%q", fake.lastGenreKind, fake.lastProviderKind)
	}
	if fake.lastRegion != "FR" {
		t.Fatalf("providers should be scoped to the selected region, got %q", fake.lastRegion)
	}

	var payload struct {
		Genres    []models.Genre    `json:"genres"`
		Providers []models.Provider `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Genres) != 1 || len(payload.Providers) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestFiltersHandler_RejectsSportCategory(t *testing.T) {
	handler := NewFiltersHandler(&fakeFilterTaxonomy{}, &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodGet, "/api/filters?category=sport", nil)
	rec := httptest.NewRecorder()
	handler.Filters(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
