package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"streamscout/models"
)

type fakePreferencesService struct {
	prefs      models.UserPreferences
	saved      *models.UserPreferences
	lastToggle string
	toggleResp []string
}

func (f *fakePreferencesService) Load() models.UserPreferences { return f.prefs }

func (f *fakePreferencesService) Save(prefs models.UserPreferences) { f.saved = &prefs }

func (f *fakePreferencesService) ToggleFavorite(id string) []string {
	f.lastToggle = id
	return f.toggleResp
}

func TestPreferencesHandler_Get(t *testing.T) {
	fake := &fakePreferencesService{prefs: models.UserPreferences{
		SelectedRegion: models.RegionByCode("GB"),
		FavoriteIDs:    []string{"603"},
	}}
	handler := NewPreferencesHandler(fake, &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	var payload models.UserPreferences
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.SelectedRegion.Code != "GB" || len(payload.FavoriteIDs) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPreferencesHandler_UpdateNotifiesOrchestratorOnRegionChange(t *testing.T) {
	fake := &fakePreferencesService{prefs: models.DefaultPreferences()}
	orch := &fakeOrchestrator{}
	handler := NewPreferencesHandler(fake, orch)

	body := `{"selectedRegion":{"code":"DE"},"favoriteIds":["603"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.saved == nil {
		t.Fatal("preferences were not saved")
	}
	if fake.saved.SelectedRegion.Name != "Germany" {
		t.Fatalf("region should resolve to the full record, got %+v", fake.saved.SelectedRegion)
	}
	if orch.regionCalls != 1 || orch.lastRegion.Code != "DE" {
		t.Fatalf("orchestrator should see the region change, calls=%d region=%+v", orch.regionCalls, orch.lastRegion)
	}
}

func TestPreferencesHandler_UpdateSameRegionSkipsOrchestrator(t *testing.T) {
	fake := &fakePreferencesService{prefs: models.DefaultPreferences()}
	orch := &fakeOrchestrator{}
	handler := NewPreferencesHandler(fake, orch)

	body := `{"selectedRegion":{"code":"US"},"favoriteIds":[]}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if orch.regionCalls != 0 {
		t.Fatalf("unchanged region must not trigger a refetch, got %d calls", orch.regionCalls)
	}
}

func TestPreferencesHandler_UpdateUnknownRegionFallsBack(t *testing.T) {
	fake := &fakePreferencesService{prefs: models.DefaultPreferences()}
	handler := NewPreferencesHandler(fake, &fakeOrchestrator{})

	body := `{"selectedRegion":{"code":"XX"}}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.saved.SelectedRegion.Code != models.DefaultPreferences().SelectedRegion.Code {
		t.Fatalf("unknown region should fall back to default, got %+v", fake.saved.SelectedRegion)
	}
	if fake.saved.FavoriteIDs == nil {
		t.Fatal("favorites should normalize to an empty slice")
	}
}

func TestPreferencesHandler_UpdateRejectsMalformedBody(t *testing.T) {
	handler := NewPreferencesHandler(&fakePreferencesService{}, &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPreferencesHandler_ToggleFavorite(t *testing.T) {
	fake := &fakePreferencesService{toggleResp: []string{"603", "sport-1"}}
	handler := NewPreferencesHandler(fake, &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodPost, "/api/preferences/favorites/sport-1/toggle", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "sport-1"})
	rec := httptest.NewRecorder()
	handler.ToggleFavorite(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.lastToggle != "sport-1" {
		t.Fatalf("unexpected toggle id %q", fake.lastToggle)
	}

	var payload struct {
		FavoriteIDs []string `json:"favoriteIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.FavoriteIDs) != 2 {
		t.Fatalf("unexpected favorites payload: %+v", payload)
	}
}

func TestPreferencesHandler_Regions(t *testing.T) {
	handler := NewPreferencesHandler(&fakePreferencesService{}, &fakeOrchestrator{})

	req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	rec := httptest.NewRecorder()
	handler.Regions(rec, req)

	var payload []models.Region
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload) != len(models.PopularRegions) {
		t.Fatalf("expected %d regions, got %d", len(models.PopularRegions), len(payload))
	}
	if payload[0].Code != "US" {
		t.Fatalf("expected US first, got %q", payload[0].Code)
	}
}
