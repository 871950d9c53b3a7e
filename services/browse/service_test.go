package browse

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"streamscout/config"
	"streamscout/models"
)

type discoverCall struct {
	Kind    models.MediaType
	Filters models.FilterSelection
	Region  string
	Preset  string
}

type fakeCatalog struct {
	mu            sync.Mutex
	trendingCalls []models.MediaType
	discoverCalls []discoverCall
	searchCalls   []string

	trendingResults map[models.MediaType][]models.MediaItem
	searchResults   []models.MediaItem
	discoverResults []models.MediaItem
	genres          []models.Genre
	providers       []models.Provider

	// when non-nil, Discover blocks until the channel closes
	discoverGate chan struct{}
}

func (f *fakeCatalog) Trending(_ context.Context, kind models.MediaType) []models.MediaItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendingCalls = append(f.trendingCalls, kind)
	return f.trendingResults[kind]
}

func (f *fakeCatalog) SearchAll(_ context.Context, query string) []models.MediaItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	return f.searchResults
}

func (f *fakeCatalog) Genres(_ context.Context, _ models.MediaType) []models.Genre {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genres
}

func (f *fakeCatalog) WatchProviders(_ context.Context, _ string, _ models.MediaType) []models.Provider {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.providers
}

func (f *fakeCatalog) Discover(_ context.Context, kind models.MediaType, filters models.FilterSelection, region, preset string) []models.MediaItem {
	f.mu.Lock()
	gate := f.discoverGate
	f.discoverCalls = append(f.discoverCalls, discoverCall{Kind: kind, Filters: filters, Region: region, Preset: preset})
	results := f.discoverResults
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return results
}

func (f *fakeCatalog) lastDiscover(t *testing.T) discoverCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.discoverCalls, "expected at least one discover call")
	return f.discoverCalls[len(f.discoverCalls)-1]
}

type fakeLive struct {
	mu          sync.Mutex
	eventCalls  []string
	searchCalls []string
	events      []models.MediaItem
	matches     []models.MediaItem
}

func (f *fakeLive) LiveEvents(_ context.Context, countryName string) []models.MediaItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCalls = append(f.eventCalls, countryName)
	return f.events
}

func (f *fakeLive) SearchEvents(_ context.Context, query string) []models.MediaItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	return f.matches
}

func catalogItems(kind models.MediaType, n int) []models.MediaItem {
	items := make([]models.MediaItem, n)
	for i := range items {
		items[i] = models.MediaItem{
			ID:        fmt.Sprintf("%s-%d", kind, i),
			Title:     fmt.Sprintf("%s %d", kind, i),
			MediaType: kind,
			Catalog:   &models.CatalogDetails{},
		}
	}
	return items
}

func sportItems(n int) []models.MediaItem {
	items := make([]models.MediaItem, n)
	for i := range items {
		items[i] = models.MediaItem{
			ID:        fmt.Sprintf("sport-%d", i),
			Title:     fmt.Sprintf("Event %d", i),
			MediaType: models.MediaTypeSport,
			Sport:     &models.SportDetails{},
		}
	}
	return items
}

func allFeatures() config.FeatureFlags {
	return config.FeatureFlags{Movies: true, TVShows: true, Sports: true}
}

func TestHomeCapsSectionsAtEight(t *testing.T) {
	catalog := &fakeCatalog{trendingResults: map[models.MediaType][]models.MediaItem{
		models.MediaTypeMovie: catalogItems(models.MediaTypeMovie, 12),
		models.MediaTypeTV:    catalogItems(models.MediaTypeTV, 12),
	}}
	live := &fakeLive{events: sportItems(12)}
	svc := NewService(catalog, live, allFeatures(), models.RegionByCode("US"))

	snap := svc.Home(context.Background())

	require.Equal(t, models.BrowseModeHome, snap.State.Mode)
	require.Len(t, snap.Dashboard.TrendingMovies, 8)
	require.Len(t, snap.Dashboard.TrendingTV, 8)
	require.Len(t, snap.Dashboard.LiveSports, 8)
	// Provider ranking order preserved, no client-side re-sorting.
	require.Equal(t, "movie-0", snap.Dashboard.TrendingMovies[0].ID)
	require.Equal(t, "movie-7", snap.Dashboard.TrendingMovies[7].ID)
	require.Equal(t, []string{"United States"}, live.eventCalls)
}

func TestHomeSkipsDisabledCategories(t *testing.T) {
	catalog := &fakeCatalog{trendingResults: map[models.MediaType][]models.MediaItem{
		models.MediaTypeMovie: catalogItems(models.MediaTypeMovie, 4),
	}}
	live := &fakeLive{events: sportItems(4)}
	features := config.FeatureFlags{Movies: true, TVShows: false, Sports: false}
	svc := NewService(catalog, live, features, models.RegionByCode("US"))

	snap := svc.Home(context.Background())

	require.Len(t, snap.Dashboard.TrendingMovies, 4)
	require.Empty(t, snap.Dashboard.TrendingTV)
	require.Empty(t, snap.Dashboard.LiveSports)
	require.Empty(t, live.eventCalls, "sports fetch must be skipped when disabled")
	require.Equal(t, []models.MediaType{models.MediaTypeMovie}, catalog.trendingCalls)
}

func TestNavigateResetsFiltersToEndpointDefaults(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))

	snap := svc.Navigate(context.Background(), models.MediaTypeMovie, "top_rated", "Top Rated")

	require.Equal(t, models.BrowseModeBrowse, snap.State.Mode)
	require.Equal(t, models.MediaTypeMovie, snap.State.Category)
	require.Equal(t, "vote_average.desc", snap.Filters.Sort)
	require.Empty(t, snap.Filters.GenreIDs)
	require.Empty(t, snap.Filters.ProviderIDs)

	call := catalog.lastDiscover(t)
	require.Equal(t, "top_rated", call.Preset)
	require.Equal(t, "US", call.Region)
}

func TestNavigateToDisabledCategoryIsNoOp(t *testing.T) {
	catalog := &fakeCatalog{}
	live := &fakeLive{}
	features := config.FeatureFlags{Movies: true, TVShows: true, Sports: false}
	svc := NewService(catalog, live, features, models.RegionByCode("US"))

	snap := svc.Navigate(context.Background(), models.MediaTypeSport, "", "Sports")

	require.Equal(t, models.BrowseModeHome, snap.State.Mode)
	require.Empty(t, live.eventCalls)
}

func TestSearchConcatenatesCatalogBeforeSport(t *testing.T) {
	shared := "Arsenal"
	catalog := &fakeCatalog{searchResults: []models.MediaItem{
		{ID: "m1", Title: shared, MediaType: models.MediaTypeMovie, Catalog: &models.CatalogDetails{}},
	}}
	live := &fakeLive{matches: []models.MediaItem{
		{ID: "s1", Title: shared, MediaType: models.MediaTypeSport, Sport: &models.SportDetails{}},
	}}
	svc := NewService(catalog, live, allFeatures(), models.RegionByCode("GB"))

	snap := svc.Search(context.Background(), "arsenal")

	require.Equal(t, models.BrowseModeSearch, snap.State.Mode)
	require.Equal(t, "arsenal", snap.State.Query)
	// Catalog first, sport second, shared titles kept (no deduplication).
	require.Len(t, snap.Results, 2)
	require.Equal(t, "m1", snap.Results[0].ID)
	require.Equal(t, "s1", snap.Results[1].ID)
}

func TestSearchSkipsDisabledSources(t *testing.T) {
	catalog := &fakeCatalog{searchResults: catalogItems(models.MediaTypeMovie, 1)}
	live := &fakeLive{matches: sportItems(1)}
	features := config.FeatureFlags{Movies: true, TVShows: true, Sports: false}
	svc := NewService(catalog, live, features, models.RegionByCode("US"))

	snap := svc.Search(context.Background(), "anything")

	require.Len(t, snap.Results, 1)
	require.Empty(t, live.searchCalls)
}

func TestToggleGenreReRunsDiscoveryAndIsItsOwnInverse(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))
	svc.Navigate(context.Background(), models.MediaTypeMovie, "popular", "Popular")

	snap := svc.ToggleGenre(context.Background(), 28)
	require.Equal(t, []int64{28}, snap.Filters.GenreIDs)
	require.Equal(t, []int64{28}, catalog.lastDiscover(t).Filters.GenreIDs)

	snap = svc.ToggleGenre(context.Background(), 28)
	require.Empty(t, snap.Filters.GenreIDs)
	require.Empty(t, catalog.lastDiscover(t).Filters.GenreIDs)
}

func TestToggleFilterIgnoredOutsideCatalogBrowse(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))

	svc.Search(context.Background(), "arsenal")
	before := len(catalog.discoverCalls)
	snap := svc.ToggleGenre(context.Background(), 28)

	require.Empty(t, snap.Filters.GenreIDs)
	require.Len(t, catalog.discoverCalls, before, "no discovery should run for filter toggles in search")

	svc.Navigate(context.Background(), models.MediaTypeSport, "", "Sports")
	before = len(catalog.discoverCalls)
	snap = svc.ToggleProvider(context.Background(), 8)
	require.Empty(t, snap.Filters.ProviderIDs)
	require.Len(t, catalog.discoverCalls, before)
}

func TestSetRegionInBrowseKeepsFilters(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))
	svc.Navigate(context.Background(), models.MediaTypeMovie, "popular", "Popular")
	svc.ToggleGenre(context.Background(), 35)

	snap := svc.SetRegion(context.Background(), models.RegionByCode("DE"))

	require.Equal(t, "DE", snap.Region.Code)
	require.Equal(t, []int64{35}, snap.Filters.GenreIDs, "region change must not reset filters")
	call := catalog.lastDiscover(t)
	require.Equal(t, "DE", call.Region)
	require.Equal(t, []int64{35}, call.Filters.GenreIDs)
}

func TestSetRegionInSearchLeavesResultsStale(t *testing.T) {
	catalog := &fakeCatalog{searchResults: catalogItems(models.MediaTypeMovie, 2)}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))
	svc.Search(context.Background(), "arsenal")
	searches := len(catalog.searchCalls)

	snap := svc.SetRegion(context.Background(), models.RegionByCode("FR"))

	require.Equal(t, "FR", snap.Region.Code)
	require.Equal(t, models.BrowseModeSearch, snap.State.Mode)
	require.Len(t, snap.Results, 2)
	require.Len(t, catalog.searchCalls, searches, "search must not be re-run on region change")
}

func TestStaleFetchResultsAreDiscarded(t *testing.T) {
	gate := make(chan struct{})
	catalog := &fakeCatalog{
		discoverGate:    gate,
		discoverResults: catalogItems(models.MediaTypeMovie, 3),
		searchResults:   catalogItems(models.MediaTypeMovie, 1),
	}
	svc := NewService(catalog, &fakeLive{}, allFeatures(), models.RegionByCode("US"))

	done := make(chan Snapshot)
	go func() {
		done <- svc.Navigate(context.Background(), models.MediaTypeMovie, "popular", "Popular")
	}()

	// Wait until the slow discovery is in flight.
	for {
		catalog.mu.Lock()
		started := len(catalog.discoverCalls) > 0
		catalog.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// A newer intent overtakes the pending browse fetch.
	snap := svc.Search(context.Background(), "arsenal")
	require.Len(t, snap.Results, 1)

	close(gate)
	<-done

	// The stale browse results must not overwrite the newer search results.
	final := svc.Snapshot()
	require.Equal(t, models.BrowseModeSearch, final.State.Mode)
	require.Len(t, final.Results, 1)
	require.Equal(t, "movie-0", final.Results[0].ID)
}
