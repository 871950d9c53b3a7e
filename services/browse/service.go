package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"

	"streamscout/config"
	"streamscout/models"
)

// dashboardSectionSize caps each dashboard section.
const dashboardSectionSize = 8

// CatalogProvider is the catalog-client surface the orchestrator consumes.
type CatalogProvider interface {
	Trending(ctx context.Context, kind models.MediaType) []models.MediaItem
	SearchAll(ctx context.Context, query string) []models.MediaItem
	Genres(ctx context.Context, kind models.MediaType) []models.Genre
	WatchProviders(ctx context.Context, region string, kind models.MediaType) []models.Provider
	Discover(ctx context.Context, kind models.MediaType, filters models.FilterSelection, region, preset string) []models.MediaItem
}

// LiveEventsProvider is the live-events surface the orchestrator consumes.
type LiveEventsProvider interface {
	LiveEvents(ctx context.Context, countryName string) []models.MediaItem
	SearchEvents(ctx context.Context, query string) []models.MediaItem
}

// Dashboard holds the three home sections, each at most eight items in the
// provider's own ranking order.
type Dashboard struct {
	TrendingMovies []models.MediaItem `json:"trendingMovies"`
	TrendingTV     []models.MediaItem `json:"trendingTv"`
	LiveSports     []models.MediaItem `json:"liveSports"`
}

// Snapshot is a consistent copy of the orchestrator's state for rendering.
type Snapshot struct {
	State     models.BrowseState     `json:"state"`
	Region    models.Region          `json:"region"`
	Filters   models.FilterSelection `json:"filters"`
	Dashboard Dashboard              `json:"dashboard"`
	Results   []models.MediaItem     `json:"results"`
	Genres    []models.Genre         `json:"genres"`
	Providers []models.Provider      `json:"providers"`
}

// Service coordinates the browse state machine: one of home, browse or
// search is active at a time, and every user intent triggers the fetches
// that state needs. Fetches in one intent run concurrently and are joined;
// each is individually fault-swallowed by the client layer, so the join
// never fails. A generation counter stamped on each intent discards results
// of fetches that were overtaken by a newer intent.
type Service struct {
	catalog  CatalogProvider
	live     LiveEventsProvider
	features config.FeatureFlags

	mu         sync.Mutex
	generation uint64
	region     models.Region
	state      models.BrowseState
	filters    models.FilterSelection
	dashboard  Dashboard
	results    []models.MediaItem
	genres     []models.Genre
	providers  []models.Provider
}

// NewService creates the orchestrator in home state with the given region.
// Feature flags are fixed for the service's lifetime.
func NewService(catalog CatalogProvider, live LiveEventsProvider, features config.FeatureFlags, region models.Region) *Service {
	return &Service{
		catalog:  catalog,
		live:     live,
		features: features,
		region:   region,
		state:    models.BrowseState{Mode: models.BrowseModeHome},
		filters:  models.DefaultFilters(""),
		results:  []models.MediaItem{},
	}
}

// Snapshot returns a copy of the current state without triggering fetches.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		State:     s.state,
		Region:    s.region,
		Filters:   s.filters,
		Dashboard: s.dashboard,
		Results:   s.results,
		Genres:    s.genres,
		Providers: s.providers,
	}
}

// Region returns the currently selected region.
func (s *Service) Region() models.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// Home transitions to the home state and refreshes the dashboard's three
// sections in parallel, each gated by its feature toggle.
func (s *Service) Home(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = models.BrowseState{Mode: models.BrowseModeHome}
	s.results = []models.MediaItem{}
	region := s.region
	s.mu.Unlock()

	dashboard := s.fetchDashboard(ctx, region)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.dashboard = dashboard
	}
	return s.snapshotLocked()
}

func (s *Service) fetchDashboard(ctx context.Context, region models.Region) Dashboard {
	var dashboard Dashboard
	var wg conc.WaitGroup
	if s.features.Movies {
		wg.Go(func() {
			dashboard.TrendingMovies = capItems(s.catalog.Trending(ctx, models.MediaTypeMovie))
		})
	}
	if s.features.TVShows {
		wg.Go(func() {
			dashboard.TrendingTV = capItems(s.catalog.Trending(ctx, models.MediaTypeTV))
		})
	}
	if s.features.Sports {
		wg.Go(func() {
			dashboard.LiveSports = capItems(s.live.LiveEvents(ctx, region.Name))
		})
	}
	wg.Wait()

	if dashboard.TrendingMovies == nil {
		dashboard.TrendingMovies = []models.MediaItem{}
	}
	if dashboard.TrendingTV == nil {
		dashboard.TrendingTV = []models.MediaItem{}
	}
	if dashboard.LiveSports == nil {
		dashboard.LiveSports = []models.MediaItem{}
	}
	return dashboard
}

func capItems(items []models.MediaItem) []models.MediaItem {
	if len(items) > dashboardSectionSize {
		return items[:dashboardSectionSize]
	}
	return items
}

func (s *Service) categoryEnabled(category models.MediaType) bool {
	switch category {
	case models.MediaTypeMovie:
		return s.features.Movies
	case models.MediaTypeTV:
		return s.features.TVShows
	case models.MediaTypeSport:
		return s.features.Sports
	default:
		return false
	}
}

// Navigate transitions to a category browse. Filters reset to the endpoint's
// default sort with empty sets. Movie/TV navigation fetches the genre and
// provider taxonomies and the initial results concurrently; sport navigation
// fetches live events. Navigating to a disabled category is a no-op.
func (s *Service) Navigate(ctx context.Context, category models.MediaType, endpoint, title string) Snapshot {
	if !s.categoryEnabled(category) {
		return s.Snapshot()
	}
	if title == "" {
		title = strings.ToUpper(string(category))
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = models.BrowseState{
		Mode:     models.BrowseModeBrowse,
		Category: category,
		Endpoint: endpoint,
		Title:    title,
	}
	s.filters = models.DefaultFilters(endpoint)
	region := s.region
	s.mu.Unlock()

	if category == models.MediaTypeSport {
		results := s.live.LiveEvents(ctx, region.Name)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen {
			s.results = results
			s.genres = []models.Genre{}
			s.providers = []models.Provider{}
		}
		return s.snapshotLocked()
	}
	return s.refreshCatalogBrowse(ctx)
}

// Search transitions to the search state and runs catalog and live-event
// search in parallel, concatenating catalog results before sport results
// with no deduplication or re-ranking.
func (s *Service) Search(ctx context.Context, query string) Snapshot {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Snapshot()
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = models.BrowseState{
		Mode:  models.BrowseModeSearch,
		Query: query,
		Title: "Results for \"" + query + "\"",
	}
	s.mu.Unlock()

	var catalogResults, sportResults []models.MediaItem
	var wg conc.WaitGroup
	if s.features.Movies || s.features.TVShows {
		wg.Go(func() { catalogResults = s.catalog.SearchAll(ctx, query) })
	}
	if s.features.Sports {
		wg.Go(func() { sportResults = s.live.SearchEvents(ctx, query) })
	}
	wg.Wait()

	combined := make([]models.MediaItem, 0, len(catalogResults)+len(sportResults))
	combined = append(combined, catalogResults...)
	combined = append(combined, sportResults...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.results = combined
	}
	return s.snapshotLocked()
}

// ToggleGenre flips a genre filter and re-runs discovery. A no-op outside
// movie/TV browsing.
func (s *Service) ToggleGenre(ctx context.Context, id int64) Snapshot {
	return s.toggleFilter(ctx, id, true)
}

// ToggleProvider flips a provider filter and re-runs discovery. A no-op
// outside movie/TV browsing.
func (s *Service) ToggleProvider(ctx context.Context, id int64) Snapshot {
	return s.toggleFilter(ctx, id, false)
}

func (s *Service) toggleFilter(ctx context.Context, id int64, genre bool) Snapshot {
	s.mu.Lock()
	if s.state.Mode != models.BrowseModeBrowse || !s.state.Category.IsCatalog() {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	if genre {
		s.filters.GenreIDs = flipMembership(s.filters.GenreIDs, id)
	} else {
		s.filters.ProviderIDs = flipMembership(s.filters.ProviderIDs, id)
	}
	s.generation++
	gen := s.generation
	category := s.state.Category
	endpoint := s.state.Endpoint
	filters := s.filters
	region := s.region
	s.mu.Unlock()

	results := s.catalog.Discover(ctx, category, filters, region.Code, endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.results = results
	}
	return s.snapshotLocked()
}

// SetSort replaces the sort key and re-runs discovery. A no-op outside
// movie/TV browsing.
func (s *Service) SetSort(ctx context.Context, sort string) Snapshot {
	s.mu.Lock()
	if s.state.Mode != models.BrowseModeBrowse || !s.state.Category.IsCatalog() || sort == "" {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.filters.Sort = sort
	s.generation++
	gen := s.generation
	category := s.state.Category
	endpoint := s.state.Endpoint
	filters := s.filters
	region := s.region
	s.mu.Unlock()

	results := s.catalog.Discover(ctx, category, filters, region.Code, endpoint)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.results = results
	}
	return s.snapshotLocked()
}

func flipMembership(set []int64, id int64) []int64 {
	next := make([]int64, 0, len(set)+1)
	found := false
	for _, member := range set {
		if member == id {
			found = true
			continue
		}
		next = append(next, member)
	}
	if !found {
		next = append(next, id)
	}
	return next
}

// SetRegion selects a new region and refreshes whatever the current state
// needs: taxonomies plus discovery in a movie/TV browse (keeping the active
// filters), live events in a sport browse, the dashboard in home. Search
// results are not region-scoped and are left as they are.
func (s *Service) SetRegion(ctx context.Context, region models.Region) Snapshot {
	s.mu.Lock()
	s.region = region
	state := s.state
	s.mu.Unlock()

	switch {
	case state.Mode == models.BrowseModeBrowse && state.Category.IsCatalog():
		return s.refreshCatalogBrowse(ctx)
	case state.Mode == models.BrowseModeBrowse && state.Category == models.MediaTypeSport:
		return s.Navigate(ctx, models.MediaTypeSport, state.Endpoint, state.Title)
	case state.Mode == models.BrowseModeHome:
		return s.Home(ctx)
	default:
		return s.Snapshot()
	}
}

// refreshCatalogBrowse re-runs the taxonomy and discovery fetches for the
// current movie/TV browse without touching the active filter selection.
func (s *Service) refreshCatalogBrowse(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.state.Mode != models.BrowseModeBrowse || !s.state.Category.IsCatalog() {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.generation++
	gen := s.generation
	category := s.state.Category
	endpoint := s.state.Endpoint
	filters := s.filters
	region := s.region
	s.mu.Unlock()

	var (
		results   []models.MediaItem
		genres    []models.Genre
		providers []models.Provider
	)
	var wg conc.WaitGroup
	wg.Go(func() { results = s.catalog.Discover(ctx, category, filters, region.Code, endpoint) })
	wg.Go(func() { genres = s.catalog.Genres(ctx, category) })
	wg.Go(func() { providers = s.catalog.WatchProviders(ctx, region.Code, category) })
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.results = results
		s.genres = genres
		s.providers = providers
	}
	return s.snapshotLocked()
}
