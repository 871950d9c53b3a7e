package catalog

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"streamscout/models"
)

// availabilityFailure is the generic description shown when the unified
// details lookup fails. No error ever reaches the caller.
const availabilityFailure = "Failed to connect to database."

// Service exposes region- and language-qualified lookups against the catalog
// metadata provider. Every operation swallows faults and resolves to an
// empty result; the caller never sees an error.
type Service struct {
	client *tmdbClient
	genres *genreCache
}

// NewService creates a catalog service authenticated with the given bearer
// token. Pass a nil http.Client to use a default with a 15s timeout.
func NewService(token string, httpc *http.Client) *Service {
	return &Service{
		client: newTMDBClient(token, httpc),
		genres: newGenreCache(),
	}
}

// Trending returns up to one provider page of weekly trending items for
// "movie" or "tv", in the provider's own ranking order.
func (s *Service) Trending(ctx context.Context, kind models.MediaType) []models.MediaItem {
	if !kind.IsCatalog() {
		return []models.MediaItem{}
	}
	s.genres.ensure(ctx, s.client)

	q := url.Values{}
	q.Set("language", "en-US")
	var page tmdbResultsPage
	if err := s.client.doGET(ctx, "/trending/"+string(kind)+"/week", q, &page); err != nil {
		log.Printf("[catalog] trending %s failed: %v", kind, err)
		return []models.MediaItem{}
	}

	items := make([]models.MediaItem, 0, len(page.Results))
	for _, item := range page.Results {
		items = append(items, mapItem(item, kind, s.genres))
	}
	return items
}

// SearchAll runs a free-text multi-search restricted to movie and TV kinds;
// results of any other kind are dropped.
func (s *Service) SearchAll(ctx context.Context, query string) []models.MediaItem {
	s.genres.ensure(ctx, s.client)

	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	q.Set("language", "en-US")
	q.Set("page", "1")
	var page tmdbResultsPage
	if err := s.client.doGET(ctx, "/search/multi", q, &page); err != nil {
		log.Printf("[catalog] search %q failed: %v", query, err)
		return []models.MediaItem{}
	}

	items := make([]models.MediaItem, 0, len(page.Results))
	for _, item := range page.Results {
		kind := models.MediaType(item.MediaType)
		if !kind.IsCatalog() {
			continue
		}
		items = append(items, mapItem(item, kind, s.genres))
	}
	return items
}

// Genres returns the full genre taxonomy for a kind.
func (s *Service) Genres(ctx context.Context, kind models.MediaType) []models.Genre {
	if !kind.IsCatalog() {
		return []models.Genre{}
	}
	q := url.Values{}
	q.Set("language", "en")
	var list tmdbGenreList
	if err := s.client.doGET(ctx, "/genre/"+string(kind)+"/list", q, &list); err != nil {
		log.Printf("[catalog] genres %s failed: %v", kind, err)
		return []models.Genre{}
	}
	if list.Genres == nil {
		return []models.Genre{}
	}
	return list.Genres
}

// WatchProviders returns the providers offering the kind in the region,
// ordered by the provider's display priority ascending.
func (s *Service) WatchProviders(ctx context.Context, region string, kind models.MediaType) []models.Provider {
	if !kind.IsCatalog() {
		return []models.Provider{}
	}
	q := url.Values{}
	q.Set("language", "en-US")
	q.Set("watch_region", region)
	var resp struct {
		Results []models.Provider `json:"results"`
	}
	if err := s.client.doGET(ctx, "/watch/providers/"+string(kind), q, &resp); err != nil {
		log.Printf("[catalog] watch providers %s/%s failed: %v", kind, region, err)
		return []models.Provider{}
	}
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].DisplayPriority < resp.Results[j].DisplayPriority
	})
	return resp.Results
}

// Discover returns a filtered or preset listing for a kind. Any active genre
// or provider filter — and the absence of a preset — forces the generic
// discovery query; otherwise the named preset listing is used. Genre ids are
// comma-joined (AND within TMDB's semantics), provider ids pipe-joined (OR).
func (s *Service) Discover(ctx context.Context, kind models.MediaType, filters models.FilterSelection, region, preset string) []models.MediaItem {
	if !kind.IsCatalog() {
		return []models.MediaItem{}
	}
	s.genres.ensure(ctx, s.client)

	var path string
	q := url.Values{}
	q.Set("language", "en-US")
	q.Set("page", "1")

	if filters.Active() || preset == "" {
		path = "/discover/" + string(kind)
		q.Set("watch_region", region)
		q.Set("include_adult", "false")
		q.Set("sort_by", filters.Sort)
		if len(filters.GenreIDs) > 0 {
			q.Set("with_genres", joinIDs(filters.GenreIDs, ","))
		}
		if len(filters.ProviderIDs) > 0 {
			q.Set("with_watch_providers", joinIDs(filters.ProviderIDs, "|"))
		}
	} else {
		path = "/" + string(kind) + "/" + preset
		q.Set("region", region)
	}

	var page tmdbResultsPage
	if err := s.client.doGET(ctx, path, q, &page); err != nil {
		log.Printf("[catalog] discover %s failed: %v", kind, err)
		return []models.MediaItem{}
	}

	items := make([]models.MediaItem, 0, len(page.Results))
	for _, item := range page.Results {
		items = append(items, mapItem(item, kind, s.genres))
	}
	return items
}

func joinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, sep)
}

// tmdbDetails is the combined details + watch-providers response.
type tmdbDetails struct {
	Overview       string `json:"overview"`
	Homepage       string `json:"homepage"`
	WatchProviders struct {
		Results map[string]tmdbRegionOffers `json:"results"`
	} `json:"watch/providers"`
}

type tmdbRegionOffers struct {
	Link     string             `json:"link"`
	Flatrate []tmdbOfferEntry   `json:"flatrate"`
	Rent     []tmdbOfferEntry   `json:"rent"`
	Buy      []tmdbOfferEntry   `json:"buy"`
	Ads      []tmdbOfferEntry   `json:"ads"`
}

type tmdbOfferEntry struct {
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// Availability resolves where the title is watchable in the region using one
// combined details + watch-providers request. The sources list carries the
// official homepage first, then the provider's own region deep-link.
func (s *Service) Availability(ctx context.Context, id string, kind models.MediaType, region string) models.AvailabilityInfo {
	if !kind.IsCatalog() {
		return models.AvailabilityInfo{Description: availabilityFailure, Providers: []models.WatchProvider{}, Sources: []models.SourceLink{}}
	}

	q := url.Values{}
	q.Set("append_to_response", "watch/providers")
	var details tmdbDetails
	if err := s.client.doGET(ctx, "/"+string(kind)+"/"+id, q, &details); err != nil {
		log.Printf("[catalog] availability %s/%s failed: %v", kind, id, err)
		return models.AvailabilityInfo{Description: availabilityFailure, Providers: []models.WatchProvider{}, Sources: []models.SourceLink{}}
	}

	regional := details.WatchProviders.Results[region]

	providers := make([]models.WatchProvider, 0, 8)
	appendOffers := func(entries []tmdbOfferEntry, offer models.OfferType) {
		for _, entry := range entries {
			p := models.WatchProvider{Name: entry.ProviderName, Type: offer}
			if entry.LogoPath != "" {
				p.LogoURL = tmdbOriginalBase + entry.LogoPath
			}
			providers = append(providers, p)
		}
	}
	appendOffers(regional.Flatrate, models.OfferFlatrate)
	appendOffers(regional.Rent, models.OfferRent)
	appendOffers(regional.Buy, models.OfferBuy)
	appendOffers(regional.Ads, models.OfferFree)

	sources := make([]models.SourceLink, 0, 2)
	if details.Homepage != "" {
		sources = append(sources, models.SourceLink{Title: "Official Homepage", URI: details.Homepage})
	}
	if regional.Link != "" {
		sources = append(sources, models.SourceLink{Title: "View Streaming Details", URI: regional.Link})
	}

	description := details.Overview
	if description == "" {
		description = "No description available."
	}

	return models.AvailabilityInfo{
		Description: description,
		Providers:   providers,
		Link:        regional.Link,
		Homepage:    details.Homepage,
		Sources:     sources,
	}
}
