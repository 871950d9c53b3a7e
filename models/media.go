package models

// MediaType distinguishes the three content categories the app can surface.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeSport MediaType = "sport"
)

// IsCatalog reports whether the type is served by the catalog provider
// (movies and TV) as opposed to live events.
func (t MediaType) IsCatalog() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaItem is the one type the browse layer and handlers operate on.
// Exactly one of Catalog or Sport is set, keyed on MediaType: catalog items
// carry release/rating/genre data, sport items carry league/fixture data.
type MediaItem struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	PosterURL    string         `json:"posterUrl,omitempty"`
	BackdropURL  string         `json:"backdropUrl,omitempty"`
	MediaType    MediaType      `json:"mediaType"`
	Catalog      *CatalogDetails `json:"catalog,omitempty"`
	Sport        *SportDetails   `json:"sport,omitempty"`
}

// CatalogDetails holds the movie/TV-only fields of a MediaItem.
type CatalogDetails struct {
	OriginalTitle string   `json:"originalTitle,omitempty"`
	ReleaseDate   string   `json:"releaseDate,omitempty"`
	Rating        float64  `json:"rating,omitempty"` // 0-10, one decimal
	Genres        []string `json:"genres,omitempty"` // at most three names
}

// SportDetails holds the live-event-only fields of a MediaItem.
type SportDetails struct {
	League    string   `json:"league,omitempty"`
	StartTime string   `json:"startTime,omitempty"` // ISO 8601
	Teams     []string `json:"teams,omitempty"`
	IsLive    bool     `json:"isLive,omitempty"`
}

// Genre is one entry of the catalog provider's genre taxonomy.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Provider is one watch provider from the catalog provider's regional
// taxonomy, ordered by the provider's own display priority.
type Provider struct {
	ID              int64  `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority"`
}

// OfferType is the commercial mode a provider offers a title under.
type OfferType string

const (
	OfferFlatrate  OfferType = "flatrate"
	OfferRent      OfferType = "rent"
	OfferBuy       OfferType = "buy"
	OfferFree      OfferType = "free"
	OfferBroadcast OfferType = "broadcast"
)

// WatchProvider is one way to watch a title in a region.
type WatchProvider struct {
	Name    string    `json:"name"`
	Type    OfferType `json:"type"`
	Price   string    `json:"price,omitempty"`
	LogoURL string    `json:"logoUrl,omitempty"`
}

// SourceLink is a cited web source backing an availability answer.
type SourceLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// AvailabilityInfo describes where one title can be watched in one region.
// Fetched on demand for the detail overlay and discarded when it closes.
type AvailabilityInfo struct {
	Description string          `json:"description"`
	Providers   []WatchProvider `json:"providers"`
	Link        string          `json:"link,omitempty"`
	Homepage    string          `json:"homepage,omitempty"`
	Sources     []SourceLink    `json:"groundingSources"`
}
