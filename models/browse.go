package models

// BrowseMode is the discriminant of the browse layer's state machine.
type BrowseMode string

const (
	BrowseModeHome   BrowseMode = "home"
	BrowseModeBrowse BrowseMode = "browse"
	BrowseModeSearch BrowseMode = "search"
)

// BrowseState is the explicit state of the browse layer with per-mode data.
// Category and Endpoint are meaningful only in browse mode, Query only in
// search mode.
type BrowseState struct {
	Mode     BrowseMode `json:"mode"`
	Category MediaType  `json:"category,omitempty"`
	Endpoint string     `json:"endpoint,omitempty"` // preset listing, e.g. "popular"
	Query    string     `json:"query,omitempty"`
	Title    string     `json:"title,omitempty"` // human heading for the view
}

// FilterSelection is the active sort and filter sets for one browse session.
// Genre and provider sets apply to movie/TV browsing only, never to sports.
type FilterSelection struct {
	Sort        string  `json:"sort"`
	GenreIDs    []int64 `json:"genreIds"`
	ProviderIDs []int64 `json:"providerIds"`
}

// Active reports whether any genre or provider filter is selected. Filter
// presence always forces generic discovery over a preset listing.
func (f FilterSelection) Active() bool {
	return len(f.GenreIDs) > 0 || len(f.ProviderIDs) > 0
}

// DefaultSortFor returns the default sort key for a preset endpoint.
func DefaultSortFor(endpoint string) string {
	switch endpoint {
	case "top_rated":
		return "vote_average.desc"
	case "upcoming":
		return "primary_release_date.desc"
	case "on_the_air":
		return "first_air_date.desc"
	default:
		return "popularity.desc"
	}
}

// DefaultFilters returns a fresh filter selection for a browse session that
// just navigated to the given preset endpoint.
func DefaultFilters(endpoint string) FilterSelection {
	return FilterSelection{
		Sort:        DefaultSortFor(endpoint),
		GenreIDs:    []int64{},
		ProviderIDs: []int64{},
	}
}
