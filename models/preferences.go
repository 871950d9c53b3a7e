package models

// UserPreferences is the small persisted user state: the selected region and
// the set of favorited item identifiers.
type UserPreferences struct {
	SelectedRegion Region   `json:"selectedRegion"`
	FavoriteIDs    []string `json:"favoriteIds"`
}

// DefaultPreferences returns the hard-coded defaults used when nothing is
// persisted or the persisted record has expired.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		SelectedRegion: PopularRegions[0],
		FavoriteIDs:    []string{},
	}
}
