package catalog

import (
	"context"
	"net/url"
	"sync"

	"streamscout/models"
)

// genreCache is the lazily-populated genre id -> name lookup table. It is
// owned by the Service, filled once from the movie and TV genre lists on
// first use, and never invalidated for the process lifetime. A failed
// population leaves the populated flag unset so the next call retries.
type genreCache struct {
	mu        sync.Mutex
	names     map[int64]string
	populated bool
}

func newGenreCache() *genreCache {
	return &genreCache{names: make(map[int64]string)}
}

type tmdbGenreList struct {
	Genres []models.Genre `json:"genres"`
}

// ensure populates the table from TMDB if it hasn't been populated yet.
// Both kind lists must load for the population to count as done.
func (g *genreCache) ensure(ctx context.Context, client *tmdbClient) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.populated {
		return
	}

	merged := make(map[int64]string)
	for _, kind := range []string{"movie", "tv"} {
		q := url.Values{}
		q.Set("language", "en")
		var list tmdbGenreList
		if err := client.doGET(ctx, "/genre/"+kind+"/list", q, &list); err != nil {
			return
		}
		for _, genre := range list.Genres {
			merged[genre.ID] = genre.Name
		}
	}

	for id, name := range merged {
		g.names[id] = name
	}
	g.populated = true
}

// resolve maps genre ids to names, dropping unknown ids.
func (g *genreCache) resolve(ids []int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := g.names[id]; ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}
