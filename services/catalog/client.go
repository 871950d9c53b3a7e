package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"streamscout/models"
)

const (
	tmdbBaseURL     = "https://api.themoviedb.org/3"
	tmdbPosterBase  = "https://image.tmdb.org/t/p/w500"
	tmdbOriginalBase = "https://image.tmdb.org/t/p/original"
)

// tmdbClient is a minimal TMDB v3 client covering the endpoints the browse
// layer needs (bearer-token auth).
type tmdbClient struct {
	token string
	httpc *http.Client
}

func newTMDBClient(token string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{token: strings.TrimSpace(token), httpc: httpc}
}

func (c *tmdbClient) isConfigured() bool {
	return c.token != ""
}

// doGET issues an authenticated GET against a TMDB path, retrying once on
// 429s and server errors.
func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	endpoint := tmdbBaseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.token)

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
			}
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return retry.Unrecoverable(fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body))))
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb decode %s: %w", path, err))
			}
			return nil
		},
		retry.Attempts(2),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// tmdbItem is the shared result shape of trending, search and discover.
type tmdbItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	MediaType     string  `json:"media_type"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
	GenreIDs      []int64 `json:"genre_ids"`
}

type tmdbResultsPage struct {
	Results []tmdbItem `json:"results"`
}

// mapItem converts a TMDB list entry into a MediaItem, resolving genre ids
// to names through the given cache and capping genres at three.
func mapItem(item tmdbItem, kind models.MediaType, genres *genreCache) models.MediaItem {
	title := item.Title
	if title == "" {
		title = item.Name
	}
	original := item.OriginalTitle
	if original == "" {
		original = item.OriginalName
	}
	release := item.ReleaseDate
	if release == "" {
		release = item.FirstAirDate
	}

	names := genres.resolve(item.GenreIDs)
	if len(names) > 3 {
		names = names[:3]
	}

	out := models.MediaItem{
		ID:        fmt.Sprintf("%d", item.ID),
		Title:     title,
		Overview:  item.Overview,
		MediaType: kind,
		Catalog: &models.CatalogDetails{
			OriginalTitle: original,
			ReleaseDate:   release,
			Rating:        math.Round(item.VoteAverage*10) / 10,
			Genres:        names,
		},
	}
	if item.PosterPath != "" {
		out.PosterURL = tmdbPosterBase + item.PosterPath
	}
	if item.BackdropPath != "" {
		out.BackdropURL = tmdbOriginalBase + item.BackdropPath
	}
	return out
}
