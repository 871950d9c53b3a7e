package liveevents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"streamscout/utils"
)

// sportsdbClient talks to TheSportsDB's unauthenticated lookup endpoints.
// Every lookup is best-effort: a failed or empty lookup yields "".
type sportsdbClient struct {
	key   string
	httpc *http.Client
}

func newSportsDBClient(key string, httpc *http.Client) *sportsdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if key == "" {
		key = "3" // public test key
	}
	return &sportsdbClient{key: key, httpc: httpc}
}

func (c *sportsdbClient) doGET(ctx context.Context, endpoint string, param, value string, v any) error {
	u := fmt.Sprintf("https://www.thesportsdb.com/api/v1/json/%s/%s?%s=%s",
		c.key, endpoint, param, url.QueryEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sportsdb get %s failed: %s", endpoint, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// eventImage looks an event up by exact title and returns its thumbnail,
// else league badge, else home-team badge.
func (c *sportsdbClient) eventImage(ctx context.Context, eventTitle string) string {
	if eventTitle == "" {
		return ""
	}
	var resp struct {
		Event []struct {
			Thumb         string `json:"strThumb"`
			LeagueBadge   string `json:"strLeagueBadge"`
			HomeTeamBadge string `json:"strHomeTeamBadge"`
		} `json:"event"`
	}
	if err := c.doGET(ctx, "searchevents.php", "e", eventTitle, &resp); err != nil {
		return ""
	}
	if len(resp.Event) == 0 {
		return ""
	}
	evt := resp.Event[0]
	return firstNonEmpty(evt.Thumb, evt.LeagueBadge, evt.HomeTeamBadge)
}

// teamImage looks a team up by name and returns its fanart, else badge,
// else banner.
func (c *sportsdbClient) teamImage(ctx context.Context, teamName string) string {
	var resp struct {
		Teams []struct {
			Fanart string `json:"strTeamFanart1"`
			Badge  string `json:"strTeamBadge"`
			Banner string `json:"strTeamBanner"`
		} `json:"teams"`
	}
	if err := c.doGET(ctx, "searchteams.php", "t", teamName, &resp); err != nil {
		return ""
	}
	if len(resp.Teams) == 0 {
		return ""
	}
	team := resp.Teams[0]
	return firstNonEmpty(team.Fanart, team.Badge, team.Banner)
}

// leagueImage looks a league up by name and returns its fanart, else badge,
// else banner.
func (c *sportsdbClient) leagueImage(ctx context.Context, leagueName string) string {
	if leagueName == "" {
		return ""
	}
	var resp struct {
		Countrys []struct {
			Fanart string `json:"strFanart1"`
			Badge  string `json:"strBadge"`
			Banner string `json:"strBanner"`
		} `json:"countrys"`
	}
	if err := c.doGET(ctx, "search_all_leagues.php", "l", leagueName, &resp); err != nil {
		return ""
	}
	if len(resp.Countrys) == 0 {
		return ""
	}
	league := resp.Countrys[0]
	return firstNonEmpty(league.Fanart, league.Badge, league.Banner)
}

// firstNonEmpty returns the first usable image URL. TheSportsDB serves some
// fanart under paths with raw spaces, so the winner is re-encoded.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			if encoded, err := utils.EncodeURLWithSpaces(v); err == nil {
				return encoded
			}
		}
		return v
	}
	return ""
}

var (
	embeddedDigitsRe = regexp.MustCompile(`\s\d+\s`)
	clubTokenRe      = regexp.MustCompile(`(?i)\b(FC|CF|AS)\b`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
)

// teamNameVariants generates lookup variants for a team name, in order: the
// name unmodified; with a leading "1. " club-number prefix stripped; with
// embedded standalone numeric tokens stripped; with bare FC/CF/AS tokens
// stripped (kept only when the result is longer than 3 characters).
func teamNameVariants(name string) []string {
	variants := []string{name}

	if strings.Contains(name, "1. ") {
		variants = append(variants, strings.Replace(name, "1. ", "", 1))
	}

	noDigits := strings.TrimSpace(embeddedDigitsRe.ReplaceAllString(name, " "))
	if noDigits != name {
		variants = append(variants, noDigits)
	}

	noClub := clubTokenRe.ReplaceAllString(name, "")
	noClub = strings.TrimSpace(multiSpaceRe.ReplaceAllString(noClub, " "))
	if noClub != name && len(noClub) > 3 {
		variants = append(variants, noClub)
	}

	return variants
}
