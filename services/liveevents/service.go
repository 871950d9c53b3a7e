package liveevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"streamscout/models"
)

// availabilityFailure is the generic description returned when the grounded
// availability call fails.
const availabilityFailure = "Error loading data."

// dataDelimiter separates the natural-language summary from the structured
// offer block in an availability response.
const dataDelimiter = "DATA:"

// Service discovers live sporting events and resolves their broadcast
// availability through the AI provider, hydrating event images from the
// public sports-metadata lookup. Every public operation swallows internal
// faults and returns an empty result.
type Service struct {
	gemini   *geminiClient
	sportsdb *sportsdbClient
	now      func() time.Time
}

// NewService creates a live-events service. Pass nil clients to use defaults
// with sane timeouts.
func NewService(geminiAPIKey, sportsdbKey string, httpc *http.Client) *Service {
	return &Service{
		gemini:   newGeminiClient(geminiAPIKey, httpc),
		sportsdb: newSportsDBClient(sportsdbKey, httpc),
		now:      time.Now,
	}
}

// rawEvent is the extraction schema's element shape.
type rawEvent struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Overview  string   `json:"overview"`
	MediaType string   `json:"mediaType"`
	League    string   `json:"league"`
	StartTime string   `json:"startTime"`
	Teams     []string `json:"teams"`
}

func eventSchema(required []string) *geminiSchema {
	return &geminiSchema{
		Type: "ARRAY",
		Items: &geminiSchema{
			Type: "OBJECT",
			Properties: map[string]*geminiSchema{
				"id":        {Type: "STRING"},
				"title":     {Type: "STRING"},
				"overview":  {Type: "STRING"},
				"mediaType": {Type: "STRING"},
				"league":    {Type: "STRING"},
				"startTime": {Type: "STRING"},
				"teams":     {Type: "ARRAY", Items: &geminiSchema{Type: "STRING"}},
			},
			Required: required,
		},
	}
}

// LiveEvents asks the AI provider for notable sporting events in the country
// over the next seven days. Grounded search and strict structured output are
// not reliably combinable in one call, so a free-form grounded search is
// followed by a schema-constrained extraction of its answer.
func (s *Service) LiveEvents(ctx context.Context, countryName string) []models.MediaItem {
	today := s.now()
	nextWeek := today.AddDate(0, 0, 7)

	searchPrompt := fmt.Sprintf(
		"Find 8 major sports events in %s (%s to %s). Use Google Search. Include official League/Team names and ISO startTime.",
		countryName, today.Format("2006-01-02"), nextWeek.Format("2006-01-02"))

	search, err := s.gemini.generate(ctx, searchPrompt, true, nil)
	if err != nil {
		log.Printf("[liveevents] event search failed: %v", err)
		return []models.MediaItem{}
	}

	extractPrompt := "Extract the sports events from this text into JSON: " + search.text
	extracted, err := s.gemini.generate(ctx, extractPrompt, false,
		eventSchema([]string{"id", "title", "mediaType", "teams", "startTime", "league"}))
	if err != nil {
		log.Printf("[liveevents] event extraction failed: %v", err)
		return []models.MediaItem{}
	}

	events := mapEvents(parseEventsJSON(extracted.text))
	s.hydrateImages(ctx, events)
	return events
}

// SearchEvents asks for teams or matches matching free text. Single
// schema-constrained call, no grounding.
func (s *Service) SearchEvents(ctx context.Context, query string) []models.MediaItem {
	prompt := fmt.Sprintf("Find teams or matches for: %s. Return JSON.", query)
	resp, err := s.gemini.generate(ctx, prompt, false,
		eventSchema([]string{"id", "title", "mediaType", "teams"}))
	if err != nil {
		log.Printf("[liveevents] event search %q failed: %v", query, err)
		return []models.MediaItem{}
	}

	events := mapEvents(parseEventsJSON(resp.text))
	s.hydrateImages(ctx, events)
	return events
}

var dataBlockRe = regexp.MustCompile(`(?s)DATA:\s*(\[.*\])`)

// Availability resolves where to watch a non-catalog title in a country via
// one grounded call. The response text is split on the first DATA: line:
// everything before is the description, everything after is parsed as the
// offer list. A malformed offer block keeps the description and yields no
// offers.
func (s *Service) Availability(ctx context.Context, title, countryName string) models.AvailabilityInfo {
	prompt := fmt.Sprintf(`SEARCH GROUNDING: Where can I watch the sport "%s" in %s?

Provide a natural language summary first.

At the very end of your response, include a JSON block containing the providers like this:
DATA: [{"name": "Netflix", "type": "flatrate"}, {"name": "Prime Video", "type": "rent", "price": "$3.99"}]

Use types: 'flatrate', 'rent', 'buy', 'free', 'broadcast'.`, title, countryName)

	resp, err := s.gemini.generate(ctx, prompt, true, nil)
	if err != nil {
		log.Printf("[liveevents] availability for %q failed: %v", title, err)
		return models.AvailabilityInfo{Description: availabilityFailure, Providers: []models.WatchProvider{}, Sources: []models.SourceLink{}}
	}

	description, providers := splitAvailability(resp.text)

	sources := make([]models.SourceLink, 0, len(resp.sources))
	for _, src := range resp.sources {
		sources = append(sources, models.SourceLink{Title: src.Title, URI: src.URI})
	}

	return models.AvailabilityInfo{
		Description: description,
		Providers:   providers,
		Sources:     sources,
	}
}

// splitAvailability separates the summary from the DATA: offer block.
func splitAvailability(text string) (string, []models.WatchProvider) {
	description := text
	if idx := strings.Index(text, dataDelimiter); idx >= 0 {
		description = text[:idx]
	}
	description = strings.TrimSpace(description)

	providers := []models.WatchProvider{}
	if match := dataBlockRe.FindStringSubmatch(text); len(match) == 2 {
		var parsed []models.WatchProvider
		if err := json.Unmarshal([]byte(match[1]), &parsed); err != nil {
			log.Printf("[liveevents] failed to parse offer block: %v", err)
		} else {
			providers = parsed
		}
	}
	return description, providers
}

// parseEventsJSON parses an AI-produced event array, retrying once against a
// cleaned version of the text (code-fence markers stripped, sliced to the
// outermost bracket pair) before giving up.
func parseEventsJSON(text string) []rawEvent {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var events []rawEvent
	if err := json.Unmarshal([]byte(text), &events); err == nil {
		return events
	}

	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	first := strings.Index(cleaned, "[")
	last := strings.LastIndex(cleaned, "]")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	if err := json.Unmarshal([]byte(cleaned), &events); err != nil {
		log.Printf("[liveevents] failed to parse events JSON: %v", err)
		return nil
	}
	return events
}

// mapEvents converts extracted events into sport MediaItems, synthesizing an
// id when the model omitted one.
func mapEvents(raw []rawEvent) []models.MediaItem {
	items := make([]models.MediaItem, 0, len(raw))
	for _, evt := range raw {
		id := strings.TrimSpace(evt.ID)
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, models.MediaItem{
			ID:        id,
			Title:     evt.Title,
			Overview:  evt.Overview,
			MediaType: models.MediaTypeSport,
			Sport: &models.SportDetails{
				League:    evt.League,
				StartTime: evt.StartTime,
				Teams:     evt.Teams,
			},
		})
	}
	return items
}

// hydrateImages resolves a poster image for each event through the fallback
// chain: event lookup by exact title, then the first team's name variants,
// then the league. Events are hydrated concurrently; an event with no hit
// anywhere is left without an image.
func (s *Service) hydrateImages(ctx context.Context, events []models.MediaItem) {
	p := pool.New().WithMaxGoroutines(4)
	for i := range events {
		evt := &events[i]
		p.Go(func() {
			evt.PosterURL = s.resolveImage(ctx, evt)
		})
	}
	p.Wait()
}

func (s *Service) resolveImage(ctx context.Context, evt *models.MediaItem) string {
	if img := s.sportsdb.eventImage(ctx, evt.Title); img != "" {
		return img
	}
	if evt.Sport != nil && len(evt.Sport.Teams) > 0 {
		for _, name := range teamNameVariants(evt.Sport.Teams[0]) {
			if img := s.sportsdb.teamImage(ctx, name); img != "" {
				return img
			}
		}
	}
	if evt.Sport != nil && evt.Sport.League != "" {
		if img := s.sportsdb.leagueImage(ctx, evt.Sport.League); img != "" {
			return img
		}
	}
	return ""
}
