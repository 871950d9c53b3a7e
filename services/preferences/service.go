package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"streamscout/models"
)

// ErrStorageDirRequired is returned when no storage directory is provided.
var ErrStorageDirRequired = errors.New("storage directory not provided")

// freshnessWindow is how long a persisted record stays valid. Anything older
// is treated as absent and evicted on the next load.
const freshnessWindow = 24 * time.Hour

// storedRecord is the on-disk shape: the preferences plus their write time.
type storedRecord struct {
	Preferences models.UserPreferences `json:"preferences"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Service persists the single user's preferences with a 24-hour freshness
// window. Persistence faults are swallowed and logged; the caller always gets
// a usable preferences value.
type Service struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewService creates a preference store writing inside the given directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}
	return &Service{
		path: filepath.Join(storageDir, "preferences.json"),
		now:  time.Now,
	}, nil
}

// Load returns the persisted preferences if present and younger than the
// freshness window, else the hard-coded defaults. An expired record is
// evicted as a side effect.
func (s *Service) Load() models.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Service) loadLocked() models.UserPreferences {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultPreferences()
	}
	if err != nil {
		log.Printf("[preferences] read failed: %v", err)
		return models.DefaultPreferences()
	}

	var record storedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("[preferences] corrupt record, using defaults: %v", err)
		return models.DefaultPreferences()
	}

	if s.now().Sub(record.Timestamp) > freshnessWindow {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[preferences] failed to evict expired record: %v", err)
		}
		return models.DefaultPreferences()
	}

	if record.Preferences.FavoriteIDs == nil {
		record.Preferences.FavoriteIDs = []string{}
	}
	return record.Preferences
}

// Save writes the preferences with a fresh timestamp, overwriting any prior
// record. Failures are logged, never propagated.
func (s *Service) Save(prefs models.UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(prefs)
}

func (s *Service) saveLocked(prefs models.UserPreferences) {
	record := storedRecord{Preferences: prefs, Timestamp: s.now()}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		log.Printf("[preferences] create temp file failed: %v", err)
		return
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		log.Printf("[preferences] encode failed: %v", err)
		return
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		log.Printf("[preferences] close temp file failed: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.Printf("[preferences] replace record failed: %v", err)
	}
}

// ToggleFavorite flips membership of id in the favorites set, persists, and
// returns the new set. Calling it twice with the same id restores the
// original set.
func (s *Service) ToggleFavorite(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.loadLocked()
	next := make([]string, 0, len(prefs.FavoriteIDs)+1)
	found := false
	for _, fav := range prefs.FavoriteIDs {
		if fav == id {
			found = true
			continue
		}
		next = append(next, fav)
	}
	if !found {
		next = append(next, id)
	}
	prefs.FavoriteIDs = next
	s.saveLocked(prefs)
	return next
}
