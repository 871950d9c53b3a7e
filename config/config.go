package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags toggle entire content categories. A disabled category is
// never fetched and its UI sections render empty.
type FeatureFlags struct {
	Movies  bool `json:"movies"`
	TVShows bool `json:"tvShows"`
	Sports  bool `json:"sports"`
}

// Config is the process-wide startup configuration.
type Config struct {
	ListenAddr   string       `json:"listenAddr"`
	StorageDir   string       `json:"storageDir"`
	LogFile      string       `json:"logFile"`
	TMDBToken    string       `json:"-"`
	GeminiAPIKey string       `json:"-"`
	SportsDBKey  string       `json:"sportsDbKey"`
	Features     FeatureFlags `json:"features"`
}

// Defaults returns the built-in configuration before env overrides.
func Defaults() Config {
	return Config{
		ListenAddr:  ":8787",
		StorageDir:  "data",
		SportsDBKey: "3", // public test key
		Features: FeatureFlags{
			Movies:  true,
			TVShows: true,
			Sports:  false,
		},
	}
}

// FromEnv builds a Config from defaults plus environment overrides.
// Secrets (API tokens) only ever come from the environment.
func FromEnv() Config {
	cfg := Defaults()
	if v := os.Getenv("STREAMSCOUT_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STREAMSCOUT_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("STREAMSCOUT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	cfg.TMDBToken = strings.TrimSpace(os.Getenv("TMDB_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if v := os.Getenv("SPORTSDB_KEY"); v != "" {
		cfg.SportsDBKey = v
	}
	cfg.Features.Movies = envBool("FEATURE_MOVIES", cfg.Features.Movies)
	cfg.Features.TVShows = envBool("FEATURE_TV_SHOWS", cfg.Features.TVShows)
	cfg.Features.Sports = envBool("FEATURE_SPORTS", cfg.Features.Sports)
	return cfg
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Manager holds the live configuration and persists feature-flag changes to
// a settings file inside the storage directory.
type Manager struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// NewManager loads persisted feature flags (if any) on top of the provided
// base configuration.
func NewManager(base Config) (*Manager, error) {
	if strings.TrimSpace(base.StorageDir) == "" {
		return nil, errors.New("storage directory not provided")
	}
	if err := os.MkdirAll(base.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	m := &Manager{
		cfg:  base,
		path: filepath.Join(base.StorageDir, "settings.json"),
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var stored struct {
		Features FeatureFlags `json:"features"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	m.cfg.Features = stored.Features
	return m, nil
}

// Get returns a snapshot of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Features returns the current feature flags.
func (m *Manager) Features() FeatureFlags {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Features
}

// UpdateFeatures replaces the feature flags and persists them.
func (m *Manager) UpdateFeatures(flags FeatureFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Features = flags
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	tmp := m.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}

	payload := struct {
		Features FeatureFlags `json:"features"`
	}{Features: m.cfg.Features}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close settings temp file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
