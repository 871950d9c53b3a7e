package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"streamscout/api"
	"streamscout/config"
	"streamscout/handlers"
	"streamscout/services/browse"
	"streamscout/services/catalog"
	"streamscout/services/liveevents"
	"streamscout/services/preferences"
	"streamscout/utils"
)

func main() {
	// .env is optional, real deployments use the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[main] .env not loaded: %v", err)
	}

	cfg := config.FromEnv()
	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}

	manager, err := config.NewManager(cfg)
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}
	cfg = manager.Get()

	if cfg.TMDBToken == "" {
		log.Printf("[main] TMDB_TOKEN not set, catalog sections will be empty")
	}
	if cfg.GeminiAPIKey == "" && cfg.Features.Sports {
		log.Printf("[main] GEMINI_API_KEY not set, live sports sections will be empty")
	}

	httpc := &http.Client{Timeout: 30 * time.Second}

	prefs, err := preferences.NewService(cfg.StorageDir)
	if err != nil {
		log.Fatalf("[main] preferences: %v", err)
	}
	catalogSvc := catalog.NewService(cfg.TMDBToken, httpc)
	liveSvc := liveevents.NewService(cfg.GeminiAPIKey, cfg.SportsDBKey, httpc)

	startup := prefs.Load()
	orchestrator := browse.NewService(catalogSvc, liveSvc, cfg.Features, startup.SelectedRegion)

	browseHandler := handlers.NewBrowseHandler(orchestrator)
	availabilityHandler := handlers.NewAvailabilityHandler(catalogSvc, liveSvc, orchestrator)
	filtersHandler := handlers.NewFiltersHandler(catalogSvc, orchestrator)
	preferencesHandler := handlers.NewPreferencesHandler(prefs, orchestrator)
	featuresHandler := handlers.NewFeaturesHandler(manager)

	// grounded availability lookups are expensive, keep per-IP pressure down
	availabilityLimiter := api.NewIPRateLimiter(rate.Every(2*time.Second), 5)

	r := utils.NewRouter()
	r.HandleFunc("/api/dashboard", browseHandler.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/browse", browseHandler.Browse).Methods(http.MethodGet)
	r.HandleFunc("/api/browse/filters", browseHandler.ToggleFilter).Methods(http.MethodPost)
	r.HandleFunc("/api/browse/sort", browseHandler.SetSort).Methods(http.MethodPost)
	r.HandleFunc("/api/search", browseHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/state", browseHandler.State).Methods(http.MethodGet)
	r.HandleFunc("/api/filters", filtersHandler.Filters).Methods(http.MethodGet)
	r.HandleFunc("/api/availability", api.RateLimitHandlerFunc(availabilityLimiter, availabilityHandler.Availability)).Methods(http.MethodGet)
	r.HandleFunc("/api/regions", preferencesHandler.Regions).Methods(http.MethodGet)
	r.HandleFunc("/api/preferences", preferencesHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/preferences", preferencesHandler.Update).Methods(http.MethodPut)
	r.HandleFunc("/api/preferences/favorites/{id}/toggle", preferencesHandler.ToggleFavorite).Methods(http.MethodPost)
	r.HandleFunc("/api/config/features", featuresHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/config/features", featuresHandler.Update).Methods(http.MethodPut)

	log.Printf("[main] listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatalf("[main] server: %v", err)
	}
}
