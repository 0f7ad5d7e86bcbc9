package main

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"rally-metrics-go/config"
	"rally-metrics-go/database"
	"rally-metrics-go/handlers"
	"rally-metrics-go/logging"
	"rally-metrics-go/middleware"
	"rally-metrics-go/services"
	"rally-metrics-go/templates"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.LoggerConfig(os.Stdout))
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	// Player data: the stats API, or the built-in snapshot when it is
	// unreachable or demo mode is on
	var (
		playerService services.PlayerService
		listCache     services.PlayerListCache
		demo          = cfg.API.DemoMode
	)
	if !demo {
		api := services.NewRallyAPIService(cfg.API.BaseURL, cfg.API.Timeout)
		checkCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
		healthy := api.HealthCheck(checkCtx)
		cancel()

		if healthy {
			listCache = newListCache(ctx, cfg)
			if c, ok := listCache.(io.Closer); ok {
				closers = append(closers, c)
			}
			playerService = services.NewAPIPlayerService(api, listCache)
		} else {
			logging.Warnf("Stats API at %s is unreachable, continuing with demo data", cfg.API.BaseURL)
			demo = true
		}
	}
	if demo {
		demoService, err := services.NewDemoPlayerService()
		if err != nil {
			logging.Fatalf("Failed to load demo data: %v", err)
		}
		playerService = demoService
	}

	summaryRepo, closer := newSummaryRepository(ctx, cfg)
	if closer != nil {
		closers = append(closers, closer)
	}
	summaryService := services.NewSummaryService(playerService, summaryRepo, cfg.Cache.SummaryTTL)

	tmpl, err := templates.Parse()
	if err != nil {
		logging.Fatalf("Error parsing templates: %v", err)
	}

	teams := services.NewStaticTeamService()
	prefs := middleware.NewPreferencesMiddleware(services.NewPreferencesService(cfg.Auth.PrefsSecret), !cfg.IsDevelopment())
	events := handlers.NewEventHub(30 * time.Second)

	router := handlers.Router{
		Pages:       handlers.NewPageHandler(tmpl, playerService, teams, rand.New(rand.NewSource(time.Now().UnixNano())), demo),
		Players:     handlers.NewPlayerHandler(tmpl, playerService, summaryService, teams, prefs, demo),
		Predictor:   handlers.NewPredictorHandler(tmpl, playerService, teams, demo),
		Events:      events,
		Health:      handlers.NewHealthHandler(playerService, demo),
		Admin:       handlers.NewAdminHandler(listCache, summaryService),
		AdminAuth:   middleware.NewAdminAuth(cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash),
		Preferences: prefs,
		Static:      templates.Static(),
		BehindProxy: cfg.Server.BehindProxy,
		CORSOrigins: cfg.Server.CORSOrigins,
	}.Build()

	warmer := services.NewCacheWarmer(playerService, cfg.Cache.WarmInterval, events.BroadcastStatsUpdated)
	warmer.Start()
	defer warmer.Stop()

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s (demo=%t)", server.Addr, demo)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Graceful shutdown failed: %v", err)
	}
}

// newListCache returns a Redis cache when REDIS_URL is set and reachable,
// otherwise an in-process cache
func newListCache(ctx context.Context, cfg *config.Config) services.PlayerListCache {
	if cfg.Cache.RedisURL != "" {
		cache, err := services.NewRedisPlayerListCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err == nil {
			return cache
		}
		logging.Warnf("Redis unavailable, using in-memory player cache: %v", err)
	}
	return services.NewMemoryPlayerListCache(cfg.Cache.TTL)
}

// newSummaryRepository picks the summary store from SUMMARY_STORE, falling
// back to memory when the configured store cannot be opened
func newSummaryRepository(ctx context.Context, cfg *config.Config) (services.SummaryRepository, io.Closer) {
	switch cfg.Cache.SummaryStore {
	case config.SummaryStoreMongo:
		db, err := database.NewMongoConnection(ctx, cfg.MongoConfig())
		if err != nil {
			logging.Warnf("MongoDB unavailable, caching summaries in memory: %v", err)
			break
		}
		return database.NewMongoSummaryRepository(db), db
	case config.SummaryStoreSQLite:
		repo, err := database.OpenSQLiteSummaryRepository(ctx, cfg.Cache.SQLitePath)
		if err != nil {
			logging.Warnf("SQLite unavailable, caching summaries in memory: %v", err)
			break
		}
		return repo, repo
	}
	return services.NewMemorySummaryRepository(), nil
}
