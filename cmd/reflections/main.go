// Spiritual Reflections - curated good news with spiritual interpretations.
// Serves the news API, keeps the review queue filled and warms interpretations.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/api"
	"github.com/infoai1/spiritual-reflections/internal/auth"
	"github.com/infoai1/spiritual-reflections/internal/cache"
	"github.com/infoai1/spiritual-reflections/internal/config"
	"github.com/infoai1/spiritual-reflections/internal/content"
	"github.com/infoai1/spiritual-reflections/internal/extract"
	"github.com/infoai1/spiritual-reflections/internal/feeds"
	"github.com/infoai1/spiritual-reflections/internal/filter"
	"github.com/infoai1/spiritual-reflections/internal/interpret"
	"github.com/infoai1/spiritual-reflections/internal/newsapi"
	"github.com/infoai1/spiritual-reflections/internal/scheduler"
	"github.com/infoai1/spiritual-reflections/internal/storage"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Spiritual Reflections - Starting")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	filterConfig, err := cfg.FilterConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load filter configuration")
	}
	newsFilter := filter.New(filterConfig)
	log.Info().Int("categories", len(newsFilter.Categories())).Msg("Filter initialized")

	ctx := context.Background()

	// Initialize storage
	store, err := storage.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer store.Close(ctx)

	// Initialize interpretation cache
	cacheConfig := cache.Config{Store: store, TTL: cfg.CacheTTL, MaxEntries: cfg.CacheMaxEntries}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without it")
		} else {
			defer rdb.Close()
			cacheConfig.Redis = rdb
		}
	}
	interpretationCache := cache.New(cacheConfig)

	// Initialize news sources
	newsClient := newsapi.NewClient(cfg.NewsAPIKey, cfg.NewsAPISources)
	var feedSource content.FeedSource
	if len(cfg.RSSFeeds) > 0 {
		feedSource = feeds.NewFetcher(cfg.RSSFeeds)
		log.Info().Int("feeds", len(cfg.RSSFeeds)).Msg("RSS fetcher initialized")
	}

	// Initialize interpretation client
	llmClient := interpret.NewClient(interpret.Config{
		APIKey:   cfg.LLMAPIKey,
		Endpoint: cfg.LLMEndpoint,
		Model:    cfg.LLMModel,
		RPM:      cfg.LLMRPM,
	})
	if llmClient.Configured() {
		log.Info().Str("model", cfg.LLMModel).Msg("Interpretation client initialized")
	}

	curator := content.NewCurator(newsFilter, content.Options{
		News:  newsClient,
		Feeds: feedSource,
		Store: store,
		LLM:   llmClient,
		Cache: interpretationCache,
	})

	// Initialize scheduler
	sched := scheduler.NewScheduler()
	if err := sched.AddJob("queue-refill", cfg.QueueRefillSchedule, func(ctx context.Context) error {
		_, err := curator.RefillQueue(ctx)
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("Invalid QUEUE_REFILL_SCHEDULE")
	}
	if err := sched.AddJob("interpretation-warmup", cfg.WarmupSchedule, func(ctx context.Context) error {
		_, err := curator.WarmInterpretations(ctx, cfg.WarmupLimit)
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("Invalid WARMUP_SCHEDULE")
	}

	apiServer := api.NewServer(api.Deps{
		Curator: curator,
		Auth: auth.NewManager(auth.Config{
			Password:     cfg.AdminPassword,
			Secret:       cfg.AdminSessionSecret,
			Duration:     cfg.SessionDuration,
			SecureCookie: cfg.CookieSecure,
		}),
		Store:     store,
		Cache:     interpretationCache,
		Extractor: extract.NewExtractor(),
		Scheduler: sched,
	}, cfg.HTTPAddr)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start all services
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server error")
		}
	}()

	sched.Start()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Msg("Spiritual Reflections running")

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
	sched.Stop()

	log.Info().Msg("Spiritual Reflections stopped")
}
