package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/blob"
	"studio/internal/fal"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/middleware"
	"studio/internal/prompt"
	"studio/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	gateway, err := fal.NewClient(fal.Options{
		APIKey:           cfg.FalAPIKey,
		QueueBaseURL:     cfg.FalQueueBaseURL,
		SyncBaseURL:      cfg.FalSyncBaseURL,
		RestBaseURL:      cfg.FalRestBaseURL,
		SubscribeTimeout: cfg.SubscribeTimeout,
		Logger:           &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure provider client")
	}

	// The memory store is the default; DATABASE_URL switches to the shared
	// store so webhooks and polls can land on different replicas.
	var results store.ResultStore = store.NewMemory(cfg.ResultCacheTTL)
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		results = store.NewPostgres(pool)
		logger.Info().Msg("using shared postgres result store")
	}

	var staging *blob.Client
	if cfg.BlobToken != "" {
		staging, err = blob.NewClient(blob.Options{Token: cfg.BlobToken, BaseURL: cfg.BlobBaseURL})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure staging client")
		}
	}

	var enhancer prompt.Enhancer = prompt.NewStaticEnhancer()
	if cfg.OpenAIAPIKey != "" {
		enhancer, err = prompt.NewOpenAIEnhancer(prompt.OpenAIOptions{
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.OpenAIModel,
			BaseURL:  cfg.OpenAIBaseURL,
			Fallback: prompt.NewStaticEnhancer(),
			OnFallback: func(reason string, err error) {
				logger.Warn().Err(err).Str("reason", reason).Msg("copilot fell back to static enhancer")
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure copilot")
		}
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Gateway:  gateway,
		Results:  results,
		Blob:     staging,
		Enhancer: enhancer,
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
