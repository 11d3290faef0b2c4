package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tender-insight-hub/internal/api"
	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/database"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/observability"
	"tender-insight-hub/internal/profile"
	"tender-insight-hub/internal/store/docstore"
	"tender-insight-hub/internal/store/metastore"
	"tender-insight-hub/internal/tender/analytics"
	"tender-insight-hub/internal/tender/readiness"
	"tender-insight-hub/internal/tender/search"
	"tender-insight-hub/internal/tender/sync"
	"tender-insight-hub/internal/tender/workspace"
)

func main() {
	zapLog := logger.New("info", "json")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting tender insight hub", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Error("postgres connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		log.Error("postgres ping failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.Error("elasticsearch connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := es.Ping(); err != nil {
		log.Error("elasticsearch ping failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("redis connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn("redis unavailable, profile caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}

	meta := metastore.New(pg.GetDB(), log)
	if err := meta.Migrate(ctx); err != nil {
		log.Error("metadata migration failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	docs := docstore.New(es.Client, cfg.Database.Elasticsearch, log)
	if err := docs.EnsureIndices(ctx); err != nil {
		log.Error("index setup failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	engine := sync.NewEngine(docs, meta, log)
	searchSvc := search.NewService(meta, docs, cfg.Search, log)
	profileSvc := profile.NewService(docs, redisClient.GetClient(), log)
	readinessSvc := readiness.NewService(docs, docs, docs,
		redisClient.GetClient(), config.GetDuration(cfg.Cache.ProfileTTL), log)
	aggregator := analytics.New(pg.GetDB(), cfg.Analytics, log)
	workspaceSvc := workspace.NewService(docs, docs, docs, log)

	server := api.NewServer(api.Deps{
		Sync:      engine,
		Search:    searchSvc,
		Readiness: readinessSvc,
		Profiles:  profileSvc,
		Analytics: aggregator,
		Workspace: workspaceSvc,
		Obs:       obs,
		Logger:    log,
	})

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		if err := server.Start(cfg.HTTP.Address); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
