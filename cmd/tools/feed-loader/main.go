// feed-loader pulls OCDS releases from the eTenders feed and pushes
// every release through the sync engine. Run it from cron or by hand.
package main

import (
	"context"
	"flag"
	"os"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/database"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/feed"
	"tender-insight-hub/internal/store/docstore"
	"tender-insight-hub/internal/store/metastore"
	"tender-insight-hub/internal/tender/sync"
)

func main() {
	dateFrom := flag.String("from", "", "only fetch releases published on or after this date (YYYY-MM-DD)")
	dateTo := flag.String("to", "", "only fetch releases published on or before this date (YYYY-MM-DD)")
	reconcile := flag.Bool("reconcile", false, "run a reconciliation pass after loading")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Error("postgres connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.Error("elasticsearch connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
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

	engine := sync.NewEngine(docs, meta, log)
	client := feed.NewClient(cfg.Feed, log)

	total, err := client.FetchAll(ctx, *dateFrom, *dateTo, func(release map[string]interface{}) error {
		_, err := engine.Upsert(ctx, release)
		return err
	})
	if err != nil {
		log.Error("feed load aborted", map[string]interface{}{
			"loaded": total,
			"error":  err.Error(),
		})
		os.Exit(1)
	}
	log.Info("feed load completed", map[string]interface{}{"loaded": total})

	if *reconcile {
		result, err := engine.Reconcile(ctx)
		if err != nil {
			log.Error("reconciliation failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		log.Info("reconciliation completed", map[string]interface{}{
			"projected": result.Projected,
			"removed":   result.Removed,
			"failed":    result.Failed,
		})
	}
}
