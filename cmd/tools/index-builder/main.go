// cmd/tools/index-builder/main.go
//
// Rebuilds the cuisine search index from the Postgres catalog. The index
// is a disposable projection; dropping and recreating it is the normal
// refresh path.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dining-concierge/internal/catalog"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
	"dining-concierge/internal/search"
)

func main() {
	keep := flag.Bool("keep", false, "Reindex into the existing index instead of dropping it first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error pinging Postgres: %v\n", err)
		os.Exit(1)
	}

	store := catalog.NewStore(pg.DB, log)
	index := search.NewIndex(esClient.Client, cfg.Search.Index, log)

	if !*keep {
		if err := index.DeleteIndex(ctx); err != nil {
			fmt.Printf("Error dropping index: %v\n", err)
			os.Exit(1)
		}
	}
	if err := index.EnsureIndex(ctx); err != nil {
		fmt.Printf("Error creating index: %v\n", err)
		os.Exit(1)
	}

	records, err := store.ScanAll(ctx)
	if err != nil {
		fmt.Printf("Error scanning catalog: %v\n", err)
		os.Exit(1)
	}

	indexed := 0
	for _, rec := range records {
		entry := models.IndexEntry{
			RestaurantID: rec.BusinessID,
			Cuisine:      rec.Cuisine,
		}
		if err := index.Put(ctx, entry); err != nil {
			zapLog.Error("indexing failed", zap.String("business_id", rec.BusinessID), zap.Error(err))
			continue
		}
		indexed++
	}

	count, err := index.Count(ctx)
	if err != nil {
		zapLog.Warn("index count unavailable", zap.Error(err))
		count = int64(indexed)
	}

	fmt.Printf("Indexed %d of %d catalog records (index now holds %d)\n", indexed, len(records), count)
}
