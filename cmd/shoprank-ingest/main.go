// Command shoprank-ingest loads catalog and activity CSV exports into the
// store and backfills missing item embeddings.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/DominicD213/shoprank/internal/config"
	dbRedis "github.com/DominicD213/shoprank/internal/db/redis"
	"github.com/DominicD213/shoprank/internal/domain"
	hashEmb "github.com/DominicD213/shoprank/internal/embedder/hash"
	logpkg "github.com/DominicD213/shoprank/internal/logger"
	activityrepo "github.com/DominicD213/shoprank/internal/repository/activity"
	catalogrepo "github.com/DominicD213/shoprank/internal/repository/catalog"
	embeddingrepo "github.com/DominicD213/shoprank/internal/repository/embedding"
	openaiEmb "github.com/DominicD213/shoprank/internal/transport/openai"
	"github.com/DominicD213/shoprank/internal/usecase/ingest"
)

func main() {
	var (
		productsPath   = flag.String("products", "", "path to a products CSV export")
		activitiesPath = flag.String("activities", "", "path to an activities CSV export")
		ensureVectors  = flag.Bool("ensure-embeddings", false, "embed catalog items that have no stored vector")
	)
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *productsPath == "" && *activitiesPath == "" && !*ensureVectors {
		logger.Fatal("Nothing to do: pass -products, -activities or -ensure-embeddings")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	var embedder domain.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
	default:
		embedder, err = hashEmb.New(cfg.Embedding.Dimensions)
		if err != nil {
			logger.Fatal("Failed to create hash embedder", zap.Error(err))
		}
	}

	svc := ingest.New(
		catalogrepo.New(store),
		embeddingrepo.New(store),
		activityrepo.New(store),
		embedder,
		logger,
	)

	if *productsPath != "" {
		stats := importFile(ctx, logger, *productsPath, svc.ImportProducts)
		logger.Info("Products imported",
			zap.String("path", *productsPath),
			zap.Int("imported", stats.Imported),
			zap.Int("skipped", stats.Skipped))
	}

	if *activitiesPath != "" {
		stats := importFile(ctx, logger, *activitiesPath, svc.ImportActivities)
		logger.Info("Activities imported",
			zap.String("path", *activitiesPath),
			zap.Int("imported", stats.Imported),
			zap.Int("skipped", stats.Skipped))
	}

	if *ensureVectors {
		created, err := svc.EnsureEmbeddings(ctx)
		if err != nil {
			logger.Fatal("Failed to ensure embeddings", zap.Error(err))
		}
		logger.Info("Embeddings ensured", zap.Int("created", created))
	}
}

func importFile(
	ctx context.Context,
	logger *zap.Logger,
	path string,
	fn func(context.Context, io.Reader) (ingest.Stats, error),
) ingest.Stats {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open CSV", zap.String("path", path), zap.Error(err))
	}
	defer f.Close()

	stats, err := fn(ctx, f)
	if err != nil {
		logger.Fatal("Import failed", zap.String("path", path), zap.Error(err))
	}
	return stats
}
