package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pamlee/kitchen/internal/config"
	"github.com/pamlee/kitchen/internal/mongox"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/postgres"
	"github.com/rs/zerolog"
)

// cleanup removes order records that were written without a tracker id.
// Those are unreachable from the tracking endpoints and only skew stats.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "kitchen-cleanup").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store orders.Store
	switch cfg.StorageDriver {
	case "mongo":
		client, err := mongox.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		store = &orders.MongoStore{Coll: mongox.Collection(client, cfg.MongoDatabase, "orders")}
	default:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		defer pool.Close()
		store = &orders.PostgresStore{DB: pool}
	}

	n, err := store.DeleteInvalid(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cleanup failed")
	}
	log.Info().Int64("removed", n).Msg("invalid orders removed")
}
