package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pamlee/kitchen/internal/config"
	kafkax "github.com/pamlee/kitchen/internal/kafka"
	"github.com/pamlee/kitchen/internal/notifier"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/redisx"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "kitchen-notifier").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{Redis: rdb, ServiceName: "kitchen-notifier", Log: log}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, "kitchen-notifier", orders.TopicOrderEvents, 4, log)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		cancel()
	}()

	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", orders.TopicOrderEvents).Msg("consuming order events")
	if err := cons.Start(ctx, svc.HandleEvent); err != nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}
