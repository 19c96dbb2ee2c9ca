package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pamlee/kitchen/internal/auth"
	"github.com/pamlee/kitchen/internal/catalog"
	"github.com/pamlee/kitchen/internal/config"
	"github.com/pamlee/kitchen/internal/httpx"
	kafkax "github.com/pamlee/kitchen/internal/kafka"
	"github.com/pamlee/kitchen/internal/mongox"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/postgres"
	"github.com/pamlee/kitchen/internal/redisx"
	"github.com/pamlee/kitchen/internal/users"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// storage
	var (
		orderStore   orders.Store
		productStore catalog.Store
		userStore    users.Store
		closeStore   func()
	)
	switch cfg.StorageDriver {
	case "mongo":
		client, err := mongox.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect")
		}
		closeStore = func() { _ = client.Disconnect(context.Background()) }

		om := &orders.MongoStore{Coll: mongox.Collection(client, cfg.MongoDatabase, "orders")}
		pm := &catalog.MongoStore{Coll: mongox.Collection(client, cfg.MongoDatabase, "products")}
		um := &users.MongoStore{Coll: mongox.Collection(client, cfg.MongoDatabase, "users")}
		for _, ensure := range []func(context.Context) error{om.EnsureIndexes, pm.EnsureIndexes, um.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				log.Fatal().Err(err).Msg("mongo indexes")
			}
		}
		orderStore, productStore, userStore = om, pm, um
	default:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		closeStore = pool.Close
		orderStore = &orders.PostgresStore{DB: pool}
		productStore = &catalog.PostgresStore{DB: pool}
		userStore = &users.PostgresStore{DB: pool}
	}
	defer closeStore()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024, log)
	prod.Start(ctx)

	// services
	orderSvc := orders.NewService(orderStore, prod, cfg.ServiceName, log)
	productSvc := catalog.NewService(productStore, log)
	userSvc := users.NewService(userStore, log)
	tokens := &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}

	if err := catalog.Seed(ctx, productStore); err != nil {
		log.Fatal().Err(err).Msg("seed products")
	}
	if err := userSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	// handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: userSvc, Tokens: tokens, Log: log}).Register(router)
	(&httpx.ProductsHandler{Catalog: productSvc, Tokens: tokens}).Register(router)
	(&httpx.OrdersHandler{Orders: orderSvc, Catalog: productSvc, Tokens: tokens, Redis: rdb, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox, flush remaining events
	cancel()
	prod.WaitClosed()
}
