package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"wmslink/internal/pkg/bootstrap"
	"wmslink/internal/pkg/config"
	"wmslink/internal/pkg/rabbitmq"
	feedapp "wmslink/internal/service/filefeed/application"
	feedinfra "wmslink/internal/service/filefeed/infrastructure"
	orderapp "wmslink/internal/service/order/application"
	orderdomain "wmslink/internal/service/order/domain"
	orderinfra "wmslink/internal/service/order/infrastructure"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	conn, err := rabbitmq.Dial(rabbitmq.Config{
		URL:      cfg.Broker.URL,
		Attempts: cfg.Broker.ConnectAttempts,
		Backoff:  cfg.Broker.ConnectBackoff.Std(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("broker bootstrap failed")
	}
	pool := rabbitmq.NewConnectionPool(conn, rabbitmq.DefaultPoolSize())
	publisher := rabbitmq.NewPublisher(pool, cfg.Broker.Exchange)

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := orderinfra.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if err := feedinfra.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate audit table")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	blob, err := feedinfra.NewMinioBlobFetcher(cfg.Blob.Endpoint, cfg.Blob.AccessKey, cfg.Blob.SecretKey, cfg.Blob.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("blob bootstrap failed")
	}

	refs := orderapp.NewReferenceValidator(
		orderinfra.NewCachedCustomerRepository(orderinfra.NewGormCustomerRepository(db), rdb, cfg.Redis.TTL.Std()),
		orderinfra.NewCachedProductRepository(orderinfra.NewGormProductRepository(db), rdb, cfg.Redis.TTL.Std()),
	)

	gate := feedapp.NewIngestionGate(
		orderdomain.SalesOrder,
		blob,
		feedinfra.NewGormIncomingLogRepository(db),
		orderinfra.NewGormOrderRepository(db),
		refs,
		publisher,
		cfg.Feed.Container,
		cfg.Feed.Path,
	)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Feed.Schedule, func() { gate.Run(ctx) }); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Feed.Schedule).Msg("invalid feed schedule")
	}
	scheduler.Start()
	log.Info().Str("schedule", cfg.Feed.Schedule).Msg("feed poller scheduled")

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: "file-poller",
		Addr:        cfg.HTTP.Addr,
		OnShutdown: func(shutdownCtx context.Context) {
			cancel()
			stopped := scheduler.Stop()
			select {
			case <-stopped.Done():
			case <-shutdownCtx.Done():
			}
			pool.Close()
			if err := conn.Close(); err != nil {
				log.Error().Err(err).Msg("broker close failed")
			}
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close failed")
			}
		},
	})
}
