package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"wmslink/internal/pkg/bootstrap"
	"wmslink/internal/pkg/config"
	"wmslink/internal/pkg/rabbitmq"
	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/infrastructure"
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

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := infrastructure.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	handler := infrastructure.NewOrderPersistHandler(infrastructure.NewGormOrderRepository(db))

	// One consumer per order-type queue, structurally identical, bound by
	// event kind.
	consumers := []*rabbitmq.Consumer{
		rabbitmq.NewConsumer(pool, cfg.Broker.Exchange, domain.EventSalesOrderCreated, handler),
		rabbitmq.NewConsumer(pool, cfg.Broker.Exchange, domain.EventPurchaseOrderCreated, handler),
	}
	for _, c := range consumers {
		if err := c.Start(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("start consumer")
		}
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: "order-consumer",
		Addr:        cfg.HTTP.Addr,
		OnShutdown: func(ctx context.Context) {
			for _, c := range consumers {
				c.Stop()
			}
			pool.Close()
			if err := conn.Close(); err != nil {
				log.Error().Err(err).Msg("broker close failed")
			}
		},
	})
}
