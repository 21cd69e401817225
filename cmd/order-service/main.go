package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"wmslink/internal/pkg/bootstrap"
	"wmslink/internal/pkg/config"
	"wmslink/internal/pkg/rabbitmq"
	"wmslink/internal/service/order/application"
	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/infrastructure"
	"wmslink/internal/service/order/interfaces"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// Broker connectivity is a startup requirement: if the retry budget is
	// exhausted the process must not come up healthy.
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
	if err := infrastructure.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	orders := infrastructure.NewGormOrderRepository(db)
	customerStore := infrastructure.NewGormCustomerRepository(db)
	productStore := infrastructure.NewGormProductRepository(db)
	customers := infrastructure.NewCachedCustomerRepository(customerStore, rdb, cfg.Redis.TTL.Std())
	products := infrastructure.NewCachedProductRepository(productStore, rdb, cfg.Redis.TTL.Std())
	refs := application.NewReferenceValidator(customers, products)

	sales := application.NewOrderService(domain.SalesOrder, orders, refs, publisher)
	purchase := application.NewOrderService(domain.PurchaseOrder, orders, refs, publisher)
	handler := interfaces.NewOrderHandler(sales, purchase, nil)

	// Master-data writes go to the store and evict the cached read side.
	refWrites := application.NewReferenceService(customerStore, productStore, customers, products)
	refHandler := interfaces.NewReferenceHandler(refWrites, nil)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: "order-service",
		Addr:        cfg.HTTP.Addr,
		RegisterHandlers: func(app bootstrap.AppCtx) {
			handler.Register(app.Router)
			refHandler.Register(app.Router)
		},
		OnShutdown: func(ctx context.Context) {
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
