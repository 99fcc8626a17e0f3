// Package app builds the infrastructure shared by the commands from config.
package app

import (
	"context"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/config"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db/memory"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db/postgres"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
	"github.com/sirupsen/logrus"
)

// Backend is an opened store plus what the health check should ping.
type Backend struct {
	Store  db.Store
	Checks map[string]handlers.Pinger

	closers []func()
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// OpenBackend connects the configured store driver and, when REDIS_ADDR is
// set, puts the product cache in front of it.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	b := &Backend{Checks: make(map[string]handlers.Pinger)}

	switch cfg.StoreDriver {
	case config.StoreMongo:
		mongoDB, err := db.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { mongoDB.Close(context.Background()) })
		if err := mongoDB.EnsureIndexes(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Store = mongoDB.NewStore()
		b.Checks["mongodb"] = mongoDB

	case config.StorePostgres:
		pg, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { pg.Close() })
		if err := pg.Migrate(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Store = pg.NewStore()
		b.Checks["postgres"] = pg

	case config.StoreMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		b.Store = memory.NewStore()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL, logger)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { redisCache.Close() })
		b.Store.Products = db.NewCachedProductRepository(b.Store.Products, redisCache, logger)
		b.Checks["redis"] = redisCache
	}

	return b, nil
}

// OpenPublisher connects the configured event broker. It returns a nil
// publisher when events are disabled.
func OpenPublisher(cfg *config.Config, logger *logrus.Logger) (service.EventPublisher, func(), error) {
	var broker publisher.Broker
	closeFn := func() {}

	switch cfg.EventBroker {
	case config.BrokerNone, "":
		return nil, closeFn, nil

	case config.BrokerRabbitMQ:
		mq, err := messaging.NewRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, nil, err
		}
		broker, closeFn = mq, mq.Close

	case config.BrokerKafka:
		producer, err := messaging.NewKafkaProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		broker, closeFn = producer, func() { producer.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}

	pub, err := publisher.NewOrderPublisher(broker)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return pub, closeFn, nil
}
