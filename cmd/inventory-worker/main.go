package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/app"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/config"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/logging"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/publisher"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer backend.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	inventoryConsumer := consumer.NewInventoryConsumer(backend.Store.Products, cfg.LowStockThreshold, logger)

	// Every topic the API publishes is drained here so no queue grows unbounded.
	var wg sync.WaitGroup
	for _, queue := range publisher.Topics {
		if err := rabbitMQ.DeclareQueue(queue); err != nil {
			logger.WithError(err).Fatal("Failed to declare queue")
		}
		messages, err := rabbitMQ.Consume(queue)
		if err != nil {
			logger.WithError(err).Fatal("Failed to consume messages")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			inventoryConsumer.ProcessOrderEvents(ctx, messages)
		}()
	}

	logger.WithField("threshold", cfg.LowStockThreshold).Info("Inventory worker started")
	wg.Wait()
	logger.Info("Inventory worker stopped")
}
