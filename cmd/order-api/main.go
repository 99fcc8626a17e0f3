package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/app"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/config"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/logging"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer backend.Close()

	orderPublisher, closePublisher, err := app.OpenPublisher(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect event broker")
	}
	defer closePublisher()

	customerService := service.NewCustomerService(backend.Store.Customers, logger)
	productService := service.NewProductService(backend.Store.Products, logger)
	orderService := service.NewOrderService(backend.Store, orderPublisher, logger)

	router := handlers.NewRouter(handlers.Handlers{
		Health:    handlers.NewHealthHandler(cfg.ServiceName, backend.Checks),
		Customers: handlers.NewCustomerHandler(customerService),
		Products:  handlers.NewProductHandler(productService),
		Orders:    handlers.NewOrderHandler(orderService),
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var consul *discovery.ConsulClient
	if cfg.ConsulAddr != "" {
		consul, err = discovery.NewConsulClient(cfg.ConsulAddr, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Consul")
		}
		port, _ := strconv.Atoi(cfg.Port)
		err = consul.Register(discovery.ServiceConfig{
			Name: cfg.ServiceName,
			ID:   cfg.ServiceID,
			Port: port,
			Tags: []string{"api", "orders", "products", "customers"},
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to register service")
		}
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"store":  cfg.StoreDriver,
			"broker": cfg.EventBroker,
		}).Info("Starting order API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	if consul != nil {
		if err := consul.Deregister(cfg.ServiceID); err != nil {
			logger.WithError(err).Warn("Failed to deregister service")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}
