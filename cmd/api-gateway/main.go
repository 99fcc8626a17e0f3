package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/config"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/gateway"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var resolver gateway.Resolver
	if cfg.ConsulAddr != "" {
		consul, err := discovery.NewConsulClient(cfg.ConsulAddr, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to Consul, using fallback URL")
		} else {
			resolver = consul
		}
	}

	gw := gateway.New(resolver, map[string]string{cfg.ServiceName: cfg.OrderAPIURL}, logger)
	go gw.Watch(ctx, 10*time.Second)

	srv := &http.Server{
		Addr:    ":" + cfg.GatewayPort,
		Handler: gw.Router(cfg.ServiceName, handlers.RequestLogger(logger)),
	}

	go func() {
		logger.WithField("port", cfg.GatewayPort).Info("API gateway starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Gateway failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Gateway forced to shutdown")
	}
}
