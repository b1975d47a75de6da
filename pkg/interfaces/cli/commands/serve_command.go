package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/vsinha/kitchen/pkg/infrastructure/discovery"
	"github.com/vsinha/kitchen/pkg/interfaces/api"
	"go.uber.org/zap"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	ShutdownTimeout time.Duration
}

// ServeCommand runs the HTTP API and the low-stock sweeper until ctx is cancelled
type ServeCommand struct {
	config ServeConfig
	app    *App
}

// NewServeCommand creates a new serve command
func NewServeCommand(config ServeConfig, app *App) *ServeCommand {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 15 * time.Second
	}
	return &ServeCommand{config: config, app: app}
}

// Handler builds the CORS-wrapped API handler
func (c *ServeCommand) Handler() http.Handler {
	if c.app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(c.app.Services, c.app.Logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   c.app.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return corsHandler.Handler(router)
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.app.Config
	logger := c.app.Logger

	if cfg.AdminPassword != "" {
		if _, err := c.app.Services.Auth.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := c.app.Services.Sweeper.Start(sweepCtx)
	// the store is closed after Execute returns, so no sweep may outlive it
	defer func() {
		stopSweep()
		<-sweepDone
	}()

	deregister, err := c.register()
	if err != nil {
		return err
	}
	defer deregister()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting kitchen service", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	stopSweep()
	<-sweepDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.config.ShutdownTimeout)
	defer cancel()

	c.app.Services.Hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// register announces the service to Consul when an address is configured and
// returns the matching deregistration
func (c *ServeCommand) register() (func(), error) {
	cfg := c.app.Config
	if cfg.ConsulAddr == "" {
		return func() {}, nil
	}

	client, err := discovery.NewConsulClient(cfg.ConsulAddr)
	if err != nil {
		return nil, err
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}
	if err := client.Register(cfg.ServiceID, host, cfg.HTTPPort); err != nil {
		return nil, err
	}
	c.app.Logger.Info("registered with consul", zap.String("service_id", cfg.ServiceID))

	return func() {
		if err := client.Deregister(cfg.ServiceID); err != nil {
			c.app.Logger.Warn("failed to deregister service", zap.Error(err))
		}
	}, nil
}
