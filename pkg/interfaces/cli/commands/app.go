package commands

import (
	"context"

	"github.com/vsinha/kitchen/pkg/application/services/alerting"
	"github.com/vsinha/kitchen/pkg/application/services/auth"
	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/application/services/reporting"
	"github.com/vsinha/kitchen/pkg/application/services/serving"
	"github.com/vsinha/kitchen/pkg/application/services/stock"
	"github.com/vsinha/kitchen/pkg/application/services/sweep"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	"github.com/vsinha/kitchen/pkg/infrastructure/config"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"github.com/vsinha/kitchen/pkg/infrastructure/messaging"
	"github.com/vsinha/kitchen/pkg/infrastructure/notify"
	"github.com/vsinha/kitchen/pkg/infrastructure/realtime"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/kitchen/pkg/interfaces/api"
	"go.uber.org/zap"
)

// App is the wired kitchen service shared by every command
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    repositories.Store
	Events   *events.Bus
	Services api.Services

	closers []func() error
}

// NewApp opens the configured store and builds the services on top of it.
// Kafka and SNS handlers are subscribed only when configured.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Store = store

	factor, err := cfg.PortionFactor()
	if err != nil {
		app.Close()
		return nil, err
	}
	threshold, err := cfg.Threshold()
	if err != nil {
		app.Close()
		return nil, err
	}

	bus := events.NewBus(logger)
	app.Events = bus

	hub := realtime.NewHub(logger)
	app.closers = append(app.closers, func() error { hub.Close(); return nil })
	bus.Subscribe([]string{events.AllEvents}, hub)

	if err := app.subscribeOutbound(ctx, bus); err != nil {
		app.Close()
		return nil, err
	}

	calculator := domain.NewPortionCalculator(domain.PortionPolicy{
		LimitingFactor: factor,
		MaxLimiting:    cfg.MaxLimiting,
	})
	alerts := alerting.NewService(store.Alerts(), bus, logger)

	app.Services = api.Services{
		Auth:      auth.NewService(store.Users(), cfg.JWTSecret, cfg.TokenTTL(), logger),
		Stock:     stock.NewService(store, alerts, bus, logger),
		Catalog:   catalog.NewService(store, calculator, logger),
		Serving:   serving.NewService(store, calculator, alerts, bus, logger),
		Reporting: reporting.NewService(store, calculator, alerts, bus, threshold, logger),
		Alerts:    alerts,
		Sweeper:   sweep.NewSweeper(store.Ingredients(), alerts, cfg.LowStockInterval, logger),
		Hub:       hub,
	}
	return app, nil
}

func (a *App) openStore(ctx context.Context) (repositories.Store, error) {
	if a.Config.StoreDriver == config.DriverMemory {
		a.Logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}

	store, err := postgres.Open(a.Config.DatabaseURL, a.Config.ReportingDatabaseURL, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if err := store.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return store, nil
}

func (a *App) subscribeOutbound(ctx context.Context, bus *events.Bus) error {
	if len(a.Config.KafkaBrokers) > 0 {
		publisher := messaging.NewKafkaPublisher(a.Config.KafkaBrokers, a.Config.KafkaTopic, a.Logger)
		a.closers = append(a.closers, publisher.Close)
		bus.Subscribe([]string{events.AllEvents}, publisher)
		a.Logger.Info("kafka publisher enabled", zap.Strings("brokers", a.Config.KafkaBrokers), zap.String("topic", a.Config.KafkaTopic))
	}

	if a.Config.SNSAlertTopicARN != "" {
		notifier, err := notify.NewSNSNotifier(ctx, a.Config.AWSRegion, a.Config.SNSAlertTopicARN, a.Logger)
		if err != nil {
			return err
		}
		bus.Subscribe([]string{events.AlertRaisedEvent}, notifier)
		a.Logger.Info("sns alert notifier enabled", zap.String("topic_arn", a.Config.SNSAlertTopicARN))
	}
	return nil
}

// Close waits for in-flight event handlers, then releases resources in
// reverse order of acquisition
func (a *App) Close() {
	if a.Events != nil {
		a.Events.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}
