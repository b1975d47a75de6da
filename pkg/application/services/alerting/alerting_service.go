// Package alerting persists alerts and fans them out to live subscribers.
package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

// Service is the alert emitter. Publication is asynchronous; only persistence
// can fail, and callers treat that as non-fatal.
type Service struct {
	alerts    repositories.AlertRepository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewService creates an alert emitter
func NewService(alerts repositories.AlertRepository, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{alerts: alerts, publisher: publisher, logger: logger}
}

// Emit persists an alert and pushes it to subscribers
func (s *Service) Emit(ctx context.Context, alert *entities.Alert) error {
	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	s.publisher.Publish(events.NewAlertRaised(*alert))
	s.logger.Info("alert raised",
		zap.String("alert_type", alert.Kind.String()),
		zap.Int64("alert_id", int64(alert.ID)),
	)
	return nil
}

// LowStock pushes a low-stock notice for the ingredient and records an alert
// unless an unread one already exists for it
func (s *Service) LowStock(ctx context.Context, ingredient entities.Ingredient) error {
	s.publisher.Publish(events.NewStockLow(ingredient))

	exists, err := s.alerts.HasUnreadForIngredient(ctx, entities.AlertIngredientLow, ingredient.ID)
	if err != nil {
		return fmt.Errorf("failed to check existing alerts: %w", err)
	}
	if exists {
		return nil
	}

	id := ingredient.ID
	return s.Emit(ctx, &entities.Alert{
		Kind:                entities.AlertIngredientLow,
		Message:             LowStockMessage(ingredient),
		RelatedIngredientID: &id,
	})
}

// SuspiciousUsage records an alert referencing the report
func (s *Service) SuspiciousUsage(ctx context.Context, report entities.MonthlyReport) error {
	id := report.ID
	return s.Emit(ctx, &entities.Alert{
		Kind:            entities.AlertUsageSuspicious,
		Message:         SuspiciousUsageMessage(report),
		RelatedReportID: &id,
	})
}

// List returns alerts newest first
func (s *Service) List(ctx context.Context, unreadOnly bool, page repositories.Page) ([]*entities.Alert, error) {
	return s.alerts.ListAlerts(ctx, unreadOnly, page)
}

// MarkRead flags an alert as read
func (s *Service) MarkRead(ctx context.Context, id entities.AlertID) (*entities.Alert, error) {
	return s.alerts.MarkRead(ctx, id)
}

func LowStockMessage(ingredient entities.Ingredient) string {
	return fmt.Sprintf("Low stock alert: %s is below minimum quantity (%sg < %sg)",
		ingredient.Name, ingredient.Quantity, ingredient.MinQuantity)
}

func SuspiciousUsageMessage(report entities.MonthlyReport) string {
	return fmt.Sprintf("Suspicious usage detected in %s %d: %s%% difference",
		time.Month(report.Month), report.Year, report.DifferencePercentage.StringFixed(2))
}
