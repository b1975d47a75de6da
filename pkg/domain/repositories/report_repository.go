package repositories

import (
	"context"

	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// ReportRepository stores monthly report snapshots
type ReportRepository interface {
	GetReport(ctx context.Context, month, year int) (*entities.MonthlyReport, error)
	// UpsertReport inserts or overwrites the report for its (month, year) and sets its id
	UpsertReport(ctx context.Context, report *entities.MonthlyReport) error
}

// AlertRepository stores alerts
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert *entities.Alert) error
	GetAlert(ctx context.Context, id entities.AlertID) (*entities.Alert, error)
	ListAlerts(ctx context.Context, unreadOnly bool, page Page) ([]*entities.Alert, error)
	MarkRead(ctx context.Context, id entities.AlertID) (*entities.Alert, error)
	HasUnreadForIngredient(ctx context.Context, kind entities.AlertKind, ingredientID entities.IngredientID) (bool, error)
}
