package postgres

import (
	"context"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository stores monthly reports
type ReportRepository struct {
	db *gorm.DB
}

var _ repositories.ReportRepository = (*ReportRepository)(nil)

// GetReport returns the stored report for a month
func (r *ReportRepository) GetReport(ctx context.Context, month, year int) (*entities.MonthlyReport, error) {
	var m reportModel
	err := r.db.WithContext(ctx).Where("month = ? AND year = ?", month, year).First(&m).Error
	if err != nil {
		return nil, translate(err, "monthly report", map[string]int{"month": month, "year": year})
	}
	return m.toEntity(), nil
}

// UpsertReport overwrites the totals of an existing (month, year) row
func (r *ReportRepository) UpsertReport(ctx context.Context, report *entities.MonthlyReport) error {
	m := reportModel{
		Month:                 report.Month,
		Year:                  report.Year,
		TotalPortionsServed:   report.TotalPortionsServed,
		TotalPortionsPossible: report.TotalPortionsPossible,
		DifferencePercentage:  report.DifferencePercentage,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_portions_served",
			"total_portions_possible",
			"difference_percentage",
			"updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return translate(err, "monthly report", nil)
	}

	stored, err := r.GetReport(ctx, report.Month, report.Year)
	if err != nil {
		return err
	}
	*report = *stored
	return nil
}

// AlertRepository stores alerts
type AlertRepository struct {
	db *gorm.DB
}

var _ repositories.AlertRepository = (*AlertRepository)(nil)

// CreateAlert inserts an alert and sets its id
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *entities.Alert) error {
	m := toAlertModel(alert)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "alert", nil)
	}
	created, err := m.toEntity()
	if err != nil {
		return err
	}
	*alert = *created
	return nil
}

// GetAlert returns an alert by id
func (r *AlertRepository) GetAlert(ctx context.Context, id entities.AlertID) (*entities.Alert, error) {
	var m alertModel
	if err := r.db.WithContext(ctx).First(&m, int64(id)).Error; err != nil {
		return nil, translate(err, "alert", id)
	}
	return m.toEntity()
}

// ListAlerts returns alerts newest first
func (r *AlertRepository) ListAlerts(ctx context.Context, unreadOnly bool, page repositories.Page) ([]*entities.Alert, error) {
	db := r.db.WithContext(ctx).Model(&alertModel{})
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var models []alertModel
	if err := paginate(db.Order("created_at DESC, id DESC"), page).Find(&models).Error; err != nil {
		return nil, translate(err, "alert", nil)
	}

	result := make([]*entities.Alert, 0, len(models))
	for _, m := range models {
		alert, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		result = append(result, alert)
	}
	return result, nil
}

// MarkRead flags an alert as read and returns it
func (r *AlertRepository) MarkRead(ctx context.Context, id entities.AlertID) (*entities.Alert, error) {
	result := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ?", int64(id)).Update("is_read", true)
	if result.Error != nil {
		return nil, translate(result.Error, "alert", id)
	}
	if result.RowsAffected == 0 {
		return nil, entities.NewNotFoundError("alert", id)
	}
	return r.GetAlert(ctx, id)
}

// HasUnreadForIngredient reports whether an unread alert of kind exists for the ingredient
func (r *AlertRepository) HasUnreadForIngredient(ctx context.Context, kind entities.AlertKind, ingredientID entities.IngredientID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&alertModel{}).
		Where("alert_type = ? AND related_ingredient_id = ? AND is_read = ?", kind.String(), int64(ingredientID), false).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "alert", nil)
	}
	return count > 0, nil
}
