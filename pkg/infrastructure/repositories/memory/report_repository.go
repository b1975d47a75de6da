package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// ReportRepository provides in-memory monthly report storage
type ReportRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.ReportRepository = (*ReportRepository)(nil)

// GetReport returns the report for a month
func (r *ReportRepository) GetReport(ctx context.Context, month, year int) (*entities.MonthlyReport, error) {
	var found entities.MonthlyReport
	err := r.store.view(func(st *state) error {
		report, ok := st.reports[period{month: month, year: year}]
		if !ok {
			return entities.NewNotFoundError("monthly report", fmt.Sprintf("%04d-%02d", year, month))
		}
		found = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// UpsertReport overwrites the report for its month, keeping id and creation time
func (r *ReportRepository) UpsertReport(ctx context.Context, report *entities.MonthlyReport) error {
	return r.store.update(func(st *state) error {
		key := period{month: report.Month, year: report.Year}
		now := r.store.now()
		if existing, ok := st.reports[key]; ok {
			report.ID = existing.ID
			report.CreatedAt = existing.CreatedAt
		} else {
			st.seq.report++
			report.ID = entities.ReportID(st.seq.report)
			report.CreatedAt = now
		}
		report.UpdatedAt = now
		st.reports[key] = *report
		return nil
	})
}

// AlertRepository provides in-memory alert storage
type AlertRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.AlertRepository = (*AlertRepository)(nil)

// CreateAlert appends an alert and assigns its id
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *entities.Alert) error {
	return r.store.update(func(st *state) error {
		st.seq.alert++
		alert.ID = entities.AlertID(st.seq.alert)
		alert.CreatedAt = r.store.now()
		st.alerts = append(st.alerts, copyAlert(*alert))
		return nil
	})
}

// GetAlert returns an alert by id
func (r *AlertRepository) GetAlert(ctx context.Context, id entities.AlertID) (*entities.Alert, error) {
	var found *entities.Alert
	err := r.store.view(func(st *state) error {
		for _, alert := range st.alerts {
			if alert.ID == id {
				c := copyAlert(alert)
				found = &c
				return nil
			}
		}
		return entities.NewNotFoundError("alert", id)
	})
	return found, err
}

// ListAlerts returns alerts newest first
func (r *AlertRepository) ListAlerts(ctx context.Context, unreadOnly bool, page repositories.Page) ([]*entities.Alert, error) {
	alerts := make([]*entities.Alert, 0)
	err := r.store.view(func(st *state) error {
		for _, alert := range st.alerts {
			if unreadOnly && alert.IsRead {
				continue
			}
			c := copyAlert(alert)
			alerts = append(alerts, &c)
		}
		return nil
	})
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ID > alerts[j].ID
	})
	return paginate(alerts, page), err
}

// MarkRead flags an alert as read
func (r *AlertRepository) MarkRead(ctx context.Context, id entities.AlertID) (*entities.Alert, error) {
	var found *entities.Alert
	err := r.store.update(func(st *state) error {
		for i := range st.alerts {
			if st.alerts[i].ID == id {
				st.alerts[i].IsRead = true
				c := copyAlert(st.alerts[i])
				found = &c
				return nil
			}
		}
		return entities.NewNotFoundError("alert", id)
	})
	return found, err
}

// HasUnreadForIngredient reports whether an unread alert of kind exists for the ingredient
func (r *AlertRepository) HasUnreadForIngredient(ctx context.Context, kind entities.AlertKind, ingredientID entities.IngredientID) (bool, error) {
	found := false
	err := r.store.view(func(st *state) error {
		for _, alert := range st.alerts {
			if alert.Kind == kind && !alert.IsRead && alert.RelatedIngredientID != nil && *alert.RelatedIngredientID == ingredientID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}
