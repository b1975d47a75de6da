package events

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

const (
	InventoryUpdatedEvent = "inventory.updated"
	StockLowEvent         = "stock.low"

	ServingRecordedEvent  = "serving.recorded"
	DeliveryRecordedEvent = "delivery.recorded"

	AlertRaisedEvent     = "alert.raised"
	ReportGeneratedEvent = "report.generated"
)

type InventoryUpdated struct {
	IngredientID entities.IngredientID `json:"ingredient_id"`
	Name         string                `json:"ingredient_name"`
	Quantity     decimal.Decimal       `json:"quantity"`
	MinQuantity  decimal.Decimal       `json:"min_quantity"`
	Reason       string                `json:"reason"`
}

type StockLow struct {
	IngredientID entities.IngredientID `json:"ingredient_id"`
	Name         string                `json:"ingredient_name"`
	Quantity     decimal.Decimal       `json:"current_quantity"`
	MinQuantity  decimal.Decimal       `json:"min_quantity"`
}

type ServingRecorded struct {
	ServingID entities.ServingID `json:"serving_id"`
	RecipeID  entities.RecipeID  `json:"meal_id"`
	Portions  int64              `json:"portions"`
	ServedBy  entities.UserID    `json:"served_by"`
	ServedAt  time.Time          `json:"served_at"`
}

type DeliveryRecorded struct {
	DeliveryID   entities.DeliveryID   `json:"delivery_id"`
	IngredientID entities.IngredientID `json:"ingredient_id"`
	Quantity     decimal.Decimal       `json:"quantity"`
	CreatedBy    entities.UserID       `json:"created_by"`
	DeliveredAt  time.Time             `json:"delivery_date"`
}

type AlertRaised struct {
	AlertID   entities.AlertID `json:"alert_id"`
	AlertType string           `json:"alert_type"`
	Message   string           `json:"message"`
	RelatedID int64            `json:"related_id,omitempty"`
}

type ReportGenerated struct {
	ReportID              entities.ReportID `json:"report_id"`
	Month                 int               `json:"month"`
	Year                  int               `json:"year"`
	TotalPortionsServed   int64             `json:"total_portions_served"`
	TotalPortionsPossible int64             `json:"total_portions_possible"`
	DifferencePercentage  decimal.Decimal   `json:"difference_percentage"`
}

func ingredientStream(id entities.IngredientID) string {
	return fmt.Sprintf("ingredient-%d", id)
}

// NewInventoryUpdated announces an ingredient's new stock level
func NewInventoryUpdated(ingredient entities.Ingredient, reason string) Event {
	return NewEvent(InventoryUpdatedEvent, ingredientStream(ingredient.ID), InventoryUpdated{
		IngredientID: ingredient.ID,
		Name:         ingredient.Name,
		Quantity:     ingredient.Quantity,
		MinQuantity:  ingredient.MinQuantity,
		Reason:       reason,
	})
}

// NewStockLow announces an ingredient below its minimum
func NewStockLow(ingredient entities.Ingredient) Event {
	return NewEvent(StockLowEvent, ingredientStream(ingredient.ID), StockLow{
		IngredientID: ingredient.ID,
		Name:         ingredient.Name,
		Quantity:     ingredient.Quantity,
		MinQuantity:  ingredient.MinQuantity,
	})
}

func NewServingRecorded(serving entities.Serving) Event {
	return NewEvent(ServingRecordedEvent, fmt.Sprintf("meal-%d", serving.RecipeID), ServingRecorded{
		ServingID: serving.ID,
		RecipeID:  serving.RecipeID,
		Portions:  serving.Portions,
		ServedBy:  serving.ServedBy,
		ServedAt:  serving.ServedAt,
	})
}

func NewDeliveryRecorded(delivery entities.Delivery) Event {
	return NewEvent(DeliveryRecordedEvent, ingredientStream(delivery.IngredientID), DeliveryRecorded{
		DeliveryID:   delivery.ID,
		IngredientID: delivery.IngredientID,
		Quantity:     delivery.Quantity,
		CreatedBy:    delivery.CreatedBy,
		DeliveredAt:  delivery.DeliveredAt,
	})
}

func NewAlertRaised(alert entities.Alert) Event {
	return NewEvent(AlertRaisedEvent, fmt.Sprintf("alert-%d", alert.ID), AlertRaised{
		AlertID:   alert.ID,
		AlertType: alert.Kind.String(),
		Message:   alert.Message,
		RelatedID: alert.RelatedID(),
	})
}

func NewReportGenerated(report entities.MonthlyReport) Event {
	return NewEvent(ReportGeneratedEvent, fmt.Sprintf("report-%04d-%02d", report.Year, report.Month), ReportGenerated{
		ReportID:              report.ID,
		Month:                 report.Month,
		Year:                  report.Year,
		TotalPortionsServed:   report.TotalPortionsServed,
		TotalPortionsPossible: report.TotalPortionsPossible,
		DifferencePercentage:  report.DifferencePercentage,
	})
}
