package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// DailyPortions is the number of portions served on one day
type DailyPortions struct {
	Date     time.Time
	Portions int64
}

// DailyGrams is a gram amount on one day
type DailyGrams struct {
	Date  time.Time
	Grams decimal.Decimal
}

// IngredientUsageSeries is the per-day consumption and delivery of one ingredient.
// Both series have one entry per day of the range.
type IngredientUsageSeries struct {
	IngredientID   entities.IngredientID
	IngredientName string
	Usage          []DailyGrams
	Deliveries     []DailyGrams
}

// MealServingSeries is the per-day portions served of one meal
type MealServingSeries struct {
	RecipeID   entities.RecipeID
	RecipeName string
	Servings   []DailyPortions
}

// MealSummary is one meal's activity in a month
type MealSummary struct {
	RecipeID      entities.RecipeID
	RecipeName    string
	TotalPortions int64
	Daily         []DailyPortions
}

// IngredientSummary is one ingredient's movement in a month
type IngredientSummary struct {
	IngredientID   entities.IngredientID
	IngredientName string
	TotalUsage     decimal.Decimal
	TotalDelivery  decimal.Decimal
}

// MonthlyReportDetail is a monthly report with its per-meal and per-ingredient breakdown
type MonthlyReportDetail struct {
	Report      entities.MonthlyReport
	MonthName   string
	Meals       []MealSummary
	Ingredients []IngredientSummary
}
