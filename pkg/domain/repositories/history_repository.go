package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// DailyCount is a per-day integer total; Day is midnight UTC
type DailyCount struct {
	Day   time.Time
	Total int64
}

// DailyAmount is a per-day gram total; Day is midnight UTC
type DailyAmount struct {
	Day   time.Time
	Total decimal.Decimal
}

// RecipePortions is the number of portions served of one recipe
type RecipePortions struct {
	RecipeID entities.RecipeID
	Portions int64
}

// IngredientMovement is the grams consumed by servings and received by deliveries
type IngredientMovement struct {
	IngredientID entities.IngredientID
	Used         decimal.Decimal
	Delivered    decimal.Decimal
}

// HistoryRepository aggregates servings and deliveries over [from, to).
// Days without activity are omitted; callers fill gaps.
type HistoryRepository interface {
	PortionsServed(ctx context.Context, from, to time.Time) (int64, error)
	PortionsByRecipe(ctx context.Context, from, to time.Time) ([]RecipePortions, error)
	DailyPortions(ctx context.Context, recipeID entities.RecipeID, from, to time.Time) ([]DailyCount, error)
	DailyIngredientUsage(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]DailyAmount, error)
	DailyDeliveries(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]DailyAmount, error)
	IngredientMovements(ctx context.Context, from, to time.Time) ([]IngredientMovement, error)
}
