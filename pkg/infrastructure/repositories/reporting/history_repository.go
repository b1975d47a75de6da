// Package reporting answers the aggregate history queries behind monthly
// reports and usage charts with hand-written SQL over sqlx.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

const (
	portionsServedQuery = `
		SELECT COALESCE(SUM(portions), 0)
		FROM meal_servings
		WHERE served_at >= $1 AND served_at < $2`

	portionsByRecipeQuery = `
		SELECT meal_id, SUM(portions) AS portions
		FROM meal_servings
		WHERE served_at >= $1 AND served_at < $2
		GROUP BY meal_id
		ORDER BY portions DESC, meal_id`

	dailyPortionsQuery = `
		SELECT date_trunc('day', served_at AT TIME ZONE 'UTC') AS day, SUM(portions) AS total
		FROM meal_servings
		WHERE meal_id = $1 AND served_at >= $2 AND served_at < $3
		GROUP BY day
		ORDER BY day`

	dailyUsageQuery = `
		SELECT date_trunc('day', s.served_at AT TIME ZONE 'UTC') AS day, SUM(s.portions * mi.quantity) AS total
		FROM meal_servings s
		JOIN meal_ingredients mi ON mi.meal_id = s.meal_id
		WHERE mi.ingredient_id = $1 AND s.served_at >= $2 AND s.served_at < $3
		GROUP BY day
		ORDER BY day`

	dailyDeliveriesQuery = `
		SELECT date_trunc('day', delivery_date AT TIME ZONE 'UTC') AS day, SUM(quantity) AS total
		FROM ingredient_deliveries
		WHERE ingredient_id = $1 AND delivery_date >= $2 AND delivery_date < $3
		GROUP BY day
		ORDER BY day`

	ingredientMovementsQuery = `
		WITH used AS (
			SELECT mi.ingredient_id, SUM(s.portions * mi.quantity) AS total
			FROM meal_servings s
			JOIN meal_ingredients mi ON mi.meal_id = s.meal_id
			WHERE s.served_at >= $1 AND s.served_at < $2
			GROUP BY mi.ingredient_id
		), delivered AS (
			SELECT ingredient_id, SUM(quantity) AS total
			FROM ingredient_deliveries
			WHERE delivery_date >= $1 AND delivery_date < $2
			GROUP BY ingredient_id
		)
		SELECT COALESCE(u.ingredient_id, d.ingredient_id) AS ingredient_id,
		       COALESCE(u.total, 0) AS used,
		       COALESCE(d.total, 0) AS delivered
		FROM used u
		FULL OUTER JOIN delivered d ON d.ingredient_id = u.ingredient_id
		ORDER BY ingredient_id`
)

type recipePortionsRow struct {
	MealID   int64 `db:"meal_id"`
	Portions int64 `db:"portions"`
}

type dailyCountRow struct {
	Day   time.Time `db:"day"`
	Total int64     `db:"total"`
}

type dailyAmountRow struct {
	Day   time.Time       `db:"day"`
	Total decimal.Decimal `db:"total"`
}

type movementRow struct {
	IngredientID int64           `db:"ingredient_id"`
	Used         decimal.Decimal `db:"used"`
	Delivered    decimal.Decimal `db:"delivered"`
}

// HistoryRepository reads servings and deliveries outside any write transaction
type HistoryRepository struct {
	db *sqlx.DB
}

var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) PortionsServed(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, portionsServedQuery, from, to); err != nil {
		return 0, fmt.Errorf("failed to sum portions served: %w", err)
	}
	return total, nil
}

func (r *HistoryRepository) PortionsByRecipe(ctx context.Context, from, to time.Time) ([]repositories.RecipePortions, error) {
	var rows []recipePortionsRow
	if err := r.db.SelectContext(ctx, &rows, portionsByRecipeQuery, from, to); err != nil {
		return nil, fmt.Errorf("failed to sum portions by meal: %w", err)
	}
	result := make([]repositories.RecipePortions, 0, len(rows))
	for _, row := range rows {
		result = append(result, repositories.RecipePortions{
			RecipeID: entities.RecipeID(row.MealID),
			Portions: row.Portions,
		})
	}
	return result, nil
}

func (r *HistoryRepository) DailyPortions(ctx context.Context, recipeID entities.RecipeID, from, to time.Time) ([]repositories.DailyCount, error) {
	var rows []dailyCountRow
	if err := r.db.SelectContext(ctx, &rows, dailyPortionsQuery, int64(recipeID), from, to); err != nil {
		return nil, fmt.Errorf("failed to load daily portions: %w", err)
	}
	return toDailyCounts(rows), nil
}

func (r *HistoryRepository) DailyIngredientUsage(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]repositories.DailyAmount, error) {
	var rows []dailyAmountRow
	if err := r.db.SelectContext(ctx, &rows, dailyUsageQuery, int64(ingredientID), from, to); err != nil {
		return nil, fmt.Errorf("failed to load daily usage: %w", err)
	}
	return toDailyAmounts(rows), nil
}

func (r *HistoryRepository) DailyDeliveries(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]repositories.DailyAmount, error) {
	var rows []dailyAmountRow
	if err := r.db.SelectContext(ctx, &rows, dailyDeliveriesQuery, int64(ingredientID), from, to); err != nil {
		return nil, fmt.Errorf("failed to load daily deliveries: %w", err)
	}
	return toDailyAmounts(rows), nil
}

func (r *HistoryRepository) IngredientMovements(ctx context.Context, from, to time.Time) ([]repositories.IngredientMovement, error) {
	var rows []movementRow
	if err := r.db.SelectContext(ctx, &rows, ingredientMovementsQuery, from, to); err != nil {
		return nil, fmt.Errorf("failed to load ingredient movements: %w", err)
	}
	result := make([]repositories.IngredientMovement, 0, len(rows))
	for _, row := range rows {
		result = append(result, repositories.IngredientMovement{
			IngredientID: entities.IngredientID(row.IngredientID),
			Used:         row.Used,
			Delivered:    row.Delivered,
		})
	}
	return result, nil
}

// date_trunc on a timestamp without time zone comes back with no zone
// attached; pin it to UTC midnight
func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toDailyCounts(rows []dailyCountRow) []repositories.DailyCount {
	result := make([]repositories.DailyCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, repositories.DailyCount{Day: utcDay(row.Day), Total: row.Total})
	}
	return result
}

func toDailyAmounts(rows []dailyAmountRow) []repositories.DailyAmount {
	result := make([]repositories.DailyAmount, 0, len(rows))
	for _, row := range rows {
		result = append(result, repositories.DailyAmount{Day: utcDay(row.Day), Total: row.Total})
	}
	return result
}
