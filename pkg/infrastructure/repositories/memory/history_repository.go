package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// HistoryRepository aggregates the in-memory serving and delivery facts
type HistoryRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PortionsServed sums portions served in [from, to)
func (r *HistoryRepository) PortionsServed(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if inRange(serving.ServedAt, from, to) {
				total += serving.Portions
			}
		}
		return nil
	})
	return total, err
}

// PortionsByRecipe sums portions per meal in [from, to), most served first
func (r *HistoryRepository) PortionsByRecipe(ctx context.Context, from, to time.Time) ([]repositories.RecipePortions, error) {
	totals := make(map[entities.RecipeID]int64)
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if inRange(serving.ServedAt, from, to) {
				totals[serving.RecipeID] += serving.Portions
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]repositories.RecipePortions, 0, len(totals))
	for id, portions := range totals {
		result = append(result, repositories.RecipePortions{RecipeID: id, Portions: portions})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Portions != result[j].Portions {
			return result[i].Portions > result[j].Portions
		}
		return result[i].RecipeID < result[j].RecipeID
	})
	return result, nil
}

// DailyPortions sums portions of one meal per day
func (r *HistoryRepository) DailyPortions(ctx context.Context, recipeID entities.RecipeID, from, to time.Time) ([]repositories.DailyCount, error) {
	totals := make(map[time.Time]int64)
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if serving.RecipeID == recipeID && inRange(serving.ServedAt, from, to) {
				totals[day(serving.ServedAt)] += serving.Portions
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]repositories.DailyCount, 0, len(totals))
	for d, total := range totals {
		result = append(result, repositories.DailyCount{Day: d, Total: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })
	return result, nil
}

// DailyIngredientUsage sums grams of the ingredient consumed by servings per day,
// using each meal's current lines
func (r *HistoryRepository) DailyIngredientUsage(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]repositories.DailyAmount, error) {
	totals := make(map[time.Time]decimal.Decimal)
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if !inRange(serving.ServedAt, from, to) {
				continue
			}
			line, uses := st.recipes[serving.RecipeID].Uses(ingredientID)
			if !uses {
				continue
			}
			d := day(serving.ServedAt)
			totals[d] = totals[d].Add(line.GramsPerPortion.Mul(decimal.NewFromInt(serving.Portions)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortedAmounts(totals), nil
}

// DailyDeliveries sums delivered grams of the ingredient per day
func (r *HistoryRepository) DailyDeliveries(ctx context.Context, ingredientID entities.IngredientID, from, to time.Time) ([]repositories.DailyAmount, error) {
	totals := make(map[time.Time]decimal.Decimal)
	err := r.store.view(func(st *state) error {
		for _, delivery := range st.deliveries {
			if delivery.IngredientID == ingredientID && inRange(delivery.DeliveredAt, from, to) {
				d := day(delivery.DeliveredAt)
				totals[d] = totals[d].Add(delivery.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortedAmounts(totals), nil
}

// IngredientMovements sums usage and deliveries per ingredient in [from, to)
func (r *HistoryRepository) IngredientMovements(ctx context.Context, from, to time.Time) ([]repositories.IngredientMovement, error) {
	movements := make(map[entities.IngredientID]*repositories.IngredientMovement)
	get := func(id entities.IngredientID) *repositories.IngredientMovement {
		m, ok := movements[id]
		if !ok {
			m = &repositories.IngredientMovement{IngredientID: id, Used: decimal.Zero, Delivered: decimal.Zero}
			movements[id] = m
		}
		return m
	}

	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if !inRange(serving.ServedAt, from, to) {
				continue
			}
			for _, line := range st.recipes[serving.RecipeID].Lines {
				m := get(line.IngredientID)
				m.Used = m.Used.Add(line.GramsPerPortion.Mul(decimal.NewFromInt(serving.Portions)))
			}
		}
		for _, delivery := range st.deliveries {
			if inRange(delivery.DeliveredAt, from, to) {
				m := get(delivery.IngredientID)
				m.Delivered = m.Delivered.Add(delivery.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]repositories.IngredientMovement, 0, len(movements))
	for _, m := range movements {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IngredientID < result[j].IngredientID })
	return result, nil
}

func sortedAmounts(totals map[time.Time]decimal.Decimal) []repositories.DailyAmount {
	result := make([]repositories.DailyAmount, 0, len(totals))
	for d, total := range totals {
		result = append(result, repositories.DailyAmount{Day: d, Total: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })
	return result
}
