package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// PortionPolicy holds the tunable limiting-ingredient thresholds
type PortionPolicy struct {
	// LimitingFactor includes ingredients whose max portions are within this
	// multiple of the recipe's available portions
	LimitingFactor decimal.Decimal
	// MaxLimiting caps the number of reported limiting ingredients
	MaxLimiting int
}

// DefaultPortionPolicy returns a factor of 1.5 capped at 3 ingredients
func DefaultPortionPolicy() PortionPolicy {
	return PortionPolicy{
		LimitingFactor: decimal.NewFromFloat(1.5),
		MaxLimiting:    3,
	}
}

// StockLookup returns the current state of an ingredient, false if unknown
type StockLookup func(id entities.IngredientID) (entities.Ingredient, bool)

// StockFromIngredients builds a lookup over a fixed snapshot
func StockFromIngredients(ingredients []*entities.Ingredient) StockLookup {
	byID := make(map[entities.IngredientID]entities.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		byID[ingredient.ID] = *ingredient
	}
	return func(id entities.IngredientID) (entities.Ingredient, bool) {
		ingredient, ok := byID[id]
		return ingredient, ok
	}
}

// PortionCalculator computes servable portions from stock. It never mutates
// anything and may be called any number of times.
type PortionCalculator struct {
	policy PortionPolicy
}

// NewPortionCalculator creates a calculator with the given policy
func NewPortionCalculator(policy PortionPolicy) *PortionCalculator {
	if policy.MaxLimiting <= 0 {
		policy.MaxLimiting = DefaultPortionPolicy().MaxLimiting
	}
	if !policy.LimitingFactor.IsPositive() {
		policy.LimitingFactor = DefaultPortionPolicy().LimitingFactor
	}
	return &PortionCalculator{policy: policy}
}

// Policy returns the calculator's policy
func (c *PortionCalculator) Policy() PortionPolicy {
	return c.policy
}

// MaxPortions is floor(stock / gramsPerPortion), or zero when either side is not positive
func MaxPortions(stock, gramsPerPortion decimal.Decimal) int64 {
	if !gramsPerPortion.IsPositive() || !stock.IsPositive() {
		return 0
	}
	q, _ := stock.QuoRem(gramsPerPortion, 0)
	return q.IntPart()
}

// Compute returns the available portions of recipe and its limiting ingredients
func (c *PortionCalculator) Compute(recipe *entities.Recipe, lookup StockLookup) entities.PortionAvailability {
	result := entities.PortionAvailability{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Limiting:   make([]entities.LimitingIngredient, 0),
	}
	if len(recipe.Lines) == 0 {
		return result
	}

	perLine := make([]entities.LimitingIngredient, 0, len(recipe.Lines))
	available := int64(-1)
	for _, line := range recipe.Lines {
		stock := decimal.Zero
		name := ""
		if ingredient, ok := lookup(line.IngredientID); ok {
			stock = ingredient.Quantity
			name = ingredient.Name
		}

		maxPortions := MaxPortions(stock, line.GramsPerPortion)
		perLine = append(perLine, entities.LimitingIngredient{
			IngredientID:    line.IngredientID,
			Name:            name,
			Available:       stock,
			GramsPerPortion: line.GramsPerPortion,
			MaxPortions:     maxPortions,
		})

		if available < 0 || maxPortions < available {
			available = maxPortions
		}
	}
	result.AvailablePortions = available

	sort.SliceStable(perLine, func(i, j int) bool {
		return perLine[i].MaxPortions < perLine[j].MaxPortions
	})

	threshold := decimal.NewFromInt(available).Mul(c.policy.LimitingFactor)
	for _, candidate := range perLine {
		if len(result.Limiting) == c.policy.MaxLimiting {
			break
		}
		if decimal.NewFromInt(candidate.MaxPortions).GreaterThan(threshold) {
			// sorted ascending, nothing after this qualifies
			break
		}
		result.Limiting = append(result.Limiting, candidate)
	}

	return result
}

// ComputeAll evaluates every recipe, most servable first
func (c *PortionCalculator) ComputeAll(recipes []*entities.Recipe, lookup StockLookup) []entities.PortionAvailability {
	results := make([]entities.PortionAvailability, 0, len(recipes))
	for _, recipe := range recipes {
		results = append(results, c.Compute(recipe, lookup))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AvailablePortions > results[j].AvailablePortions
	})
	return results
}

// TotalPossible sums the available portions of every recipe
func (c *PortionCalculator) TotalPossible(recipes []*entities.Recipe, lookup StockLookup) int64 {
	var total int64
	for _, recipe := range recipes {
		total += c.Compute(recipe, lookup).AvailablePortions
	}
	return total
}

// IngredientImpact reports, for each recipe using ingredient, how much that
// ingredient alone allows and whether it is what limits the recipe.
// Limiting recipes come first, then fewer available portions first.
func (c *PortionCalculator) IngredientImpact(ingredient *entities.Ingredient, recipes []*entities.Recipe, lookup StockLookup) []entities.IngredientImpact {
	impacts := make([]entities.IngredientImpact, 0, len(recipes))
	for _, recipe := range recipes {
		line, ok := recipe.Uses(ingredient.ID)
		if !ok {
			continue
		}

		fromIngredient := MaxPortions(ingredient.Quantity, line.GramsPerPortion)
		available := c.Compute(recipe, lookup).AvailablePortions
		impacts = append(impacts, entities.IngredientImpact{
			RecipeID:          recipe.ID,
			RecipeName:        recipe.Name,
			GramsPerPortion:   line.GramsPerPortion,
			MaxFromIngredient: fromIngredient,
			AvailablePortions: available,
			IsLimiting:        fromIngredient <= available,
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		if impacts[i].IsLimiting != impacts[j].IsLimiting {
			return impacts[i].IsLimiting
		}
		return impacts[i].AvailablePortions < impacts[j].AvailablePortions
	})
	return impacts
}
