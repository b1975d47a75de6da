package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecipeLine is the amount of one ingredient needed for a single portion
type RecipeLine struct {
	IngredientID    IngredientID
	GramsPerPortion decimal.Decimal
}

// Recipe is a meal defined as grams of each ingredient per portion
type Recipe struct {
	ID          RecipeID
	Name        string
	Description string
	CreatedBy   UserID
	Lines       []RecipeLine
	CreatedAt   time.Time
}

// NewRecipe creates a validated Recipe. An empty line list is allowed; such a
// recipe can never be served.
func NewRecipe(name, description string, createdBy UserID, lines []RecipeLine) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("meal name cannot be empty")
	}

	seen := make(map[IngredientID]bool, len(lines))
	for _, line := range lines {
		if line.IngredientID <= 0 {
			return nil, NewValidationError("ingredient id must be positive")
		}
		if !line.GramsPerPortion.IsPositive() {
			return nil, NewValidationError(fmt.Sprintf("grams per portion must be positive, got %s", line.GramsPerPortion))
		}
		if seen[line.IngredientID] {
			return nil, NewValidationError(fmt.Sprintf("ingredient %d listed more than once", line.IngredientID))
		}
		seen[line.IngredientID] = true
	}

	return &Recipe{
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		Lines:       append([]RecipeLine(nil), lines...),
	}, nil
}

// IngredientIDs returns the ingredient ids in line order
func (r Recipe) IngredientIDs() []IngredientID {
	ids := make([]IngredientID, 0, len(r.Lines))
	for _, line := range r.Lines {
		ids = append(ids, line.IngredientID)
	}
	return ids
}

// Uses reports whether the recipe consumes the ingredient
func (r Recipe) Uses(id IngredientID) (RecipeLine, bool) {
	for _, line := range r.Lines {
		if line.IngredientID == id {
			return line, true
		}
	}
	return RecipeLine{}, false
}

// Serving records portions of a recipe served at a point in time
type Serving struct {
	ID       ServingID
	RecipeID RecipeID
	Portions int64
	ServedAt time.Time
	ServedBy UserID
}
