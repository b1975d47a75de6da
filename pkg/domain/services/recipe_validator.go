package services

import (
	"fmt"
	"strings"

	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// RecipeValidator checks recipes against the ingredient catalog
type RecipeValidator struct{}

// NewRecipeValidator creates a new recipe validator
func NewRecipeValidator() *RecipeValidator {
	return &RecipeValidator{}
}

// ValidationResult contains the results of recipe validation
type ValidationResult struct {
	UnknownIngredients []entities.IngredientID
	DuplicateLines     []entities.RecipeLine
	DuplicateNames     []string
	Errors             []string
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err folds the result into a validation error, nil when valid
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return entities.NewValidationError(strings.Join(r.Errors, "; "))
}

// ValidateRecipe checks that every line references a known ingredient at most once
func (v *RecipeValidator) ValidateRecipe(recipe *entities.Recipe, known func(entities.IngredientID) bool) *ValidationResult {
	result := &ValidationResult{
		UnknownIngredients: make([]entities.IngredientID, 0),
		DuplicateLines:     make([]entities.RecipeLine, 0),
		Errors:             make([]string, 0),
	}

	seen := make(map[entities.IngredientID]bool, len(recipe.Lines))
	for _, line := range recipe.Lines {
		if seen[line.IngredientID] {
			result.DuplicateLines = append(result.DuplicateLines, line)
			continue
		}
		seen[line.IngredientID] = true

		if !known(line.IngredientID) {
			result.UnknownIngredients = append(result.UnknownIngredients, line.IngredientID)
		}
	}

	if len(result.UnknownIngredients) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("unknown ingredients: %v", result.UnknownIngredients))
	}
	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate ingredient lines", len(result.DuplicateLines)))
	}

	return result
}

// ValidateNameUniqueness checks that meal names are unique, ignoring case
func (v *RecipeValidator) ValidateNameUniqueness(recipes []*entities.Recipe) *ValidationResult {
	result := &ValidationResult{
		DuplicateNames: make([]string, 0),
		Errors:         make([]string, 0),
	}

	seen := make(map[string]bool, len(recipes))
	for _, recipe := range recipes {
		key := strings.ToLower(recipe.Name)
		if seen[key] {
			result.DuplicateNames = append(result.DuplicateNames, recipe.Name)
		} else {
			seen[key] = true
		}
	}

	if len(result.DuplicateNames) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate meal names found: %v", result.DuplicateNames))
	}

	return result
}
