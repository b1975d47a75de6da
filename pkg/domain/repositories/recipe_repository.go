package repositories

import (
	"context"

	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// RecipeRepository provides access to meals and their ingredient lines
type RecipeRepository interface {
	GetRecipe(ctx context.Context, id entities.RecipeID) (*entities.Recipe, error)
	GetRecipeByName(ctx context.Context, name string) (*entities.Recipe, error)
	ListRecipes(ctx context.Context, page Page) ([]*entities.Recipe, error)
	ListRecipesUsing(ctx context.Context, ingredientID entities.IngredientID) ([]*entities.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *entities.Recipe) error
	// UpdateRecipe replaces name, description and the whole line set
	UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error
	DeleteRecipe(ctx context.Context, id entities.RecipeID) error
}
