package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// RecipeRepository provides in-memory meal storage
type RecipeRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

// GetRecipe returns a meal with its lines
func (r *RecipeRepository) GetRecipe(ctx context.Context, id entities.RecipeID) (*entities.Recipe, error) {
	var found entities.Recipe
	err := r.store.view(func(st *state) error {
		recipe, ok := st.recipes[id]
		if !ok {
			return entities.NewNotFoundError("meal", id)
		}
		found = copyRecipe(recipe)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// GetRecipeByName returns a meal by its unique name
func (r *RecipeRepository) GetRecipeByName(ctx context.Context, name string) (*entities.Recipe, error) {
	var found entities.Recipe
	err := r.store.view(func(st *state) error {
		for _, recipe := range st.recipes {
			if recipe.Name == name {
				found = copyRecipe(recipe)
				return nil
			}
		}
		return entities.NewNotFoundError("meal", name)
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// ListRecipes returns meals ordered by id
func (r *RecipeRepository) ListRecipes(ctx context.Context, page repositories.Page) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := r.store.view(func(st *state) error {
		recipes = sortedRecipes(st, func(entities.Recipe) bool { return true })
		return nil
	})
	return paginate(recipes, page), err
}

// ListRecipesUsing returns meals that consume the ingredient
func (r *RecipeRepository) ListRecipesUsing(ctx context.Context, ingredientID entities.IngredientID) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe
	err := r.store.view(func(st *state) error {
		recipes = sortedRecipes(st, func(recipe entities.Recipe) bool {
			_, uses := recipe.Uses(ingredientID)
			return uses
		})
		return nil
	})
	return recipes, err
}

// CreateRecipe stores a new meal and assigns its id
func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.store.update(func(st *state) error {
		if err := checkRecipe(st, recipe); err != nil {
			return err
		}
		st.seq.recipe++
		recipe.ID = entities.RecipeID(st.seq.recipe)
		recipe.CreatedAt = r.store.now()
		st.recipes[recipe.ID] = copyRecipe(*recipe)
		return nil
	})
}

// UpdateRecipe replaces the meal's fields and its whole line set
func (r *RecipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	return r.store.update(func(st *state) error {
		existing, ok := st.recipes[recipe.ID]
		if !ok {
			return entities.NewNotFoundError("meal", recipe.ID)
		}
		if err := checkRecipe(st, recipe); err != nil {
			return err
		}
		existing.Name = recipe.Name
		existing.Description = recipe.Description
		existing.Lines = append([]entities.RecipeLine(nil), recipe.Lines...)
		st.recipes[recipe.ID] = existing
		*recipe = copyRecipe(existing)
		return nil
	})
}

// DeleteRecipe removes a meal that has never been served
func (r *RecipeRepository) DeleteRecipe(ctx context.Context, id entities.RecipeID) error {
	return r.store.update(func(st *state) error {
		if _, ok := st.recipes[id]; !ok {
			return entities.NewNotFoundError("meal", id)
		}
		for _, serving := range st.servings {
			if serving.RecipeID == id {
				return entities.NewConflictError("meal", "has recorded servings")
			}
		}
		delete(st.recipes, id)
		return nil
	})
}

func checkRecipe(st *state, recipe *entities.Recipe) error {
	for id, other := range st.recipes {
		if id != recipe.ID && other.Name == recipe.Name {
			return entities.NewConflictError("meal", fmt.Sprintf("name %q already exists", recipe.Name))
		}
	}
	for _, line := range recipe.Lines {
		if _, ok := st.ingredients[line.IngredientID]; !ok {
			return entities.NewNotFoundError("ingredient", line.IngredientID)
		}
	}
	return nil
}

func sortedRecipes(st *state, keep func(entities.Recipe) bool) []*entities.Recipe {
	recipes := make([]*entities.Recipe, 0, len(st.recipes))
	for _, recipe := range st.recipes {
		if keep(recipe) {
			c := copyRecipe(recipe)
			recipes = append(recipes, &c)
		}
	}
	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].ID < recipes[j].ID
	})
	return recipes
}
