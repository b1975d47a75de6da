// Package catalog manages meals and answers portion-availability questions.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	"go.uber.org/zap"
)

// RecipeInput is the user-supplied definition of a meal
type RecipeInput struct {
	Name        string
	Description string
	Lines       []entities.RecipeLine
}

// Service manages the meal catalog
type Service struct {
	store      repositories.Store
	calculator *domain.PortionCalculator
	validator  *domain.RecipeValidator
	logger     *zap.Logger
}

// NewService creates a catalog service
func NewService(store repositories.Store, calculator *domain.PortionCalculator, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		calculator: calculator,
		validator:  domain.NewRecipeValidator(),
		logger:     logger,
	}
}

// Get returns a meal with its ingredient lines
func (s *Service) Get(ctx context.Context, id entities.RecipeID) (*entities.Recipe, error) {
	return s.store.Recipes().GetRecipe(ctx, id)
}

// List returns a page of meals
func (s *Service) List(ctx context.Context, page repositories.Page) ([]*entities.Recipe, error) {
	return s.store.Recipes().ListRecipes(ctx, page)
}

// Create adds a meal
func (s *Service) Create(ctx context.Context, input RecipeInput, actor entities.UserID) (*entities.Recipe, error) {
	recipe, err := entities.NewRecipe(input.Name, input.Description, actor, input.Lines)
	if err != nil {
		return nil, err
	}

	err = s.store.Atomically(ctx, func(tx repositories.Store) error {
		if err := s.checkName(ctx, tx, recipe); err != nil {
			return err
		}
		if err := s.checkIngredients(ctx, tx, recipe); err != nil {
			return err
		}
		return tx.Recipes().CreateRecipe(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("meal created", zap.Int64("meal_id", int64(recipe.ID)), zap.String("name", recipe.Name))
	return recipe, nil
}

// Update replaces a meal's name, description and whole ingredient list
func (s *Service) Update(ctx context.Context, id entities.RecipeID, input RecipeInput) (*entities.Recipe, error) {
	var updated *entities.Recipe
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		existing, err := tx.Recipes().GetRecipe(ctx, id)
		if err != nil {
			return err
		}

		recipe, err := entities.NewRecipe(input.Name, input.Description, existing.CreatedBy, input.Lines)
		if err != nil {
			return err
		}
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt

		if err := s.checkName(ctx, tx, recipe); err != nil {
			return err
		}
		if err := s.checkIngredients(ctx, tx, recipe); err != nil {
			return err
		}
		if err := tx.Recipes().UpdateRecipe(ctx, recipe); err != nil {
			return err
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a meal that has never been served
func (s *Service) Delete(ctx context.Context, id entities.RecipeID) (*entities.Recipe, error) {
	var deleted *entities.Recipe
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		recipe, err := tx.Recipes().GetRecipe(ctx, id)
		if err != nil {
			return err
		}
		served, err := tx.Servings().CountServingsForRecipe(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count servings: %w", err)
		}
		if served > 0 {
			return entities.NewConflictError("meal", fmt.Sprintf("meal has %d recorded servings", served))
		}
		if err := tx.Recipes().DeleteRecipe(ctx, id); err != nil {
			return err
		}
		deleted = recipe
		return nil
	})
	return deleted, err
}

// Availability computes the servable portions of one meal from current stock
func (s *Service) Availability(ctx context.Context, id entities.RecipeID) (*entities.PortionAvailability, error) {
	recipe, err := s.store.Recipes().GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	lookup, err := Snapshot(ctx, s.store.Ingredients())
	if err != nil {
		return nil, err
	}
	availability := s.calculator.Compute(recipe, lookup)
	return &availability, nil
}

// AllAvailability computes servable portions for every meal, most servable first
func (s *Service) AllAvailability(ctx context.Context) ([]entities.PortionAvailability, error) {
	recipes, err := s.store.Recipes().ListRecipes(ctx, repositories.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	lookup, err := Snapshot(ctx, s.store.Ingredients())
	if err != nil {
		return nil, err
	}
	return s.calculator.ComputeAll(recipes, lookup), nil
}

// IngredientImpact shows how an ingredient constrains each meal using it
func (s *Service) IngredientImpact(ctx context.Context, id entities.IngredientID) ([]entities.IngredientImpact, error) {
	ingredient, err := s.store.Ingredients().GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	recipes, err := s.store.Recipes().ListRecipesUsing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals using ingredient: %w", err)
	}
	lookup, err := Snapshot(ctx, s.store.Ingredients())
	if err != nil {
		return nil, err
	}
	return s.calculator.IngredientImpact(ingredient, recipes, lookup), nil
}

// Snapshot reads the current stock of every ingredient
func Snapshot(ctx context.Context, ingredients repositories.IngredientRepository) (domain.StockLookup, error) {
	all, err := ingredients.ListIngredients(ctx, repositories.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	return domain.StockFromIngredients(all), nil
}

func (s *Service) checkName(ctx context.Context, tx repositories.Store, recipe *entities.Recipe) error {
	existing, err := tx.Recipes().GetRecipeByName(ctx, recipe.Name)
	switch {
	case err == nil && existing.ID != recipe.ID:
		return entities.NewConflictError("meal", "meal with this name already exists")
	case err != nil && !errors.Is(err, entities.ErrNotFound):
		return fmt.Errorf("failed to check meal name: %w", err)
	}
	return nil
}

func (s *Service) checkIngredients(ctx context.Context, tx repositories.Store, recipe *entities.Recipe) error {
	var lookupErr error
	known := func(id entities.IngredientID) bool {
		_, err := tx.Ingredients().GetIngredient(ctx, id)
		if err != nil && !errors.Is(err, entities.ErrNotFound) && lookupErr == nil {
			lookupErr = err
		}
		return err == nil
	}

	result := s.validator.ValidateRecipe(recipe, known)
	if lookupErr != nil {
		return fmt.Errorf("failed to check ingredients: %w", lookupErr)
	}
	return result.Err()
}
