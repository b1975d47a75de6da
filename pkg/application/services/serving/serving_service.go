// Package serving records meal servings, debiting every ingredient of the
// meal in one transaction.
package serving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

// LowStockNotifier is told about ingredients that fell below their minimum
type LowStockNotifier interface {
	LowStock(ctx context.Context, ingredient entities.Ingredient) error
}

// Service runs serving transactions
type Service struct {
	store      repositories.Store
	calculator *domain.PortionCalculator
	notifier   LowStockNotifier
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a serving service
func NewService(store repositories.Store, calculator *domain.PortionCalculator, notifier LowStockNotifier, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:      store,
		calculator: calculator,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Serve records portions of a meal. Either every ingredient is debited and the
// serving stored, or nothing changes. Ingredient rows are locked for the whole
// check-and-debit so concurrent servings cannot overdraw stock.
func (s *Service) Serve(ctx context.Context, recipeID entities.RecipeID, portions int64, actor entities.UserID) (*entities.Serving, error) {
	if portions <= 0 {
		return nil, entities.NewValidationError(fmt.Sprintf("portions must be positive, got %d", portions))
	}

	var (
		serving entities.Serving
		touched []entities.Ingredient
	)
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		touched = touched[:0]

		recipe, err := tx.Recipes().GetRecipe(ctx, recipeID)
		if err != nil {
			return err
		}

		locked, err := tx.Ingredients().LockIngredients(ctx, recipe.IngredientIDs())
		if err != nil {
			return fmt.Errorf("failed to lock ingredients: %w", err)
		}
		lookup := domain.StockFromIngredients(locked)

		availability := s.calculator.Compute(recipe, lookup)
		if availability.AvailablePortions < portions {
			return insufficient(recipe, portions, availability, lookup)
		}

		for _, line := range recipe.Lines {
			required := line.GramsPerPortion.Mul(decimal.NewFromInt(portions))
			updated, err := tx.Ingredients().AdjustQuantity(ctx, line.IngredientID, required.Neg())
			if err != nil {
				return err
			}
			touched = append(touched, *updated)
		}

		serving = entities.Serving{
			RecipeID: recipeID,
			Portions: portions,
			ServedAt: s.now().UTC(),
			ServedBy: actor,
		}
		return tx.Servings().CreateServing(ctx, &serving)
	})
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAdjustment) {
			s.logger.Error("stock guard refused a validated serving",
				zap.Int64("meal_id", int64(recipeID)),
				zap.Int64("portions", portions),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("meal served",
		zap.Int64("serving_id", int64(serving.ID)),
		zap.Int64("meal_id", int64(recipeID)),
		zap.Int64("portions", portions),
		zap.Int64("served_by", int64(actor)),
	)

	s.publisher.Publish(events.NewServingRecorded(serving))
	for _, ingredient := range touched {
		s.publisher.Publish(events.NewInventoryUpdated(ingredient, "serving"))
		if ingredient.IsLow() && s.notifier != nil {
			if err := s.notifier.LowStock(ctx, ingredient); err != nil {
				s.logger.Warn("failed to emit low stock alert", zap.Int64("ingredient_id", int64(ingredient.ID)), zap.Error(err))
			}
		}
	}

	return &serving, nil
}

func insufficient(recipe *entities.Recipe, portions int64, availability entities.PortionAvailability, lookup domain.StockLookup) error {
	shortages := make([]entities.Shortage, 0)
	for _, line := range recipe.Lines {
		ingredient, _ := lookup(line.IngredientID)
		required := line.GramsPerPortion.Mul(decimal.NewFromInt(portions))
		if ingredient.Quantity.LessThan(required) {
			shortages = append(shortages, entities.Shortage{
				IngredientID: line.IngredientID,
				Name:         ingredient.Name,
				Required:     required,
				Available:    ingredient.Quantity,
			})
		}
	}

	return &entities.InsufficientStockError{
		RecipeID:  recipe.ID,
		Requested: portions,
		Available: availability.AvailablePortions,
		Limiting:  availability.Limiting,
		Shortages: shortages,
	}
}

// Get returns a serving
func (s *Service) Get(ctx context.Context, id entities.ServingID) (*entities.Serving, error) {
	return s.store.Servings().GetServing(ctx, id)
}

// List returns servings matching filter
func (s *Service) List(ctx context.Context, filter repositories.ServingFilter) ([]*entities.Serving, error) {
	return s.store.Servings().ListServings(ctx, filter)
}

// ByRecipe returns servings of one meal
func (s *Service) ByRecipe(ctx context.Context, recipeID entities.RecipeID, page repositories.Page) ([]*entities.Serving, error) {
	if _, err := s.store.Recipes().GetRecipe(ctx, recipeID); err != nil {
		return nil, err
	}
	return s.store.Servings().ListServings(ctx, repositories.ServingFilter{RecipeID: recipeID, Page: page})
}

// ByUser returns servings recorded by one user
func (s *Service) ByUser(ctx context.Context, userID entities.UserID, page repositories.Page) ([]*entities.Serving, error) {
	return s.store.Servings().ListServings(ctx, repositories.ServingFilter{ServedBy: userID, Page: page})
}
