// Package stock is the ledger of ingredient quantities: reads, adjustments,
// deliveries and low-stock queries.
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

// LowStockNotifier is told about ingredients that fell below their minimum
type LowStockNotifier interface {
	LowStock(ctx context.Context, ingredient entities.Ingredient) error
}

// IngredientUpdate carries optional changes to an ingredient
type IngredientUpdate struct {
	Name        *string
	MinQuantity *decimal.Decimal
}

// Service owns ingredient stock
type Service struct {
	store     repositories.Store
	notifier  LowStockNotifier
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a stock ledger
func NewService(store repositories.Store, notifier LowStockNotifier, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the service clock
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns an ingredient
func (s *Service) Get(ctx context.Context, id entities.IngredientID) (*entities.Ingredient, error) {
	return s.store.Ingredients().GetIngredient(ctx, id)
}

// List returns a page of ingredients
func (s *Service) List(ctx context.Context, page repositories.Page) ([]*entities.Ingredient, error) {
	return s.store.Ingredients().ListIngredients(ctx, page)
}

// Create adds an ingredient with an initial quantity
func (s *Service) Create(ctx context.Context, name string, quantity, minQuantity decimal.Decimal) (*entities.Ingredient, error) {
	ingredient, err := entities.NewIngredient(name, quantity, minQuantity)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Ingredients().GetIngredientByName(ctx, ingredient.Name); err == nil {
		return nil, entities.NewConflictError("ingredient", "ingredient with this name already exists")
	} else if !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("failed to check ingredient name: %w", err)
	}

	if err := s.store.Ingredients().CreateIngredient(ctx, ingredient); err != nil {
		return nil, err
	}

	s.logger.Info("ingredient created", zap.Int64("ingredient_id", int64(ingredient.ID)), zap.String("name", ingredient.Name))
	s.changed(ctx, *ingredient, "created")
	return ingredient, nil
}

// Update changes an ingredient's name or minimum threshold
func (s *Service) Update(ctx context.Context, id entities.IngredientID, update IngredientUpdate) (*entities.Ingredient, error) {
	ingredient, err := s.store.Ingredients().GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	name := ingredient.Name
	if update.Name != nil {
		name = *update.Name
	}
	minQuantity := ingredient.MinQuantity
	if update.MinQuantity != nil {
		minQuantity = *update.MinQuantity
	}

	validated, err := entities.NewIngredient(name, ingredient.Quantity, minQuantity)
	if err != nil {
		return nil, err
	}
	ingredient.Name = validated.Name
	ingredient.MinQuantity = validated.MinQuantity

	if err := s.store.Ingredients().UpdateIngredient(ctx, ingredient); err != nil {
		return nil, err
	}

	s.changed(ctx, *ingredient, "updated")
	return ingredient, nil
}

// Delete removes an ingredient that nothing references
func (s *Service) Delete(ctx context.Context, id entities.IngredientID) (*entities.Ingredient, error) {
	ingredient, err := s.store.Ingredients().GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Ingredients().DeleteIngredient(ctx, id); err != nil {
		return nil, err
	}
	return ingredient, nil
}

// Correct is a manual stock correction such as spoilage. An overdraw is
// bad input here, not a broken invariant.
func (s *Service) Correct(ctx context.Context, id entities.IngredientID, delta decimal.Decimal, reason string) (*entities.Ingredient, error) {
	if delta.IsZero() {
		return nil, entities.NewValidationError("delta must not be zero")
	}
	if reason == "" {
		reason = "correction"
	}

	var updated *entities.Ingredient
	err := s.store.Atomically(ctx, func(tx repositories.Store) error {
		locked, err := tx.Ingredients().LockIngredients(ctx, []entities.IngredientID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return entities.NewNotFoundError("ingredient", id)
		}
		if locked[0].Quantity.Add(delta).IsNegative() {
			return entities.NewValidationError(fmt.Sprintf("cannot remove %sg of %s: only %sg in stock",
				delta.Neg(), locked[0].Name, locked[0].Quantity))
		}
		adjusted, err := s.adjust(ctx, tx, id, delta, reason)
		if err != nil {
			return err
		}
		updated = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock corrected",
		zap.Int64("ingredient_id", int64(id)),
		zap.String("delta", delta.String()),
		zap.String("reason", reason),
	)
	s.changed(ctx, *updated, reason)
	return updated, nil
}

// LowStock returns ingredients strictly below their minimum quantity
func (s *Service) LowStock(ctx context.Context) ([]*entities.Ingredient, error) {
	return s.store.Ingredients().ListLowStock(ctx)
}

// RecordDelivery stores a delivery and adds its quantity to stock in one transaction
func (s *Service) RecordDelivery(ctx context.Context, ingredientID entities.IngredientID, quantity decimal.Decimal, deliveredAt time.Time, actor entities.UserID) (*entities.Delivery, error) {
	if deliveredAt.IsZero() {
		deliveredAt = s.now()
	}
	delivery, err := entities.NewDelivery(ingredientID, quantity, deliveredAt.UTC(), actor)
	if err != nil {
		return nil, err
	}

	var updated *entities.Ingredient
	err = s.store.Atomically(ctx, func(tx repositories.Store) error {
		if _, err := tx.Ingredients().GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		if err := tx.Deliveries().CreateDelivery(ctx, delivery); err != nil {
			return err
		}
		adjusted, err := s.adjust(ctx, tx, ingredientID, delivery.Quantity, "delivery")
		if err != nil {
			return err
		}
		updated = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery recorded",
		zap.Int64("ingredient_id", int64(ingredientID)),
		zap.String("quantity", quantity.String()),
	)
	s.publisher.Publish(events.NewDeliveryRecorded(*delivery))
	s.changed(ctx, *updated, "delivery")
	return delivery, nil
}

// GetDelivery returns a delivery
func (s *Service) GetDelivery(ctx context.Context, id entities.DeliveryID) (*entities.Delivery, error) {
	return s.store.Deliveries().GetDelivery(ctx, id)
}

// ListDeliveries returns deliveries matching filter
func (s *Service) ListDeliveries(ctx context.Context, filter repositories.DeliveryFilter) ([]*entities.Delivery, error) {
	return s.store.Deliveries().ListDeliveries(ctx, filter)
}

// adjust applies delta to an ingredient's stock inside tx. A delta that would
// make the stock negative is refused with ErrInvalidAdjustment.
func (s *Service) adjust(ctx context.Context, tx repositories.Store, id entities.IngredientID, delta decimal.Decimal, reason string) (*entities.Ingredient, error) {
	ingredient, err := tx.Ingredients().AdjustQuantity(ctx, id, delta)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAdjustment) {
			s.logger.Error("refused stock adjustment below zero",
				zap.Int64("ingredient_id", int64(id)),
				zap.String("delta", delta.String()),
				zap.String("reason", reason),
			)
		}
		return nil, err
	}
	return ingredient, nil
}

func (s *Service) changed(ctx context.Context, ingredient entities.Ingredient, reason string) {
	s.publisher.Publish(events.NewInventoryUpdated(ingredient, reason))
	if ingredient.IsLow() && s.notifier != nil {
		if err := s.notifier.LowStock(ctx, ingredient); err != nil {
			s.logger.Warn("failed to emit low stock alert", zap.Int64("ingredient_id", int64(ingredient.ID)), zap.Error(err))
		}
	}
}
