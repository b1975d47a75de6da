package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// IngredientRepository provides access to ingredient stock
type IngredientRepository interface {
	GetIngredient(ctx context.Context, id entities.IngredientID) (*entities.Ingredient, error)
	GetIngredientByName(ctx context.Context, name string) (*entities.Ingredient, error)
	ListIngredients(ctx context.Context, page Page) ([]*entities.Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error
	// UpdateIngredient saves name and minimum threshold; quantity is only changed through AdjustQuantity
	UpdateIngredient(ctx context.Context, ingredient *entities.Ingredient) error
	DeleteIngredient(ctx context.Context, id entities.IngredientID) error

	// LockIngredients loads the given ingredients, holding row locks until the
	// surrounding transaction ends. Rows are locked in ascending id order.
	LockIngredients(ctx context.Context, ids []entities.IngredientID) ([]*entities.Ingredient, error)

	// AdjustQuantity atomically applies delta and returns the updated ingredient.
	// It fails with InvalidAdjustmentError if the result would be negative.
	AdjustQuantity(ctx context.Context, id entities.IngredientID, delta decimal.Decimal) (*entities.Ingredient, error)

	// ListLowStock returns ingredients with quantity strictly below min quantity
	ListLowStock(ctx context.Context) ([]*entities.Ingredient, error)
}
