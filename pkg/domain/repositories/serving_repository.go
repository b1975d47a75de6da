package repositories

import (
	"context"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// ServingFilter narrows a serving listing; zero values do not filter
type ServingFilter struct {
	RecipeID entities.RecipeID
	ServedBy entities.UserID
	From     time.Time
	To       time.Time
	Page     Page
}

// ServingRepository provides access to the append-only serving history
type ServingRepository interface {
	CreateServing(ctx context.Context, serving *entities.Serving) error
	GetServing(ctx context.Context, id entities.ServingID) (*entities.Serving, error)
	ListServings(ctx context.Context, filter ServingFilter) ([]*entities.Serving, error)
	CountServingsForRecipe(ctx context.Context, recipeID entities.RecipeID) (int64, error)
}

// DeliveryFilter narrows a delivery listing; zero values do not filter
type DeliveryFilter struct {
	IngredientID entities.IngredientID
	From         time.Time
	To           time.Time
	Page         Page
}

// DeliveryRepository provides access to the append-only delivery history
type DeliveryRepository interface {
	CreateDelivery(ctx context.Context, delivery *entities.Delivery) error
	GetDelivery(ctx context.Context, id entities.DeliveryID) (*entities.Delivery, error)
	ListDeliveries(ctx context.Context, filter DeliveryFilter) ([]*entities.Delivery, error)
}
