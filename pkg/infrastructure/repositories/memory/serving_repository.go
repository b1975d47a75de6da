package memory

import (
	"context"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// ServingRepository provides in-memory serving history
type ServingRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.ServingRepository = (*ServingRepository)(nil)

// CreateServing appends a serving and assigns its id
func (r *ServingRepository) CreateServing(ctx context.Context, serving *entities.Serving) error {
	return r.store.update(func(st *state) error {
		if _, ok := st.recipes[serving.RecipeID]; !ok {
			return entities.NewNotFoundError("meal", serving.RecipeID)
		}
		st.seq.serving++
		serving.ID = entities.ServingID(st.seq.serving)
		if serving.ServedAt.IsZero() {
			serving.ServedAt = r.store.now()
		}
		st.servings = append(st.servings, *serving)
		return nil
	})
}

// GetServing returns a serving by id
func (r *ServingRepository) GetServing(ctx context.Context, id entities.ServingID) (*entities.Serving, error) {
	var found *entities.Serving
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if serving.ID == id {
				serving := serving
				found = &serving
				return nil
			}
		}
		return entities.NewNotFoundError("meal serving", id)
	})
	return found, err
}

// ListServings returns servings matching filter in id order
func (r *ServingRepository) ListServings(ctx context.Context, filter repositories.ServingFilter) ([]*entities.Serving, error) {
	servings := make([]*entities.Serving, 0)
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if filter.RecipeID != 0 && serving.RecipeID != filter.RecipeID {
				continue
			}
			if filter.ServedBy != 0 && serving.ServedBy != filter.ServedBy {
				continue
			}
			if !inRange(serving.ServedAt, filter.From, filter.To) {
				continue
			}
			serving := serving
			servings = append(servings, &serving)
		}
		return nil
	})
	return paginate(servings, filter.Page), err
}

// CountServingsForRecipe returns how many servings reference the meal
func (r *ServingRepository) CountServingsForRecipe(ctx context.Context, recipeID entities.RecipeID) (int64, error) {
	var count int64
	err := r.store.view(func(st *state) error {
		for _, serving := range st.servings {
			if serving.RecipeID == recipeID {
				count++
			}
		}
		return nil
	})
	return count, err
}

// DeliveryRepository provides in-memory delivery history
type DeliveryRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// CreateDelivery appends a delivery and assigns its id. Stock is adjusted separately.
func (r *DeliveryRepository) CreateDelivery(ctx context.Context, delivery *entities.Delivery) error {
	return r.store.update(func(st *state) error {
		if _, ok := st.ingredients[delivery.IngredientID]; !ok {
			return entities.NewNotFoundError("ingredient", delivery.IngredientID)
		}
		st.seq.delivery++
		delivery.ID = entities.DeliveryID(st.seq.delivery)
		if delivery.DeliveredAt.IsZero() {
			delivery.DeliveredAt = r.store.now()
		}
		st.deliveries = append(st.deliveries, *delivery)
		return nil
	})
}

// GetDelivery returns a delivery by id
func (r *DeliveryRepository) GetDelivery(ctx context.Context, id entities.DeliveryID) (*entities.Delivery, error) {
	var found *entities.Delivery
	err := r.store.view(func(st *state) error {
		for _, delivery := range st.deliveries {
			if delivery.ID == id {
				delivery := delivery
				found = &delivery
				return nil
			}
		}
		return entities.NewNotFoundError("ingredient delivery", id)
	})
	return found, err
}

// ListDeliveries returns deliveries matching filter in id order
func (r *DeliveryRepository) ListDeliveries(ctx context.Context, filter repositories.DeliveryFilter) ([]*entities.Delivery, error) {
	deliveries := make([]*entities.Delivery, 0)
	err := r.store.view(func(st *state) error {
		for _, delivery := range st.deliveries {
			if filter.IngredientID != 0 && delivery.IngredientID != filter.IngredientID {
				continue
			}
			if !inRange(delivery.DeliveredAt, filter.From, filter.To) {
				continue
			}
			delivery := delivery
			deliveries = append(deliveries, &delivery)
		}
		return nil
	})
	return paginate(deliveries, filter.Page), err
}
