package postgres

import (
	"context"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"gorm.io/gorm"
)

// ServingRepository stores servings
type ServingRepository struct {
	db *gorm.DB
}

var _ repositories.ServingRepository = (*ServingRepository)(nil)

// CreateServing inserts a serving and sets its id
func (r *ServingRepository) CreateServing(ctx context.Context, serving *entities.Serving) error {
	if serving.ServedAt.IsZero() {
		serving.ServedAt = time.Now().UTC()
	}
	m := servingModel{
		MealID:   int64(serving.RecipeID),
		Portions: serving.Portions,
		ServedAt: serving.ServedAt,
		ServedBy: optionalID(int64(serving.ServedBy)),
	}
	if err := r.db.WithContext(ctx).Omit("Meal").Create(&m).Error; err != nil {
		return translate(err, "meal serving", serving.RecipeID)
	}
	*serving = *m.toEntity()
	return nil
}

// GetServing returns a serving by id
func (r *ServingRepository) GetServing(ctx context.Context, id entities.ServingID) (*entities.Serving, error) {
	var m servingModel
	if err := r.db.WithContext(ctx).First(&m, int64(id)).Error; err != nil {
		return nil, translate(err, "meal serving", id)
	}
	return m.toEntity(), nil
}

// ListServings returns servings matching filter, newest first
func (r *ServingRepository) ListServings(ctx context.Context, filter repositories.ServingFilter) ([]*entities.Serving, error) {
	db := r.db.WithContext(ctx).Model(&servingModel{})
	if filter.RecipeID != 0 {
		db = db.Where("meal_id = ?", int64(filter.RecipeID))
	}
	if filter.ServedBy != 0 {
		db = db.Where("served_by = ?", int64(filter.ServedBy))
	}
	db = between(db, "served_at", filter.From, filter.To)

	var models []servingModel
	if err := paginate(db.Order("served_at DESC, id DESC"), filter.Page).Find(&models).Error; err != nil {
		return nil, translate(err, "meal serving", nil)
	}
	result := make([]*entities.Serving, 0, len(models))
	for _, m := range models {
		result = append(result, m.toEntity())
	}
	return result, nil
}

// CountServingsForRecipe counts the servings recorded for a meal
func (r *ServingRepository) CountServingsForRecipe(ctx context.Context, recipeID entities.RecipeID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&servingModel{}).Where("meal_id = ?", int64(recipeID)).Count(&count).Error; err != nil {
		return 0, translate(err, "meal serving", nil)
	}
	return count, nil
}

// DeliveryRepository stores deliveries
type DeliveryRepository struct {
	db *gorm.DB
}

var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// CreateDelivery inserts a delivery and sets its id
func (r *DeliveryRepository) CreateDelivery(ctx context.Context, delivery *entities.Delivery) error {
	if delivery.DeliveredAt.IsZero() {
		delivery.DeliveredAt = time.Now().UTC()
	}
	m := deliveryModel{
		IngredientID: int64(delivery.IngredientID),
		Quantity:     delivery.Quantity,
		DeliveryDate: delivery.DeliveredAt,
		CreatedBy:    optionalID(int64(delivery.CreatedBy)),
	}
	if err := r.db.WithContext(ctx).Omit("Ingredient").Create(&m).Error; err != nil {
		return translate(err, "delivery", delivery.IngredientID)
	}
	*delivery = *m.toEntity()
	return nil
}

// GetDelivery returns a delivery by id
func (r *DeliveryRepository) GetDelivery(ctx context.Context, id entities.DeliveryID) (*entities.Delivery, error) {
	var m deliveryModel
	if err := r.db.WithContext(ctx).First(&m, int64(id)).Error; err != nil {
		return nil, translate(err, "delivery", id)
	}
	return m.toEntity(), nil
}

// ListDeliveries returns deliveries matching filter, newest first
func (r *DeliveryRepository) ListDeliveries(ctx context.Context, filter repositories.DeliveryFilter) ([]*entities.Delivery, error) {
	db := r.db.WithContext(ctx).Model(&deliveryModel{})
	if filter.IngredientID != 0 {
		db = db.Where("ingredient_id = ?", int64(filter.IngredientID))
	}
	db = between(db, "delivery_date", filter.From, filter.To)

	var models []deliveryModel
	if err := paginate(db.Order("delivery_date DESC, id DESC"), filter.Page).Find(&models).Error; err != nil {
		return nil, translate(err, "delivery", nil)
	}
	result := make([]*entities.Delivery, 0, len(models))
	for _, m := range models {
		result = append(result, m.toEntity())
	}
	return result, nil
}
