package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository stores ingredients with gorm
type IngredientRepository struct {
	db *gorm.DB
}

var _ repositories.IngredientRepository = (*IngredientRepository)(nil)

// GetIngredient returns an ingredient by id
func (r *IngredientRepository) GetIngredient(ctx context.Context, id entities.IngredientID) (*entities.Ingredient, error) {
	var m ingredientModel
	if err := r.db.WithContext(ctx).First(&m, int64(id)).Error; err != nil {
		return nil, translate(err, "ingredient", id)
	}
	return m.toEntity(), nil
}

// GetIngredientByName returns an ingredient by exact name
func (r *IngredientRepository) GetIngredientByName(ctx context.Context, name string) (*entities.Ingredient, error) {
	var m ingredientModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return nil, translate(err, "ingredient", name)
	}
	return m.toEntity(), nil
}

// ListIngredients returns a page of ingredients ordered by id
func (r *IngredientRepository) ListIngredients(ctx context.Context, page repositories.Page) ([]*entities.Ingredient, error) {
	var models []ingredientModel
	if err := paginate(r.db.WithContext(ctx).Order("id"), page).Find(&models).Error; err != nil {
		return nil, translate(err, "ingredient", nil)
	}
	return ingredientEntities(models), nil
}

// CreateIngredient inserts an ingredient and sets its id
func (r *IngredientRepository) CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	m := toIngredientModel(ingredient)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "ingredient", ingredient.Name)
	}
	*ingredient = *m.toEntity()
	return nil
}

// UpdateIngredient saves name and minimum quantity; stock only moves through AdjustQuantity
func (r *IngredientRepository) UpdateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	result := r.db.WithContext(ctx).Model(&ingredientModel{}).
		Where("id = ?", int64(ingredient.ID)).
		Updates(map[string]interface{}{
			"name":         ingredient.Name,
			"min_quantity": ingredient.MinQuantity,
		})
	if result.Error != nil {
		return translate(result.Error, "ingredient", ingredient.ID)
	}
	if result.RowsAffected == 0 {
		return entities.NewNotFoundError("ingredient", ingredient.ID)
	}

	updated, err := r.GetIngredient(ctx, ingredient.ID)
	if err != nil {
		return err
	}
	*ingredient = *updated
	return nil
}

// DeleteIngredient refuses ingredients used by a meal or with recorded deliveries
func (r *IngredientRepository) DeleteIngredient(ctx context.Context, id entities.IngredientID) error {
	db := r.db.WithContext(ctx)

	var used int64
	if err := db.Model(&recipeLineModel{}).Where("ingredient_id = ?", int64(id)).Count(&used).Error; err != nil {
		return translate(err, "ingredient", id)
	}
	if used > 0 {
		return entities.NewConflictError("ingredient", fmt.Sprintf("used by %d meals", used))
	}
	var delivered int64
	if err := db.Model(&deliveryModel{}).Where("ingredient_id = ?", int64(id)).Count(&delivered).Error; err != nil {
		return translate(err, "ingredient", id)
	}
	if delivered > 0 {
		return entities.NewConflictError("ingredient", "has recorded deliveries")
	}

	result := db.Delete(&ingredientModel{}, int64(id))
	if result.Error != nil {
		return translate(result.Error, "ingredient", id)
	}
	if result.RowsAffected == 0 {
		return entities.NewNotFoundError("ingredient", id)
	}
	return nil
}

// LockIngredients selects the rows FOR UPDATE in id order so concurrent
// servings acquire locks in the same sequence
func (r *IngredientRepository) LockIngredients(ctx context.Context, ids []entities.IngredientID) ([]*entities.Ingredient, error) {
	if len(ids) == 0 {
		return []*entities.Ingredient{}, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}

	var models []ingredientModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", raw).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "ingredient", nil)
	}
	return ingredientEntities(models), nil
}

// AdjustQuantity applies delta in one guarded UPDATE that refuses to go below zero
func (r *IngredientRepository) AdjustQuantity(ctx context.Context, id entities.IngredientID, delta decimal.Decimal) (*entities.Ingredient, error) {
	result := r.db.WithContext(ctx).Model(&ingredientModel{}).
		Where("id = ? AND quantity + ? >= 0", int64(id), delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return nil, translate(result.Error, "ingredient", id)
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetIngredient(ctx, id); err != nil {
			return nil, err
		}
		return nil, &entities.InvalidAdjustmentError{IngredientID: id, Delta: delta}
	}
	return r.GetIngredient(ctx, id)
}

// ListLowStock returns ingredients strictly below their minimum
func (r *IngredientRepository) ListLowStock(ctx context.Context) ([]*entities.Ingredient, error) {
	var models []ingredientModel
	if err := r.db.WithContext(ctx).Where("quantity < min_quantity").Order("id").Find(&models).Error; err != nil {
		return nil, translate(err, "ingredient", nil)
	}
	return ingredientEntities(models), nil
}

func ingredientEntities(models []ingredientModel) []*entities.Ingredient {
	result := make([]*entities.Ingredient, 0, len(models))
	for _, m := range models {
		result = append(result, m.toEntity())
	}
	return result
}
