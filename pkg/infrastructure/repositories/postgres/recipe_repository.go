package postgres

import (
	"context"
	"fmt"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"gorm.io/gorm"
)

// RecipeRepository stores meals and their ingredient lines
type RecipeRepository struct {
	db *gorm.DB
}

var _ repositories.RecipeRepository = (*RecipeRepository)(nil)

func (r *RecipeRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("meal_ingredients.id")
	})
}

// GetRecipe returns a meal with its lines
func (r *RecipeRepository) GetRecipe(ctx context.Context, id entities.RecipeID) (*entities.Recipe, error) {
	var m recipeModel
	if err := r.withLines(ctx).First(&m, int64(id)).Error; err != nil {
		return nil, translate(err, "meal", id)
	}
	return m.toEntity(), nil
}

// GetRecipeByName returns a meal by exact name
func (r *RecipeRepository) GetRecipeByName(ctx context.Context, name string) (*entities.Recipe, error) {
	var m recipeModel
	if err := r.withLines(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return nil, translate(err, "meal", name)
	}
	return m.toEntity(), nil
}

// ListRecipes returns a page of meals with their lines
func (r *RecipeRepository) ListRecipes(ctx context.Context, page repositories.Page) ([]*entities.Recipe, error) {
	var models []recipeModel
	if err := paginate(r.withLines(ctx).Order("id"), page).Find(&models).Error; err != nil {
		return nil, translate(err, "meal", nil)
	}
	return recipeEntities(models), nil
}

// ListRecipesUsing returns the meals with a line for ingredientID
func (r *RecipeRepository) ListRecipesUsing(ctx context.Context, ingredientID entities.IngredientID) ([]*entities.Recipe, error) {
	var models []recipeModel
	err := r.withLines(ctx).
		Where("id IN (?)", r.db.Model(&recipeLineModel{}).Select("meal_id").Where("ingredient_id = ?", int64(ingredientID))).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "meal", nil)
	}
	return recipeEntities(models), nil
}

// CreateRecipe inserts a meal and its lines
func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	m := toRecipeModel(recipe)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "meal", recipe.Name)
	}
	*recipe = *m.toEntity()
	return nil
}

// UpdateRecipe replaces the meal's fields and its whole line set
func (r *RecipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe) error {
	m := toRecipeModel(recipe)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&recipeModel{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"name":        m.Name,
			"description": m.Description,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("meal_id = ?", m.ID).Delete(&recipeLineModel{}).Error; err != nil {
			return err
		}
		if len(m.Lines) > 0 {
			return tx.Create(&m.Lines).Error
		}
		return nil
	})
	if err != nil {
		return translate(err, "meal", recipe.ID)
	}

	updated, err := r.GetRecipe(ctx, recipe.ID)
	if err != nil {
		return err
	}
	*recipe = *updated
	return nil
}

// DeleteRecipe removes a meal that has never been served
func (r *RecipeRepository) DeleteRecipe(ctx context.Context, id entities.RecipeID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var served int64
		if err := tx.Model(&servingModel{}).Where("meal_id = ?", int64(id)).Count(&served).Error; err != nil {
			return translate(err, "meal", id)
		}
		if served > 0 {
			return entities.NewConflictError("meal", fmt.Sprintf("meal has %d recorded servings", served))
		}
		if err := tx.Where("meal_id = ?", int64(id)).Delete(&recipeLineModel{}).Error; err != nil {
			return translate(err, "meal", id)
		}
		result := tx.Delete(&recipeModel{}, int64(id))
		if result.Error != nil {
			return translate(result.Error, "meal", id)
		}
		if result.RowsAffected == 0 {
			return entities.NewNotFoundError("meal", id)
		}
		return nil
	})
}

func recipeEntities(models []recipeModel) []*entities.Recipe {
	result := make([]*entities.Recipe, 0, len(models))
	for _, m := range models {
		result = append(result, m.toEntity())
	}
	return result
}
