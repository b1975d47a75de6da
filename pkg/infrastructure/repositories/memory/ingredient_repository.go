package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

// IngredientRepository provides in-memory ingredient storage
type IngredientRepository struct {
	store *Store
}

// Verify interface compliance
var _ repositories.IngredientRepository = (*IngredientRepository)(nil)

// GetIngredient returns an ingredient by id
func (r *IngredientRepository) GetIngredient(ctx context.Context, id entities.IngredientID) (*entities.Ingredient, error) {
	var found entities.Ingredient
	err := r.store.view(func(st *state) error {
		ingredient, ok := st.ingredients[id]
		if !ok {
			return entities.NewNotFoundError("ingredient", id)
		}
		found = ingredient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// GetIngredientByName returns an ingredient by its unique name
func (r *IngredientRepository) GetIngredientByName(ctx context.Context, name string) (*entities.Ingredient, error) {
	var found entities.Ingredient
	err := r.store.view(func(st *state) error {
		for _, ingredient := range st.ingredients {
			if ingredient.Name == name {
				found = ingredient
				return nil
			}
		}
		return entities.NewNotFoundError("ingredient", name)
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// ListIngredients returns ingredients ordered by id
func (r *IngredientRepository) ListIngredients(ctx context.Context, page repositories.Page) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	err := r.store.view(func(st *state) error {
		ingredients = sortedIngredients(st, func(entities.Ingredient) bool { return true })
		return nil
	})
	return paginate(ingredients, page), err
}

// CreateIngredient stores a new ingredient and assigns its id
func (r *IngredientRepository) CreateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	return r.store.update(func(st *state) error {
		for _, existing := range st.ingredients {
			if existing.Name == ingredient.Name {
				return entities.NewConflictError("ingredient", fmt.Sprintf("name %q already exists", ingredient.Name))
			}
		}
		st.seq.ingredient++
		ingredient.ID = entities.IngredientID(st.seq.ingredient)
		ingredient.CreatedAt = r.store.now()
		ingredient.UpdatedAt = ingredient.CreatedAt
		st.ingredients[ingredient.ID] = *ingredient
		return nil
	})
}

// UpdateIngredient saves name and minimum quantity
func (r *IngredientRepository) UpdateIngredient(ctx context.Context, ingredient *entities.Ingredient) error {
	return r.store.update(func(st *state) error {
		existing, ok := st.ingredients[ingredient.ID]
		if !ok {
			return entities.NewNotFoundError("ingredient", ingredient.ID)
		}
		for id, other := range st.ingredients {
			if id != ingredient.ID && other.Name == ingredient.Name {
				return entities.NewConflictError("ingredient", fmt.Sprintf("name %q already exists", ingredient.Name))
			}
		}
		existing.Name = ingredient.Name
		existing.MinQuantity = ingredient.MinQuantity
		existing.UpdatedAt = r.store.now()
		st.ingredients[ingredient.ID] = existing
		*ingredient = existing
		return nil
	})
}

// DeleteIngredient removes an ingredient that no recipe or history references
func (r *IngredientRepository) DeleteIngredient(ctx context.Context, id entities.IngredientID) error {
	return r.store.update(func(st *state) error {
		if _, ok := st.ingredients[id]; !ok {
			return entities.NewNotFoundError("ingredient", id)
		}
		for _, recipe := range st.recipes {
			if _, uses := recipe.Uses(id); uses {
				return entities.NewConflictError("ingredient", fmt.Sprintf("used by meal %q", recipe.Name))
			}
		}
		for _, delivery := range st.deliveries {
			if delivery.IngredientID == id {
				return entities.NewConflictError("ingredient", "has recorded deliveries")
			}
		}
		delete(st.ingredients, id)
		return nil
	})
}

// LockIngredients returns the ingredients in ascending id order. The store
// serializes transactions, so no per-row lock is needed.
func (r *IngredientRepository) LockIngredients(ctx context.Context, ids []entities.IngredientID) ([]*entities.Ingredient, error) {
	wanted := make(map[entities.IngredientID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var ingredients []*entities.Ingredient
	err := r.store.view(func(st *state) error {
		ingredients = sortedIngredients(st, func(i entities.Ingredient) bool { return wanted[i.ID] })
		return nil
	})
	return ingredients, err
}

// AdjustQuantity applies delta unless the result would be negative
func (r *IngredientRepository) AdjustQuantity(ctx context.Context, id entities.IngredientID, delta decimal.Decimal) (*entities.Ingredient, error) {
	var updated entities.Ingredient
	err := r.store.update(func(st *state) error {
		ingredient, ok := st.ingredients[id]
		if !ok {
			return entities.NewNotFoundError("ingredient", id)
		}
		next := ingredient.Quantity.Add(delta)
		if next.IsNegative() {
			return &entities.InvalidAdjustmentError{IngredientID: id, Delta: delta}
		}
		ingredient.Quantity = next
		ingredient.UpdatedAt = r.store.now()
		st.ingredients[id] = ingredient
		updated = ingredient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListLowStock returns ingredients strictly below their minimum
func (r *IngredientRepository) ListLowStock(ctx context.Context) ([]*entities.Ingredient, error) {
	var ingredients []*entities.Ingredient
	err := r.store.view(func(st *state) error {
		ingredients = sortedIngredients(st, entities.Ingredient.IsLow)
		return nil
	})
	return ingredients, err
}

func sortedIngredients(st *state, keep func(entities.Ingredient) bool) []*entities.Ingredient {
	ingredients := make([]*entities.Ingredient, 0, len(st.ingredients))
	for _, ingredient := range st.ingredients {
		if keep(ingredient) {
			ingredient := ingredient
			ingredients = append(ingredients, &ingredient)
		}
	}
	sort.Slice(ingredients, func(i, j int) bool {
		return ingredients[i].ID < ingredients[j].ID
	})
	return ingredients
}
