package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	testhelpers "github.com/vsinha/kitchen/pkg/infrastructure/testing"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *testhelpers.Kitchen) {
	t.Helper()
	kitchen := testhelpers.BuildSoupKitchen(t, testhelpers.FixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))
	return NewService(kitchen.Store, domain.NewPortionCalculator(domain.DefaultPortionPolicy()), zap.NewNop()), kitchen
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	service, kitchen := newTestService(t)
	rice := kitchen.Ingredients["rice"]
	salt := kitchen.Ingredients["salt"]

	tests := []struct {
		name    string
		input   RecipeInput
		wantErr error
	}{
		{
			name:  "valid meal",
			input: RecipeInput{Name: "salted rice", Lines: []entities.RecipeLine{testhelpers.Line(rice, 100), testhelpers.Line(salt, 2)}},
		},
		{
			name:    "duplicate name",
			input:   RecipeInput{Name: "soup", Lines: []entities.RecipeLine{testhelpers.Line(rice, 100)}},
			wantErr: entities.ErrConflict,
		},
		{
			name:    "unknown ingredient",
			input:   RecipeInput{Name: "mystery", Lines: []entities.RecipeLine{{IngredientID: 404, GramsPerPortion: testhelpers.Grams(1)}}},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "repeated ingredient",
			input:   RecipeInput{Name: "double rice", Lines: []entities.RecipeLine{testhelpers.Line(rice, 100), testhelpers.Line(rice, 50)}},
			wantErr: entities.ErrValidation,
		},
		{
			name:    "zero grams",
			input:   RecipeInput{Name: "air", Lines: []entities.RecipeLine{testhelpers.Line(rice, 0)}},
			wantErr: entities.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := service.Create(ctx, tt.input, kitchen.Chef.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected create to succeed: %v", err)
			}
			if recipe.CreatedBy != kitchen.Chef.ID {
				t.Errorf("Expected creator %d, got %d", kitchen.Chef.ID, recipe.CreatedBy)
			}
			if len(recipe.Lines) != len(tt.input.Lines) {
				t.Errorf("Expected %d lines, got %d", len(tt.input.Lines), len(recipe.Lines))
			}
		})
	}
}

func TestUpdate_ReplacesLines(t *testing.T) {
	ctx := context.Background()
	service, kitchen := newTestService(t)
	soup := kitchen.Recipes["soup"]

	updated, err := service.Update(ctx, soup.ID, RecipeInput{
		Name:  "potato soup",
		Lines: []entities.RecipeLine{testhelpers.Line(kitchen.Ingredients["potatoes"], 250)},
	})
	if err != nil {
		t.Fatalf("Expected update to succeed: %v", err)
	}
	if updated.Name != "potato soup" || len(updated.Lines) != 1 {
		t.Errorf("Expected potato soup with 1 line, got %s with %d", updated.Name, len(updated.Lines))
	}

	stored, _ := service.Get(ctx, soup.ID)
	if _, uses := stored.Uses(kitchen.Ingredients["onions"].ID); uses {
		t.Error("Expected onions to be removed from the meal")
	}

	if _, err := service.Update(ctx, soup.ID, RecipeInput{Name: "pilaf"}); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected renaming onto pilaf to conflict, got %v", err)
	}
	if _, err := service.Update(ctx, 999, RecipeInput{Name: "ghost"}); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected unknown meal to be not found, got %v", err)
	}
}

func TestDelete_ServedMealConflicts(t *testing.T) {
	ctx := context.Background()
	service, kitchen := newTestService(t)
	soup := kitchen.Recipes["soup"]

	serving := &entities.Serving{RecipeID: soup.ID, Portions: 1, ServedBy: kitchen.Chef.ID}
	if err := kitchen.Store.Servings().CreateServing(ctx, serving); err != nil {
		t.Fatalf("Failed to record serving: %v", err)
	}

	if _, err := service.Delete(ctx, soup.ID); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected deleting a served meal to conflict, got %v", err)
	}

	deleted, err := service.Delete(ctx, kitchen.Recipes["pilaf"].ID)
	if err != nil {
		t.Fatalf("Expected unserved meal to be deleted: %v", err)
	}
	if deleted.Name != "pilaf" {
		t.Errorf("Expected pilaf to be returned, got %s", deleted.Name)
	}
	remaining, _ := service.List(ctx, repositories.Page{})
	if len(remaining) != 1 {
		t.Errorf("Expected 1 meal left, got %d", len(remaining))
	}
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	service, kitchen := newTestService(t)

	soup, err := service.Availability(ctx, kitchen.Recipes["soup"].ID)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if soup.AvailablePortions != 2 {
		t.Errorf("Expected 2 portions of soup, got %d", soup.AvailablePortions)
	}

	all, err := service.AllAvailability(ctx)
	if err != nil {
		t.Fatalf("AllAvailability failed: %v", err)
	}
	if len(all) != 2 || all[0].RecipeName != "pilaf" || all[0].AvailablePortions != 6 {
		t.Errorf("Expected pilaf (6) first, got %+v", all)
	}

	impact, err := service.IngredientImpact(ctx, kitchen.Ingredients["onions"].ID)
	if err != nil {
		t.Fatalf("IngredientImpact failed: %v", err)
	}
	if len(impact) != 2 {
		t.Fatalf("Expected onions to affect 2 meals, got %d", len(impact))
	}
	for _, entry := range impact {
		if !entry.IsLimiting {
			t.Errorf("Expected onions to limit %s", entry.RecipeName)
		}
	}

	if _, err := service.Availability(ctx, 999); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}
