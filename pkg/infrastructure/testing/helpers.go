package testing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/memory"
)

// Kitchen is a seeded in-memory store with handles to the seeded rows
type Kitchen struct {
	Store       *memory.Store
	Ingredients map[string]*entities.Ingredient
	Recipes     map[string]*entities.Recipe
	Chef        *entities.User
	Manager     *entities.User
}

// FixedClock returns a clock stuck at t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Grams is shorthand for a whole number of grams
func Grams(g int64) decimal.Decimal {
	return decimal.NewFromInt(g)
}

// MustIngredient creates an ingredient or fails the test
func MustIngredient(t testing.TB, store *memory.Store, name string, quantity, minQuantity int64) *entities.Ingredient {
	t.Helper()
	ingredient, err := entities.NewIngredient(name, Grams(quantity), Grams(minQuantity))
	if err != nil {
		t.Fatalf("Failed to build ingredient %s: %v", name, err)
	}
	if err := store.Ingredients().CreateIngredient(context.Background(), ingredient); err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// MustRecipe creates a recipe from name/grams pairs or fails the test
func MustRecipe(t testing.TB, store *memory.Store, name string, lines ...entities.RecipeLine) *entities.Recipe {
	t.Helper()
	recipe, err := entities.NewRecipe(name, "", 0, lines)
	if err != nil {
		t.Fatalf("Failed to build recipe %s: %v", name, err)
	}
	if err := store.Recipes().CreateRecipe(context.Background(), recipe); err != nil {
		t.Fatalf("Failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// Line builds a recipe line
func Line(ingredient *entities.Ingredient, grams int64) entities.RecipeLine {
	return entities.RecipeLine{IngredientID: ingredient.ID, GramsPerPortion: Grams(grams)}
}

// MustUser creates an active user or fails the test
func MustUser(t testing.TB, store *memory.Store, username string, role entities.Role) *entities.User {
	t.Helper()
	user, err := entities.NewUser(username, username+"@kitchen.test", "", role)
	if err != nil {
		t.Fatalf("Failed to build user %s: %v", username, err)
	}
	user.PasswordHash = "unused"
	if err := store.Users().CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// BuildSoupKitchen seeds the worked example used across service tests:
// soup needs 200g potatoes, 50g onions and 5g salt per portion against
// 1000g, 120g and 100g of stock, so two portions can be served and onions
// limit it.
func BuildSoupKitchen(t testing.TB, now func() time.Time) *Kitchen {
	t.Helper()
	store := memory.NewStoreWithClock(now)

	potatoes := MustIngredient(t, store, "potatoes", 1000, 300)
	onions := MustIngredient(t, store, "onions", 120, 50)
	salt := MustIngredient(t, store, "salt", 100, 10)
	rice := MustIngredient(t, store, "rice", 2000, 500)

	soup := MustRecipe(t, store, "soup",
		Line(potatoes, 200),
		Line(onions, 50),
		Line(salt, 5),
	)
	pilaf := MustRecipe(t, store, "pilaf",
		Line(rice, 150),
		Line(onions, 20),
	)

	return &Kitchen{
		Store: store,
		Ingredients: map[string]*entities.Ingredient{
			"potatoes": potatoes,
			"onions":   onions,
			"salt":     salt,
			"rice":     rice,
		},
		Recipes: map[string]*entities.Recipe{
			"soup":  soup,
			"pilaf": pilaf,
		},
		Chef:    MustUser(t, store, "cook", entities.RoleChef),
		Manager: MustUser(t, store, "boss", entities.RoleManager),
	}
}

// Quantity reads the current stock of an ingredient or fails the test
func (k *Kitchen) Quantity(t testing.TB, name string) decimal.Decimal {
	t.Helper()
	ingredient, err := k.Store.Ingredients().GetIngredient(context.Background(), k.Ingredients[name].ID)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return ingredient.Quantity
}
