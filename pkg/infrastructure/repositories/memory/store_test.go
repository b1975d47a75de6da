package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
}

func addIngredient(t *testing.T, store *Store, name string, qty, min int64) *entities.Ingredient {
	t.Helper()
	ingredient := &entities.Ingredient{Name: name, Quantity: decimal.NewFromInt(qty), MinQuantity: decimal.NewFromInt(min)}
	if err := store.Ingredients().CreateIngredient(context.Background(), ingredient); err != nil {
		t.Fatalf("Failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

func TestIngredientRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStoreWithClock(fixedClock())

	flour := addIngredient(t, store, "flour", 1000, 100)
	if flour.ID != 1 {
		t.Errorf("Expected first id 1, got %d", flour.ID)
	}

	got, err := store.Ingredients().GetIngredient(ctx, flour.ID)
	if err != nil {
		t.Fatalf("Failed to get ingredient: %v", err)
	}
	if got.Name != "flour" || !got.Quantity.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected flour with 1000g, got %s with %s", got.Name, got.Quantity)
	}

	duplicate := &entities.Ingredient{Name: "flour"}
	if err := store.Ingredients().CreateIngredient(ctx, duplicate); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected conflict on duplicate name, got %v", err)
	}

	if _, err := store.Ingredients().GetIngredient(ctx, 99); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestIngredientRepository_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	salt := addIngredient(t, store, "salt", 50, 10)

	updated, err := store.Ingredients().AdjustQuantity(ctx, salt.ID, decimal.NewFromInt(-50))
	if err != nil {
		t.Fatalf("Expected adjustment to zero to succeed: %v", err)
	}
	if !updated.Quantity.IsZero() {
		t.Errorf("Expected 0g, got %s", updated.Quantity)
	}

	_, err = store.Ingredients().AdjustQuantity(ctx, salt.ID, decimal.NewFromInt(-1))
	if !errors.Is(err, entities.ErrInvalidAdjustment) {
		t.Fatalf("Expected invalid adjustment, got %v", err)
	}

	current, _ := store.Ingredients().GetIngredient(ctx, salt.ID)
	if !current.Quantity.IsZero() {
		t.Errorf("Expected refused adjustment to leave 0g, got %s", current.Quantity)
	}
}

func TestIngredientRepository_ListLowStockIsStrict(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	addIngredient(t, store, "low", 5, 10)
	addIngredient(t, store, "exact", 10, 10)
	addIngredient(t, store, "plenty", 100, 10)

	low, err := store.Ingredients().ListLowStock(ctx)
	if err != nil {
		t.Fatalf("Failed to list low stock: %v", err)
	}
	if len(low) != 1 || low[0].Name != "low" {
		t.Errorf("Expected only 'low', got %v", low)
	}
}

func TestIngredientRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		addIngredient(t, store, name, 1, 0)
	}

	tests := []struct {
		page     repositories.Page
		expected []string
	}{
		{repositories.Page{}, []string{"a", "b", "c", "d", "e"}},
		{repositories.Page{Offset: 1, Limit: 2}, []string{"b", "c"}},
		{repositories.Page{Offset: 4, Limit: 10}, []string{"e"}},
		{repositories.Page{Offset: 10, Limit: 10}, []string{}},
	}

	for _, tt := range tests {
		got, err := store.Ingredients().ListIngredients(ctx, tt.page)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(got) != len(tt.expected) {
			t.Fatalf("Expected %d ingredients for %+v, got %d", len(tt.expected), tt.page, len(got))
		}
		for i, name := range tt.expected {
			if got[i].Name != name {
				t.Errorf("Expected %s at %d, got %s", name, i, got[i].Name)
			}
		}
	}
}

func TestStore_AtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	rice := addIngredient(t, store, "rice", 100, 0)
	beans := addIngredient(t, store, "beans", 100, 0)

	boom := errors.New("boom")
	err := store.Atomically(ctx, func(tx repositories.Store) error {
		if _, err := tx.Ingredients().AdjustQuantity(ctx, rice.ID, decimal.NewFromInt(-60)); err != nil {
			return err
		}
		if _, err := tx.Ingredients().AdjustQuantity(ctx, beans.ID, decimal.NewFromInt(-60)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	for _, id := range []entities.IngredientID{rice.ID, beans.ID} {
		got, _ := store.Ingredients().GetIngredient(ctx, id)
		if !got.Quantity.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected ingredient %d to stay at 100g, got %s", id, got.Quantity)
		}
	}

	err = store.Atomically(ctx, func(tx repositories.Store) error {
		_, err := tx.Ingredients().AdjustQuantity(ctx, rice.ID, decimal.NewFromInt(-60))
		return err
	})
	if err != nil {
		t.Fatalf("Expected commit to succeed: %v", err)
	}
	got, _ := store.Ingredients().GetIngredient(ctx, rice.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected committed 40g, got %s", got.Quantity)
	}
}

func TestRecipeRepository_ReplaceLinesAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	a := addIngredient(t, store, "a", 100, 0)
	b := addIngredient(t, store, "b", 100, 0)

	recipe := &entities.Recipe{Name: "mix", Lines: []entities.RecipeLine{{IngredientID: a.ID, GramsPerPortion: decimal.NewFromInt(10)}}}
	if err := store.Recipes().CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	recipe.Lines = []entities.RecipeLine{{IngredientID: b.ID, GramsPerPortion: decimal.NewFromInt(5)}}
	if err := store.Recipes().UpdateRecipe(ctx, recipe); err != nil {
		t.Fatalf("Failed to update recipe: %v", err)
	}

	got, _ := store.Recipes().GetRecipe(ctx, recipe.ID)
	if len(got.Lines) != 1 || got.Lines[0].IngredientID != b.ID {
		t.Errorf("Expected lines to be replaced by b, got %+v", got.Lines)
	}

	using, _ := store.Recipes().ListRecipesUsing(ctx, a.ID)
	if len(using) != 0 {
		t.Errorf("Expected no recipe using a after replace, got %d", len(using))
	}

	if err := store.Ingredients().DeleteIngredient(ctx, b.ID); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected conflict deleting used ingredient, got %v", err)
	}

	if err := store.Servings().CreateServing(ctx, &entities.Serving{RecipeID: recipe.ID, Portions: 1}); err != nil {
		t.Fatalf("Failed to create serving: %v", err)
	}
	if err := store.Recipes().DeleteRecipe(ctx, recipe.ID); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected conflict deleting served recipe, got %v", err)
	}
}

func TestReportRepository_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := &entities.MonthlyReport{Month: 3, Year: 2025, TotalPortionsServed: 10}
	if err := store.Reports().UpsertReport(ctx, first); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	second := &entities.MonthlyReport{Month: 3, Year: 2025, TotalPortionsServed: 12}
	if err := store.Reports().UpsertReport(ctx, second); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected upsert to keep id %d, got %d", first.ID, second.ID)
	}
	got, _ := store.Reports().GetReport(ctx, 3, 2025)
	if got.TotalPortionsServed != 12 {
		t.Errorf("Expected overwritten total 12, got %d", got.TotalPortionsServed)
	}
	if _, err := store.Reports().GetReport(ctx, 4, 2025); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found for April, got %v", err)
	}
}

func TestAlertRepository_UnreadAndMarkRead(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	ingredientID := entities.IngredientID(4)

	for i := 0; i < 3; i++ {
		alert := &entities.Alert{Kind: entities.AlertIngredientLow, Message: "low", RelatedIngredientID: &ingredientID}
		if err := store.Alerts().CreateAlert(ctx, alert); err != nil {
			t.Fatalf("Failed to create alert: %v", err)
		}
	}

	if _, err := store.Alerts().MarkRead(ctx, 2); err != nil {
		t.Fatalf("Failed to mark read: %v", err)
	}

	unread, _ := store.Alerts().ListAlerts(ctx, true, repositories.Page{})
	if len(unread) != 2 || unread[0].ID != 3 {
		t.Errorf("Expected 2 unread alerts newest first, got %d", len(unread))
	}

	has, _ := store.Alerts().HasUnreadForIngredient(ctx, entities.AlertIngredientLow, ingredientID)
	if !has {
		t.Error("Expected an unread low-stock alert for the ingredient")
	}

	if _, err := store.Alerts().MarkRead(ctx, 42); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestHistoryRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	a := addIngredient(t, store, "a", 10000, 0)
	b := addIngredient(t, store, "b", 10000, 0)

	soup := &entities.Recipe{Name: "soup", Lines: []entities.RecipeLine{
		{IngredientID: a.ID, GramsPerPortion: decimal.NewFromInt(100)},
		{IngredientID: b.ID, GramsPerPortion: decimal.NewFromInt(20)},
	}}
	if err := store.Recipes().CreateRecipe(ctx, soup); err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}

	day1 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []entities.Serving{
		{RecipeID: soup.ID, Portions: 2, ServedAt: day1},
		{RecipeID: soup.ID, Portions: 3, ServedAt: day1.Add(2 * time.Hour)},
		{RecipeID: soup.ID, Portions: 4, ServedAt: day3},
		{RecipeID: soup.ID, Portions: 9, ServedAt: april},
	} {
		s := s
		if err := store.Servings().CreateServing(ctx, &s); err != nil {
			t.Fatalf("Failed to create serving: %v", err)
		}
	}
	if err := store.Deliveries().CreateDelivery(ctx, &entities.Delivery{IngredientID: a.ID, Quantity: decimal.NewFromInt(500), DeliveredAt: day3}); err != nil {
		t.Fatalf("Failed to create delivery: %v", err)
	}

	from, to := entities.MonthBounds(3, 2025)
	history := store.History()

	served, _ := history.PortionsServed(ctx, from, to)
	if served != 9 {
		t.Errorf("Expected 9 portions in March, got %d", served)
	}

	daily, _ := history.DailyPortions(ctx, soup.ID, from, to)
	if len(daily) != 2 || daily[0].Total != 5 || daily[1].Total != 4 {
		t.Errorf("Expected daily portions [5 4], got %+v", daily)
	}

	usage, _ := history.DailyIngredientUsage(ctx, a.ID, from, to)
	if len(usage) != 2 || !usage[0].Total.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected 500g of a used on day 1, got %+v", usage)
	}

	deliveries, _ := history.DailyDeliveries(ctx, a.ID, from, to)
	if len(deliveries) != 1 || !deliveries[0].Day.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected one delivery day on March 3, got %+v", deliveries)
	}

	movements, _ := history.IngredientMovements(ctx, from, to)
	if len(movements) != 2 {
		t.Fatalf("Expected movements for 2 ingredients, got %d", len(movements))
	}
	if !movements[1].Used.Equal(decimal.NewFromInt(180)) {
		t.Errorf("Expected 180g of b used, got %s", movements[1].Used)
	}
	if !movements[0].Delivered.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected 500g of a delivered, got %s", movements[0].Delivered)
	}
}
