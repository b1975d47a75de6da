package repositories

import "context"

// Page bounds a list query; a zero Limit means no limit
type Page struct {
	Offset int
	Limit  int
}

// DefaultPage matches the API defaults of skip=0, limit=100
func DefaultPage() Page {
	return Page{Offset: 0, Limit: 100}
}

// Store groups the repositories of one backend and runs units of work
type Store interface {
	Ingredients() IngredientRepository
	Recipes() RecipeRepository
	Servings() ServingRepository
	Deliveries() DeliveryRepository
	Reports() ReportRepository
	Alerts() AlertRepository
	Users() UserRepository
	History() HistoryRepository

	// Atomically runs fn in a single transaction. Every repository reached
	// through tx participates in it; a non-nil error rolls everything back.
	Atomically(ctx context.Context, fn func(tx Store) error) error
}
