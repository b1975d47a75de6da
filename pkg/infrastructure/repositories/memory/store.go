package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

type period struct {
	month int
	year  int
}

type sequences struct {
	ingredient int64
	recipe     int64
	serving    int64
	delivery   int64
	report     int64
	alert      int64
	user       int64
}

// state is everything the store holds; transactions work on a clone of it
type state struct {
	ingredients map[entities.IngredientID]entities.Ingredient
	recipes     map[entities.RecipeID]entities.Recipe
	servings    []entities.Serving
	deliveries  []entities.Delivery
	reports     map[period]entities.MonthlyReport
	alerts      []entities.Alert
	users       map[entities.UserID]entities.User
	seq         sequences
}

func newState() *state {
	return &state{
		ingredients: make(map[entities.IngredientID]entities.Ingredient),
		recipes:     make(map[entities.RecipeID]entities.Recipe),
		servings:    make([]entities.Serving, 0),
		deliveries:  make([]entities.Delivery, 0),
		reports:     make(map[period]entities.MonthlyReport),
		alerts:      make([]entities.Alert, 0),
		users:       make(map[entities.UserID]entities.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		ingredients: make(map[entities.IngredientID]entities.Ingredient, len(s.ingredients)),
		recipes:     make(map[entities.RecipeID]entities.Recipe, len(s.recipes)),
		servings:    append(make([]entities.Serving, 0, len(s.servings)), s.servings...),
		deliveries:  append(make([]entities.Delivery, 0, len(s.deliveries)), s.deliveries...),
		reports:     make(map[period]entities.MonthlyReport, len(s.reports)),
		alerts:      make([]entities.Alert, 0, len(s.alerts)),
		users:       make(map[entities.UserID]entities.User, len(s.users)),
		seq:         s.seq,
	}
	for id, ingredient := range s.ingredients {
		c.ingredients[id] = ingredient
	}
	for id, recipe := range s.recipes {
		c.recipes[id] = copyRecipe(recipe)
	}
	for key, report := range s.reports {
		c.reports[key] = report
	}
	for _, alert := range s.alerts {
		c.alerts = append(c.alerts, copyAlert(alert))
	}
	for id, user := range s.users {
		c.users[id] = user
	}
	return c
}

type database struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

// Store is an in-memory repositories.Store. Transactions are serialized and
// applied to a private copy of the state that replaces the shared state on commit.
type Store struct {
	db *database
	tx *state
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates an empty in-memory store stamping records with now
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{db: &database{state: newState(), now: now}}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

func (s *Store) Ingredients() repositories.IngredientRepository { return &IngredientRepository{store: s} }
func (s *Store) Recipes() repositories.RecipeRepository         { return &RecipeRepository{store: s} }
func (s *Store) Servings() repositories.ServingRepository       { return &ServingRepository{store: s} }
func (s *Store) Deliveries() repositories.DeliveryRepository    { return &DeliveryRepository{store: s} }
func (s *Store) Reports() repositories.ReportRepository         { return &ReportRepository{store: s} }
func (s *Store) Alerts() repositories.AlertRepository           { return &AlertRepository{store: s} }
func (s *Store) Users() repositories.UserRepository             { return &UserRepository{store: s} }
func (s *Store) History() repositories.HistoryRepository        { return &HistoryRepository{store: s} }

// Atomically runs fn against a copy of the state and publishes the copy only if fn succeeds
func (s *Store) Atomically(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	work := s.db.state.clone()
	if err := fn(&Store{db: s.db, tx: work}); err != nil {
		return err
	}
	s.db.state = work
	return nil
}

func (s *Store) view(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.state)
}

func (s *Store) update(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.state)
}

func (s *Store) now() time.Time {
	return s.db.now().UTC()
}

func paginate[T any](items []T, page repositories.Page) []T {
	if page.Offset >= len(items) {
		return items[:0]
	}
	if page.Offset > 0 {
		items = items[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func copyRecipe(r entities.Recipe) entities.Recipe {
	r.Lines = append([]entities.RecipeLine(nil), r.Lines...)
	return r
}

func copyAlert(a entities.Alert) entities.Alert {
	if a.RelatedIngredientID != nil {
		id := *a.RelatedIngredientID
		a.RelatedIngredientID = &id
	}
	if a.RelatedReportID != nil {
		id := *a.RelatedReportID
		a.RelatedReportID = &id
	}
	return a
}
