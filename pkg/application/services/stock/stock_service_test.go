package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/kitchen/pkg/infrastructure/testing"
	"go.uber.org/zap"
)

var now = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	low []string
}

func (n *recordingNotifier) LowStock(ctx context.Context, ingredient entities.Ingredient) error {
	n.low = append(n.low, ingredient.Name)
	return nil
}

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.types = append(p.types, event.Type())
}

func newTestService(t *testing.T) (*Service, *testhelpers.Kitchen, *recordingNotifier, *recordingPublisher) {
	t.Helper()
	kitchen := testhelpers.BuildSoupKitchen(t, testhelpers.FixedClock(now))
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	service := NewService(kitchen.Store, notifier, publisher, zap.NewNop()).WithClock(testhelpers.FixedClock(now))
	return service, kitchen, notifier, publisher
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	service, _, notifier, _ := newTestService(t)

	tests := []struct {
		name       string
		ingredient string
		quantity   int64
		min        int64
		wantErr    error
		wantLow    bool
	}{
		{"new ingredient", "pepper", 500, 50, nil, false},
		{"starts below minimum", "saffron", 1, 5, nil, true},
		{"duplicate name", "salt", 10, 1, entities.ErrConflict, false},
		{"negative quantity", "sugar", -1, 0, entities.ErrValidation, false},
		{"blank name", "  ", 1, 0, entities.ErrValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier.low = nil
			created, err := service.Create(ctx, tt.ingredient, testhelpers.Grams(tt.quantity), testhelpers.Grams(tt.min))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected create to succeed: %v", err)
			}
			if created.ID == 0 {
				t.Error("Expected an id to be assigned")
			}
			if got := len(notifier.low) == 1; got != tt.wantLow {
				t.Errorf("Expected low stock notice %v, got %v", tt.wantLow, notifier.low)
			}
		})
	}
}

func TestUpdate_OnlyNameAndMinimum(t *testing.T) {
	ctx := context.Background()
	service, kitchen, notifier, _ := newTestService(t)
	salt := kitchen.Ingredients["salt"]

	name := "sea salt"
	min := testhelpers.Grams(150)
	updated, err := service.Update(ctx, salt.ID, IngredientUpdate{Name: &name, MinQuantity: &min})
	if err != nil {
		t.Fatalf("Expected update to succeed: %v", err)
	}
	if updated.Name != "sea salt" || !updated.MinQuantity.Equal(min) {
		t.Errorf("Expected sea salt with min 150g, got %s with %s", updated.Name, updated.MinQuantity)
	}
	if !updated.Quantity.Equal(testhelpers.Grams(100)) {
		t.Errorf("Expected quantity to stay 100g, got %s", updated.Quantity)
	}
	if len(notifier.low) != 1 {
		t.Errorf("Expected raising the minimum above stock to notify, got %v", notifier.low)
	}

	taken := "potatoes"
	if _, err := service.Update(ctx, salt.ID, IngredientUpdate{Name: &taken}); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected renaming onto an existing name to conflict, got %v", err)
	}
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	service, kitchen, _, publisher := newTestService(t)
	rice := kitchen.Ingredients["rice"]

	adjusted, err := service.adjust(ctx, kitchen.Store, rice.ID, decimal.NewFromInt(-1500), "spoiled")
	if err != nil {
		t.Fatalf("Expected adjustment to succeed: %v", err)
	}
	if !adjusted.Quantity.Equal(testhelpers.Grams(500)) {
		t.Errorf("Expected 500g, got %s", adjusted.Quantity)
	}

	if _, err := service.adjust(ctx, kitchen.Store, rice.ID, decimal.NewFromInt(-501), "spoiled"); !errors.Is(err, entities.ErrInvalidAdjustment) {
		t.Errorf("Expected invalid adjustment, got %v", err)
	}
	if got := kitchen.Quantity(t, "rice"); !got.Equal(testhelpers.Grams(500)) {
		t.Errorf("Expected refused adjustment to leave 500g, got %s", got)
	}

	// events are the callers' job, after their transaction commits
	if len(publisher.types) != 0 {
		t.Errorf("Expected no events from a bare adjustment, got %v", publisher.types)
	}
}

func TestCorrect(t *testing.T) {
	ctx := context.Background()
	service, kitchen, notifier, _ := newTestService(t)
	onions := kitchen.Ingredients["onions"]

	tests := []struct {
		name     string
		id       entities.IngredientID
		delta    int64
		want     error
		expected int64
	}{
		{"spoilage", onions.ID, -100, nil, 20},
		{"overdraw is bad input", onions.ID, -21, entities.ErrValidation, 20},
		{"zero delta", onions.ID, 0, entities.ErrValidation, 20},
		{"unknown ingredient", 999, 10, entities.ErrNotFound, 20},
		{"recount upwards", onions.ID, 5, nil, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Correct(ctx, tt.id, decimal.NewFromInt(tt.delta), "")
			if tt.want == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if got := kitchen.Quantity(t, "onions"); !got.Equal(testhelpers.Grams(tt.expected)) {
				t.Errorf("Expected %dg, got %s", tt.expected, got)
			}
		})
	}

	if len(notifier.low) == 0 || notifier.low[0] != "onions" {
		t.Errorf("Expected onions to be reported low, got %v", notifier.low)
	}
}

func TestRecordDelivery(t *testing.T) {
	ctx := context.Background()
	service, kitchen, _, publisher := newTestService(t)
	onions := kitchen.Ingredients["onions"]

	delivery, err := service.RecordDelivery(ctx, onions.ID, testhelpers.Grams(380), time.Time{}, kitchen.Manager.ID)
	if err != nil {
		t.Fatalf("Expected delivery to succeed: %v", err)
	}
	if !delivery.DeliveredAt.Equal(now) {
		t.Errorf("Expected delivery to default to now, got %v", delivery.DeliveredAt)
	}
	if got := kitchen.Quantity(t, "onions"); !got.Equal(testhelpers.Grams(500)) {
		t.Errorf("Expected onions at 500g, got %s", got)
	}

	listed, err := service.ListDeliveries(ctx, repositories.DeliveryFilter{IngredientID: onions.ID})
	if err != nil {
		t.Fatalf("Failed to list deliveries: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != delivery.ID {
		t.Errorf("Expected the recorded delivery to be listed, got %v", listed)
	}

	if len(publisher.types) != 2 || publisher.types[0] != events.DeliveryRecordedEvent {
		t.Errorf("Expected delivery then inventory events, got %v", publisher.types)
	}

	tests := []struct {
		name     string
		id       entities.IngredientID
		quantity int64
		want     error
	}{
		{"zero quantity", onions.ID, 0, entities.ErrValidation},
		{"unknown ingredient", 999, 10, entities.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.RecordDelivery(ctx, tt.id, testhelpers.Grams(tt.quantity), now, kitchen.Manager.ID); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
	if got := kitchen.Quantity(t, "onions"); !got.Equal(testhelpers.Grams(500)) {
		t.Errorf("Expected failed deliveries to leave onions at 500g, got %s", got)
	}
}

func TestDelete_ReferencedIngredientConflicts(t *testing.T) {
	ctx := context.Background()
	service, kitchen, _, _ := newTestService(t)

	if _, err := service.Delete(ctx, kitchen.Ingredients["salt"].ID); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected deleting an ingredient used by soup to conflict, got %v", err)
	}

	unused, err := service.Create(ctx, "basil", testhelpers.Grams(30), testhelpers.Grams(0))
	if err != nil {
		t.Fatalf("Failed to create basil: %v", err)
	}
	if _, err := service.Delete(ctx, unused.ID); err != nil {
		t.Errorf("Expected unused ingredient to be deleted, got %v", err)
	}
	if _, err := service.Get(ctx, unused.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected basil to be gone, got %v", err)
	}
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	service, kitchen, _, _ := newTestService(t)

	if _, err := service.Correct(ctx, kitchen.Ingredients["potatoes"].ID, decimal.NewFromInt(-701), "count"); err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	low, err := service.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 1 || low[0].Name != "potatoes" {
		t.Errorf("Expected only potatoes to be low, got %v", low)
	}
}
