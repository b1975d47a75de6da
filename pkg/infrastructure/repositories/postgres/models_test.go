package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"gorm.io/gorm"
)

func TestRecipeModelRoundTrip(t *testing.T) {
	recipe := &entities.Recipe{
		ID:          7,
		Name:        "soup",
		Description: "thick",
		Lines: []entities.RecipeLine{
			{IngredientID: 1, GramsPerPortion: decimal.NewFromInt(200)},
			{IngredientID: 2, GramsPerPortion: decimal.RequireFromString("12.5")},
		},
	}

	m := toRecipeModel(recipe)
	if m.CreatedBy != nil {
		t.Errorf("Expected no creator for a zero user id, got %d", *m.CreatedBy)
	}
	for _, line := range m.Lines {
		if line.MealID != 7 {
			t.Errorf("Expected line to reference meal 7, got %d", line.MealID)
		}
	}

	back := m.toEntity()
	if back.Name != "soup" || len(back.Lines) != 2 {
		t.Fatalf("Expected soup with 2 lines, got %s with %d", back.Name, len(back.Lines))
	}
	if !back.Lines[1].GramsPerPortion.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Expected 12.5 g, got %s", back.Lines[1].GramsPerPortion)
	}
	if back.CreatedBy != 0 {
		t.Errorf("Expected zero creator, got %d", back.CreatedBy)
	}
}

func TestAlertModelRoundTrip(t *testing.T) {
	ingredientID := entities.IngredientID(3)
	alert := &entities.Alert{
		Kind:                entities.AlertIngredientLow,
		Message:             "low",
		RelatedIngredientID: &ingredientID,
	}

	m := toAlertModel(alert)
	if m.AlertType != "ingredient_low" {
		t.Errorf("Expected ingredient_low, got %s", m.AlertType)
	}
	if m.RelatedReportID != nil {
		t.Error("Expected no related report")
	}

	back, err := m.toEntity()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if back.RelatedID() != 3 {
		t.Errorf("Expected related id 3, got %d", back.RelatedID())
	}

	m.AlertType = "bogus"
	if _, err := m.toEntity(); err == nil {
		t.Error("Expected error for unknown alert type")
	}
}

func TestUserModelRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	m := toUserModel(&entities.User{
		ID:           4,
		Username:     "boss",
		Email:        "boss@kitchen.test",
		PasswordHash: "hash",
		Role:         entities.RoleManager,
		Active:       true,
		CreatedAt:    created,
	})
	if m.Role != "manager" || m.HashedPassword != "hash" {
		t.Errorf("Expected manager with hash, got %s / %s", m.Role, m.HashedPassword)
	}

	user, err := m.toEntity()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.CreatedAt.Location() != time.UTC {
		t.Errorf("Expected UTC timestamps, got %s", user.CreatedAt.Location())
	}

	m.Role = "guest"
	if _, err := m.toEntity(); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected validation error for a stored guest role, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"not found", gorm.ErrRecordNotFound, entities.ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, entities.ErrConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, entities.ErrConflict},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), entities.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, "ingredient", 1)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}

	if translate(nil, "ingredient", 1) != nil {
		t.Error("Expected nil for nil error")
	}

	other := errors.New("connection reset")
	err := translate(other, "ingredient", 1)
	if !errors.Is(err, other) {
		t.Errorf("Expected wrapped error, got %v", err)
	}
	if errors.Is(err, entities.ErrNotFound) || errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected unclassified error, got %v", err)
	}
}
