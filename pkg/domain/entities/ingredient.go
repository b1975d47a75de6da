package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is a stocked ingredient measured in grams
type Ingredient struct {
	ID          IngredientID
	Name        string
	Quantity    decimal.Decimal
	MinQuantity decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewIngredient creates a validated Ingredient
func NewIngredient(name string, quantity, minQuantity decimal.Decimal) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("ingredient name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, NewValidationError(fmt.Sprintf("quantity cannot be negative, got %s", quantity))
	}
	if minQuantity.IsNegative() {
		return nil, NewValidationError(fmt.Sprintf("min quantity cannot be negative, got %s", minQuantity))
	}

	return &Ingredient{
		Name:        name,
		Quantity:    quantity,
		MinQuantity: minQuantity,
	}, nil
}

// IsLow reports whether stock is strictly below the minimum threshold
func (i Ingredient) IsLow() bool {
	return i.Quantity.LessThan(i.MinQuantity)
}

// Delivery records stock added to an ingredient
type Delivery struct {
	ID           DeliveryID
	IngredientID IngredientID
	Quantity     decimal.Decimal
	DeliveredAt  time.Time
	CreatedBy    UserID
}

// NewDelivery creates a validated Delivery
func NewDelivery(ingredientID IngredientID, quantity decimal.Decimal, deliveredAt time.Time, createdBy UserID) (*Delivery, error) {
	if ingredientID <= 0 {
		return nil, NewValidationError("ingredient id must be positive")
	}
	if !quantity.IsPositive() {
		return nil, NewValidationError(fmt.Sprintf("delivery quantity must be positive, got %s", quantity))
	}

	return &Delivery{
		IngredientID: ingredientID,
		Quantity:     quantity,
		DeliveredAt:  deliveredAt,
		CreatedBy:    createdBy,
	}, nil
}
