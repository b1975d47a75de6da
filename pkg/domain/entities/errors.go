package entities

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("authentication failed")
	ErrForbidden         = errors.New("not enough permissions")
)

// NotFoundError names the missing entity
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness or reference violation
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a ConflictError
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError reports invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// InsufficientStockError carries the limiting-ingredient detail of a refused serving
type InsufficientStockError struct {
	RecipeID  RecipeID
	Requested int64
	Available int64
	Limiting  []LimitingIngredient
	Shortages []Shortage
}

// Shortage is the gap between required and available grams of one ingredient
type Shortage struct {
	IngredientID IngredientID
	Name         string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for meal %d: requested %d portions, %d available", e.RecipeID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidAdjustmentError is returned when a delta would drive stock negative
type InvalidAdjustmentError struct {
	IngredientID IngredientID
	Delta        decimal.Decimal
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("adjusting ingredient %d by %s would make stock negative", e.IngredientID, e.Delta)
}

func (e *InvalidAdjustmentError) Is(target error) bool {
	return target == ErrInvalidAdjustment
}
