package entities

// IngredientID identifies an ingredient
type IngredientID int64

// RecipeID identifies a recipe (meal)
type RecipeID int64

// ServingID identifies a recorded serving
type ServingID int64

// DeliveryID identifies a recorded delivery
type DeliveryID int64

// ReportID identifies a monthly report
type ReportID int64

// AlertID identifies an alert
type AlertID int64

// UserID identifies a staff user
type UserID int64
