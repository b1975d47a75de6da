package entities

import "github.com/shopspring/decimal"

// LimitingIngredient is one ingredient's contribution to a recipe's availability
type LimitingIngredient struct {
	IngredientID    IngredientID
	Name            string
	Available       decimal.Decimal
	GramsPerPortion decimal.Decimal
	MaxPortions     int64
}

// PortionAvailability is how many portions of a recipe current stock allows
type PortionAvailability struct {
	RecipeID          RecipeID
	RecipeName        string
	AvailablePortions int64
	Limiting          []LimitingIngredient
}

// IngredientImpact describes how one ingredient constrains a recipe using it
type IngredientImpact struct {
	RecipeID          RecipeID
	RecipeName        string
	GramsPerPortion   decimal.Decimal
	MaxFromIngredient int64
	AvailablePortions int64
	IsLimiting        bool
}
