package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

type mealIngredientRequest struct {
	IngredientID int64           `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type createMealRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Ingredients []mealIngredientRequest `json:"ingredients"`
}

type updateMealRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Ingredients *[]mealIngredientRequest `json:"ingredients"`
}

func toLines(items []mealIngredientRequest) []entities.RecipeLine {
	lines := make([]entities.RecipeLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, entities.RecipeLine{
			IngredientID:    entities.IngredientID(item.IngredientID),
			GramsPerPortion: item.Quantity,
		})
	}
	return lines
}

func (h *Handler) ListMeals(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	recipes, err := h.services.Catalog.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]mealView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, newMealView(r))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	recipe, err := h.services.Catalog.Create(c.Request.Context(), catalog.RecipeInput{
		Name:        req.Name,
		Description: req.Description,
		Lines:       toLines(req.Ingredients),
	}, principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newMealView(recipe))
}

func (h *Handler) GetMeal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.services.Catalog.Get(c.Request.Context(), entities.RecipeID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newMealView(recipe))
}

// UpdateMeal merges the given fields over the stored meal; a given ingredient
// list replaces the old one entirely
func (h *Handler) UpdateMeal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	current, err := h.services.Catalog.Get(c.Request.Context(), entities.RecipeID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	input := catalog.RecipeInput{
		Name:        current.Name,
		Description: current.Description,
		Lines:       current.Lines,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Ingredients != nil {
		input.Lines = toLines(*req.Ingredients)
	}

	recipe, err := h.services.Catalog.Update(c.Request.Context(), entities.RecipeID(id), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newMealView(recipe))
}

func (h *Handler) DeleteMeal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.services.Catalog.Delete(c.Request.Context(), entities.RecipeID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newMealView(recipe))
}

// MealPortions lists servable portions for every meal
func (h *Handler) MealPortions(c *gin.Context) {
	all, err := h.services.Catalog.AllAvailability(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]portionsView, 0, len(all))
	for _, a := range all {
		views = append(views, newPortionsView(a))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CalculatePortions(c *gin.Context) {
	id, ok := parseID(c, "meal_id")
	if !ok {
		return
	}
	availability, err := h.services.Catalog.Availability(c.Request.Context(), entities.RecipeID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newPortionsView(*availability))
}
