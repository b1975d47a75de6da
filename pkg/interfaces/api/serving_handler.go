package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

type serveRequest struct {
	MealID   int64 `json:"meal_id" binding:"required"`
	Portions int64 `json:"portions"`
}

func (h *Handler) ServeMeal(c *gin.Context) {
	var req serveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	serving, err := h.services.Serving.Serve(c.Request.Context(), entities.RecipeID(req.MealID), req.Portions, principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newServingView(serving))
}

func (h *Handler) ListServings(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	servings, err := h.services.Serving.List(c.Request.Context(), repositories.ServingFilter{Page: page})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newServingViews(servings))
}

func (h *Handler) GetServing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	serving, err := h.services.Serving.Get(c.Request.Context(), entities.ServingID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newServingView(serving))
}

func (h *Handler) ServingsByMeal(c *gin.Context) {
	id, ok := parseID(c, "meal_id")
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}
	servings, err := h.services.Serving.ByRecipe(c.Request.Context(), entities.RecipeID(id), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newServingViews(servings))
}

func (h *Handler) ServingsByUser(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}
	servings, err := h.services.Serving.ByUser(c.Request.Context(), entities.UserID(id), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newServingViews(servings))
}
