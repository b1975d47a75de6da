package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/services/stock"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
)

type createIngredientRequest struct {
	Name        string           `json:"name" binding:"required"`
	Quantity    *decimal.Decimal `json:"quantity"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

type updateIngredientRequest struct {
	Name        *string          `json:"name"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

type adjustRequest struct {
	Delta  *decimal.Decimal `json:"delta"`
	Reason string           `json:"reason"`
}

type deliveryRequest struct {
	IngredientID int64            `json:"ingredient_id" binding:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
	DeliveryDate *time.Time       `json:"delivery_date"`
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (h *Handler) ListIngredients(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	ingredients, err := h.services.Stock.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientViews(ingredients))
}

func (h *Handler) CreateIngredient(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ingredient, err := h.services.Stock.Create(c.Request.Context(), req.Name, orZero(req.Quantity), orZero(req.MinQuantity))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newIngredientView(ingredient))
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.services.Stock.Get(c.Request.Context(), entities.IngredientID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientView(ingredient))
}

func (h *Handler) UpdateIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ingredient, err := h.services.Stock.Update(c.Request.Context(), entities.IngredientID(id), stock.IngredientUpdate{
		Name:        req.Name,
		MinQuantity: req.MinQuantity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientView(ingredient))
}

func (h *Handler) DeleteIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.services.Stock.Delete(c.Request.Context(), entities.IngredientID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientView(ingredient))
}

// AdjustIngredient applies a manual stock correction
func (h *Handler) AdjustIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Delta == nil {
		badRequest(c, "delta is required")
		return
	}
	ingredient, err := h.services.Stock.Correct(c.Request.Context(), entities.IngredientID(id), *req.Delta, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientView(ingredient))
}

// CheckLowStock runs one low-stock sweep on demand
func (h *Handler) CheckLowStock(c *gin.Context) {
	low, err := h.services.Sweeper.RunOnce(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientViews(low))
}

func (h *Handler) IngredientImpact(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	impacts, err := h.services.Catalog.IngredientImpact(c.Request.Context(), entities.IngredientID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newImpactViews(impacts))
}

func (h *Handler) CreateDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var deliveredAt time.Time
	if req.DeliveryDate != nil {
		deliveredAt = *req.DeliveryDate
	}

	delivery, err := h.services.Stock.RecordDelivery(c.Request.Context(),
		entities.IngredientID(req.IngredientID), orZero(req.Quantity), deliveredAt, principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDeliveryView(delivery))
}

func (h *Handler) ListDeliveries(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	filter := repositories.DeliveryFilter{Page: page}
	if v := c.Query("ingredient_id"); v != "" {
		id, ok := positiveID(c, "ingredient_id", v)
		if !ok {
			return
		}
		filter.IngredientID = entities.IngredientID(id)
	}

	deliveries, err := h.services.Stock.ListDeliveries(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]deliveryView, 0, len(deliveries))
	for _, d := range deliveries {
		views = append(views, newDeliveryView(d))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetDelivery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	delivery, err := h.services.Stock.GetDelivery(c.Request.Context(), entities.DeliveryID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeliveryView(delivery))
}
