package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"go.uber.org/zap"
)

type shortageView struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Required       float64 `json:"required"`
	Available      float64 `json:"available"`
}

type insufficientStockView struct {
	Message             string         `json:"message"`
	AvailablePortions   int64          `json:"available_portions"`
	RequestedPortions   int64          `json:"requested_portions"`
	LimitingIngredients []limitingView `json:"limiting_ingredients"`
	Shortages           []shortageView `json:"shortages"`
}

func newInsufficientStockView(e *entities.InsufficientStockError) insufficientStockView {
	shortages := make([]shortageView, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		shortages = append(shortages, shortageView{
			IngredientID:   int64(s.IngredientID),
			IngredientName: s.Name,
			Required:       grams(s.Required),
			Available:      grams(s.Available),
		})
	}
	return insufficientStockView{
		Message:             "Not enough ingredients for requested portions",
		AvailablePortions:   e.Available,
		RequestedPortions:   e.Requested,
		LimitingIngredients: newLimitingViews(e.Limiting),
		Shortages:           shortages,
	}
}

// respondError writes the HTTP form of a service error
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var insufficient *entities.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{"detail": newInsufficientStockView(insufficient)})
	case errors.Is(err, entities.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, entities.ErrUnauthenticated):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	case errors.Is(err, entities.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "The user doesn't have enough privileges"})
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, entities.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case errors.Is(err, entities.ErrInvalidAdjustment):
		logger.Error("stock invariant guard tripped",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	default:
		logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": message})
}
