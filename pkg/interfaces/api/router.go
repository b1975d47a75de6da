// Package api exposes the kitchen services over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"go.uber.org/zap"
)

const APIPrefix = "/api/v1"

// NewRouter wires every route. Role checks sit on the route groups so they run
// before any handler touches storage.
func NewRouter(services Services, logger *zap.Logger) *gin.Engine {
	h := NewHandler(services, logger)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), Recovery(logger))

	r.GET("/health", h.Health)
	r.GET("/ws/:client_id", h.Subscribe)

	v1 := r.Group(APIPrefix)
	v1.POST("/login/access-token", h.Login)

	authed := v1.Group("")
	authed.Use(Authenticate(services.Auth), Require(entities.Role.CanRead))
	manage := Require(entities.Role.CanManageCatalog)
	admin := Require(entities.Role.CanAdministerUsers)

	users := authed.Group("/users")
	{
		users.GET("/me", h.Me)
		users.GET("", admin, h.ListUsers)
		users.POST("", admin, h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", admin, h.UpdateUser)
	}

	ingredients := authed.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.POST("", manage, h.CreateIngredient)
		ingredients.GET("/check-low-stock", h.CheckLowStock)
		ingredients.POST("/delivery", manage, h.CreateDelivery)
		ingredients.GET("/delivery", h.ListDeliveries)
		ingredients.GET("/delivery/:id", h.GetDelivery)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.PUT("/:id", manage, h.UpdateIngredient)
		ingredients.DELETE("/:id", manage, h.DeleteIngredient)
		ingredients.POST("/:id/adjust", manage, h.AdjustIngredient)
		ingredients.GET("/:id/impact", h.IngredientImpact)
	}

	meals := authed.Group("/meals")
	{
		meals.GET("", h.ListMeals)
		meals.POST("", manage, h.CreateMeal)
		meals.GET("/portions", h.MealPortions)
		meals.GET("/:id", h.GetMeal)
		meals.PUT("/:id", manage, h.UpdateMeal)
		meals.DELETE("/:id", manage, h.DeleteMeal)
	}

	servings := authed.Group("/meal-servings")
	{
		servings.GET("", h.ListServings)
		servings.POST("", h.ServeMeal)
		servings.GET("/by-meal/:meal_id", h.ServingsByMeal)
		servings.GET("/by-user/:user_id", manage, h.ServingsByUser)
		servings.GET("/calculate-portions/:meal_id", h.CalculatePortions)
		servings.GET("/:id", h.GetServing)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/monthly/:year/:month", h.MonthlyReport)
		reports.POST("/monthly/:year/:month/generate", manage, h.GenerateMonthlyReport)
		reports.GET("/monthly/:year/:month/detailed", h.DetailedMonthlyReport)
		reports.GET("/ingredient/:id/usage", h.IngredientUsage)
		reports.GET("/meal/:id/servings", h.MealServings)
		reports.GET("/alerts", manage, h.ListAlerts)
		reports.PUT("/alerts/:id/mark-read", manage, h.MarkAlertRead)
	}

	return r
}
