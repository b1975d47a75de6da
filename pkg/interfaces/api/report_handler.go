package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

func (h *Handler) MonthlyReport(c *gin.Context) {
	month, year, ok := parsePeriod(c)
	if !ok {
		return
	}
	report, err := h.services.Reporting.GetMonthlyReport(c.Request.Context(), month, year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReportView(report))
}

func (h *Handler) GenerateMonthlyReport(c *gin.Context) {
	month, year, ok := parsePeriod(c)
	if !ok {
		return
	}
	report, err := h.services.Reporting.BuildMonthlyReport(c.Request.Context(), month, year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newReportView(report))
}

func (h *Handler) DetailedMonthlyReport(c *gin.Context) {
	month, year, ok := parsePeriod(c)
	if !ok {
		return
	}
	detail, err := h.services.Reporting.DetailedMonthlyReport(c.Request.Context(), month, year)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailedReportView(detail))
}

func (h *Handler) IngredientUsage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, ok := parseDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDate(c, "end_date")
	if !ok {
		return
	}

	series, err := h.services.Reporting.IngredientUsage(c.Request.Context(), entities.IngredientID(id), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, usageView{
		IngredientID:   int64(series.IngredientID),
		IngredientName: series.IngredientName,
		UsageData:      newDailyGramsViews(series.Usage),
		DeliveryData:   newDailyGramsViews(series.Deliveries),
	})
}

func (h *Handler) MealServings(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	start, ok := parseDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDate(c, "end_date")
	if !ok {
		return
	}

	series, err := h.services.Reporting.MealServings(c.Request.Context(), entities.RecipeID(id), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mealServingsView{
		MealID:      int64(series.RecipeID),
		MealName:    series.RecipeName,
		ServingData: newDailyPortionsViews(series.Servings),
	})
}

func (h *Handler) ListAlerts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	alerts, err := h.services.Alerts.List(c.Request.Context(), unreadOnly, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, newAlertView(a))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) MarkAlertRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	alert, err := h.services.Alerts.MarkRead(c.Request.Context(), entities.AlertID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newAlertView(alert))
}
