package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/application/services/alerting"
	"github.com/vsinha/kitchen/pkg/application/services/auth"
	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/application/services/reporting"
	"github.com/vsinha/kitchen/pkg/application/services/serving"
	"github.com/vsinha/kitchen/pkg/application/services/stock"
	"github.com/vsinha/kitchen/pkg/application/services/sweep"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/realtime"
	"go.uber.org/zap"
)

// Services are the application services behind the HTTP surface
type Services struct {
	Auth      *auth.Service
	Stock     *stock.Service
	Catalog   *catalog.Service
	Serving   *serving.Service
	Reporting *reporting.Service
	Alerts    *alerting.Service
	Sweeper   *sweep.Sweeper
	Hub       *realtime.Hub
}

// Handler serves the kitchen API
type Handler struct {
	services Services
	logger   *zap.Logger
}

func NewHandler(services Services, logger *zap.Logger) *Handler {
	return &Handler{services: services, logger: logger}
}

func (h *Handler) fail(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	return positiveID(c, name, c.Param(name))
}

func positiveID(c *gin.Context, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}

// parsePage reads skip and limit, defaulting to the first 100 rows
func parsePage(c *gin.Context) (repositories.Page, bool) {
	page := repositories.DefaultPage()
	if v := c.Query("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			badRequest(c, "skip must be a non-negative integer")
			return page, false
		}
		page.Offset = skip
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			badRequest(c, "limit must be a positive integer")
			return page, false
		}
		page.Limit = limit
	}
	return page, true
}

func parseDate(c *gin.Context, name string) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		badRequest(c, fmt.Sprintf("%s must be a date like 2025-03-31", name))
		return time.Time{}, false
	}
	return t, true
}

func parsePeriod(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, "year must be an integer")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		badRequest(c, "month must be an integer")
		return 0, 0, false
	}
	return month, year, true
}
