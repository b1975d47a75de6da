package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"go.uber.org/zap"
)

// Subscribe upgrades to a live-update websocket. A missing or bad token
// yields a guest subscription rather than a refusal.
func (h *Handler) Subscribe(c *gin.Context) {
	viewer := entities.Guest()
	if token := c.Query("token"); token != "" {
		if p, err := h.services.Auth.Authenticate(c.Request.Context(), token); err == nil {
			viewer = p
		} else {
			h.logger.Debug("websocket token rejected, subscribing as guest", zap.Error(err))
		}
	}

	if err := h.services.Hub.Accept(c.Writer, c.Request, c.Param("client_id"), viewer); err != nil {
		h.logger.Warn("websocket subscription failed",
			zap.String("client_id", c.Param("client_id")),
			zap.Error(err),
		)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"subscribers": h.services.Hub.Count(),
	})
}
