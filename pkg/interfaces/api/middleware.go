package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	principalKey    = "principal"
	requestIDHeader = "X-Request-ID"
)

// TokenAuthenticator resolves a bearer token to a principal
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (entities.Principal, error)
}

// RequestID tags every request with an id, reusing the caller's if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String(requestIDKey, c.GetString(requestIDKey)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}

// Recovery turns a handler panic into a 500 and logs it
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panicked",
			zap.Any("panic", recovered),
			zap.String(requestIDKey, c.GetString(requestIDKey)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	})
}

// Authenticate requires a valid bearer token
func Authenticate(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Require rejects principals whose role lacks the capability. It runs before
// any handler lookup so a denial does not reveal whether the target exists.
func Require(allowed func(entities.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(principal(c).Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "The user doesn't have enough privileges"})
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) entities.Principal {
	if p, ok := c.Get(principalKey); ok {
		if principal, ok := p.(entities.Principal); ok {
			return principal
		}
	}
	return entities.Guest()
}
