package handlers

import (
	"net/http"
	"strconv"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	callerKey    = "caller"
	userKey      = "user"

	RequestIDHeader = "X-Request-ID"
	UserIDHeader    = "X-User-ID"
)

// RequestID propagates the client's X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if v, ok := c.Get(callerKey); ok {
			caller := v.(services.Caller)
			fields = append(fields, "store_id", caller.StoreID, "user_id", caller.UserID)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("http_request", "Request failed", fields...)
			return
		}
		log.Debug("http_request", "Request served", fields...)
	}
}

// Identity resolves the X-User-ID header to an active user and stores the
// resulting Caller on the context. Authentication itself happens upstream.
func Identity(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader(UserIDHeader), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid " + UserIDHeader})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), uint(id))
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown or inactive user"})
			return
		}

		c.Set(userKey, user)
		c.Set(callerKey, services.Caller{
			StoreID: user.StoreID,
			UserID:  user.ID,
			Role:    models.UserRole(user.Role),
		})
		c.Next()
	}
}

// RequireRoles must run after Identity.
func RequireRoles(users services.UserService, allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.Get(userKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}
		if err := users.ValidateUserRole(user.(*models.User), allowed...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) services.Caller {
	return c.MustGet(callerKey).(services.Caller)
}
