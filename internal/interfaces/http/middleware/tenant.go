package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/treasury/internal/infrastructure/logger"
	"github.com/erp/treasury/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity keys in gin.Context and the headers they come from
const (
	TenantIDKey  = "tenant_id"
	UserIDKey    = "user_id"
	TenantHeader = "X-Tenant-ID"
	UserHeader   = "X-User-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// DefaultTenantID is used when the header is absent. uuid.Nil makes the
	// header mandatory.
	DefaultTenantID uuid.UUID
	Logger          *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/ready", "/api/v1/system"},
	}
}

// TenantMiddlewareWithConfig resolves the tenant from X-Tenant-ID and the
// acting user from X-User-ID. Both end up in the gin context and in the
// request context so that logger.L carries them.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if raw := c.GetHeader(TenantHeader); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				respondUnauthorized(c, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			respondUnauthorized(c, "Tenant identification required")
			return
		}

		ctx := logger.WithTenantID(c.Request.Context(), tenantID)
		c.Set(TenantIDKey, tenantID)

		// the user is optional, it only feeds audit columns
		if raw := c.GetHeader(UserHeader); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				respondUnauthorized(c, "Invalid user ID format")
				return
			}
			c.Set(UserIDKey, userID)
			ctx = logger.WithUserID(ctx, userID)
		}
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified", zap.String("tenant_id", tenantID.String()))
		}
		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetUserID retrieves the acting user from gin.Context, nil when anonymous
func GetUserID(c *gin.Context) *uuid.UUID {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}
