package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/models"
)

type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) (bool, error)
}

// Maintenance turns away authenticated non-admin users while maintenance mode
// is on. It must run after RequireAuth. A failed lookup lets the request through.
func Maintenance(checker MaintenanceChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok || claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		on, err := checker.MaintenanceMode(c.Request.Context())
		if err != nil {
			logrus.WithError(err).Error("Error checking maintenance mode")
		}
		if on {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "El sistema esta en mantenimiento. Intente mas tarde."})
			return
		}
		c.Next()
	}
}
