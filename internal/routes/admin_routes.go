package routes

import (
	"github.com/gin-gonic/gin"
)

func ReservationRoutes(api *gin.RouterGroup, h Handlers) {
	res := api.Group("/reservations", h.requireAuth...)
	{
		res.POST("", h.reservations.Create)
		res.GET("/me", h.reservations.Mine)
	}
	api.Group("", h.requireAdmin...).GET("/reservations/admin", h.reservations.All)
}

func StatsRoutes(api *gin.RouterGroup, h Handlers) {
	stats := api.Group("", h.requireAdmin...)
	{
		stats.GET("/stats/weeks", h.stats.Weeks)
		stats.GET("/stats", h.stats.SlotStats)
		stats.GET("/reports/stats", h.stats.Report)
	}
}

func AdminRoutes(api *gin.RouterGroup, h Handlers) {
	admin := api.Group("/admin", h.requireAdmin...)
	{
		admin.POST("/users", h.admin.CreateUser)
		admin.PUT("/users/:userId/details", h.admin.UpdateUserDetails)
	}
}
