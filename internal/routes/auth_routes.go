package routes

import (
	"github.com/gin-gonic/gin"
)

func AuthRoutes(api *gin.RouterGroup, h Handlers) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.authLimiter, h.auth.Register)
		auth.POST("/login", h.authLimiter, h.auth.Login)
		auth.POST("/forgot-password", h.auth.ForgotPassword)
		auth.POST("/reset", h.auth.ResetPassword)
	}

	me := api.Group("/auth", h.requireAuth...)
	{
		me.GET("/me", h.auth.Me)
		me.PUT("/profile", h.auth.UpdateProfile)
	}
}

func MenuRoutes(api *gin.RouterGroup, h Handlers) {
	api.GET("/menu", h.menu.GetMenu)
	api.Group("", h.requireSuper...).PUT("/menu", h.menu.UpdateMenu)
}

func SettingsRoutes(api *gin.RouterGroup, h Handlers) {
	api.GET("/settings", h.settings.Get)
	api.Group("", h.requireSuper...).PUT("/settings", h.settings.Update)
}
