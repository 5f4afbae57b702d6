package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meal_reservations/internal/services"
)

type SettingsController struct {
	settings *services.SettingsService
}

func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{settings: settings}
}

func (sc *SettingsController) Get(c *gin.Context) {
	st, err := sc.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al obtener configuracion")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (sc *SettingsController) Update(c *gin.Context) {
	var input services.SettingsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}
	st, err := sc.settings.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Error al actualizar configuracion")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": st})
}
