package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meal_reservations/internal/services"
)

type MenuController struct {
	menus *services.MenuService
	clock services.Clock
}

func NewMenuController(menus *services.MenuService, clock services.Clock) *MenuController {
	return &MenuController{menus: menus, clock: clock}
}

// GetMenu returns the current and next week's menus, creating them from the
// default menu when missing.
func (mc *MenuController) GetMenu(c *gin.Context) {
	current, next, err := mc.menus.Current(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al obtener menu")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"menu":          gin.H{"current": current, "next": next},
		"currentMonday": current.WeekStart,
		"nextMonday":    next.WeekStart,
	})
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var input services.MenuUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Debe enviar un objeto days")
		return
	}
	ctx := c.Request.Context()

	updated, err := mc.menus.Update(ctx, input)
	if err != nil {
		respondError(c, err, "Error al actualizar menu")
		return
	}

	otherType, otherWeek := "next", mc.clock.NextWeek()
	if input.Type == "next" {
		otherType, otherWeek = "current", mc.clock.CurrentWeek()
	}
	other, err := mc.menus.Find(ctx, otherWeek)
	if err != nil && !errors.Is(err, services.ErrMenuNotFound) {
		respondError(c, err, "Error al actualizar menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": gin.H{input.Type: updated, otherType: other}})
}
