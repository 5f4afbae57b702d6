package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meal_reservations/internal/middleware"
	"meal_reservations/internal/services"
)

type AdminController struct {
	users *services.UserService
}

func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{users: users}
}

func (ac *AdminController) CreateUser(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	var input services.AdminCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}

	user, err := ac.users.CreateByAdmin(c.Request.Context(), claims.Role, input)
	if err != nil {
		respondError(c, err, "Error al crear usuario")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": services.NewUserView(*user)})
}

func (ac *AdminController) UpdateUserDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		badRequest(c, "Identificador de usuario invalido")
		return
	}
	var input services.DetailsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Datos invalidos")
		return
	}

	user, err := ac.users.UpdateDetails(c.Request.Context(), uint(id), input)
	if err != nil {
		respondError(c, err, "Error al actualizar usuario")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": services.NewUserView(*user)})
}
