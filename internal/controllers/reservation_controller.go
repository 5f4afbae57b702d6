package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meal_reservations/internal/middleware"
	"meal_reservations/internal/services"
)

type ReservationController struct {
	reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{reservations: reservations}
}

func (rc *ReservationController) Create(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	var input services.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Debe enviar una seleccion para cada dia lunes-viernes")
		return
	}

	saved, err := rc.reservations.Submit(c.Request.Context(), claims.UserID, input)
	if err != nil {
		respondError(c, err, "Error al procesar reserva")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "weekStart": saved.WeekStart})
}

func (rc *ReservationController) Mine(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	list, err := rc.reservations.ForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err, "Error al obtener reservas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (rc *ReservationController) All(c *gin.Context) {
	list, roster, err := rc.reservations.AdminListing(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al obtener todas las reservas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list, "users": roster})
}
