package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/services"
)

// respondError maps a service error onto a status code and a message that is
// safe to return. Unexpected errors are logged and answered with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		validation *booking.ValidationError
		wrongWeek  *booking.WrongWeekError
		closed     *booking.DeadlineClosedError
		noMenu     *booking.MenuNotConfiguredError
		conflict   *services.ConflictError
		forbidden  *services.ForbiddenError
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &wrongWeek), errors.As(err, &closed),
		errors.Is(err, services.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrMenuNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &noMenu):
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Menu missing for reservation week")
		c.JSON(http.StatusInternalServerError, gin.H{"error": noMenu.Error()})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
