package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meal_reservations/internal/services"
)

type StatsController struct {
	stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

func (sc *StatsController) Weeks(c *gin.Context) {
	weeks, err := sc.stats.Weeks(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al obtener semanas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// SlotStats is the kitchen production sheet: counts per day and time slot.
func (sc *StatsController) SlotStats(c *gin.Context) {
	week, err := sc.stats.ResolveWeek(c.Query("week"))
	if err != nil {
		respondError(c, err, "Error al obtener estadisticas")
		return
	}
	stats, skipped, err := sc.stats.SlotStats(c.Request.Context(), week)
	if err != nil {
		respondError(c, err, "Error al obtener estadisticas")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "week": week, "skipped": skipped})
}

func (sc *StatsController) Report(c *gin.Context) {
	week, err := sc.stats.ResolveWeek(c.Query("week"))
	if err != nil {
		respondError(c, err, "Error al generar reporte")
		return
	}
	report, err := sc.stats.Report(c.Request.Context(), week)
	if err != nil {
		respondError(c, err, "Error al generar reporte")
		return
	}
	c.JSON(http.StatusOK, report)
}
