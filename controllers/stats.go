package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/services"
)

type StatsController struct {
	statsService *services.StatsService
}

func NewStatsController() *StatsController {
	return &StatsController{
		statsService: services.NewStatsService(),
	}
}

func (sc *StatsController) GetSystemStats(c *gin.Context) {
	stats, err := sc.statsService.GetSystemStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch system stats", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (sc *StatsController) GetRedemptionStats(c *gin.Context) {
	stats, err := sc.statsService.GetRedemptionStats(dateParam(c, "start_date"), dateParam(c, "end_date"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch redemption stats", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (sc *StatsController) GetUserActivityStats(c *gin.Context) {
	stats, err := sc.statsService.GetUserActivityStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user activity stats", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}
