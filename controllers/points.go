package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/services"
)

type PointsController struct {
	pointsService *services.PointsService
}

func NewPointsController() *PointsController {
	return &PointsController{
		pointsService: services.NewPointsService(),
	}
}

func (pc *PointsController) GetBalance(c *gin.Context) {
	userID := c.GetUint("user_id")

	balance, err := pc.pointsService.GetBalance(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch balance", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_balance":   balance,
		"formatted_balance": services.FormatPoints(balance),
	})
}

func (pc *PointsController) GetHistory(c *gin.Context) {
	page, pageSize := pageParams(c)
	userID := c.GetUint("user_id")

	entries, total, err := pc.pointsService.GetHistory(services.HistoryFilter{
		UserID:   userID,
		Type:     models.EntryType(c.Query("type")),
		From:     dateParam(c, "start_date"),
		To:       dateParam(c, "end_date"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch points history", nil)
		return
	}

	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, services.NewPage(entries, total, page, pageSize))
}
