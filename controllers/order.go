package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/services"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController() *OrderController {
	return &OrderController{
		orderService: services.NewOrderService(),
	}
}

type RedeemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

func (oc *OrderController) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid redemption request", err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	userID := c.GetUint("user_id")

	order, err := oc.orderService.CreateRedemptionOrder(userID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
		case errors.Is(err, services.ErrProductUnavailable):
			respondError(c, http.StatusBadRequest, "PRODUCT_UNAVAILABLE", "Product is not available for redemption", nil)
		case errors.Is(err, services.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", "Not enough stock to fulfil this redemption", nil)
		case errors.Is(err, services.ErrInsufficientBalance):
			respondError(c, http.StatusBadRequest, "INSUFFICIENT_POINTS", "Insufficient points", nil)
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create redemption order", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"order_id":        order.ID,
		"redemption_code": order.RedemptionCode,
		"points_spent":    order.PointsSpent,
		"status":          order.Status,
	})
}

func (oc *OrderController) GetOrderHistory(c *gin.Context) {
	page, pageSize := pageParams(c)
	userID := c.GetUint("user_id")

	orders, total, err := oc.orderService.ListOrders(services.OrderFilter{
		UserID:   userID,
		Status:   models.OrderStatus(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch order history", nil)
		return
	}

	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, services.NewPage(orders, total, page, pageSize))
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id", nil)
		return
	}

	userID := c.GetUint("user_id")

	order, err := oc.orderService.GetOrderByID(uint(orderID), userID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch order", nil)
		return
	}

	c.JSON(http.StatusOK, order)
}
