package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/services"
)

type AdminController struct {
	authService    *services.AuthService
	pointsService  *services.PointsService
	productService *services.ProductService
	orderService   *services.OrderService
	auditService   *services.AuditService
}

func NewAdminController() *AdminController {
	return &AdminController{
		authService:    services.NewAuthService(),
		pointsService:  services.NewPointsService(),
		productService: services.NewProductService(),
		orderService:   services.NewOrderService(),
		auditService:   services.NewAuditService(),
	}
}

// --- Users ---

type CreateUserRequest struct {
	Username          string          `json:"username" binding:"required,min=3,max=50"`
	Email             string          `json:"email" binding:"required,email"`
	Password          string          `json:"password" binding:"required,min=8"`
	Role              models.UserRole `json:"role" binding:"required,oneof=employee admin"`
	MonthlyAllocation int             `json:"monthly_allocation"`
}

func (ac *AdminController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user payload", err.Error())
		return
	}

	user, err := ac.authService.CreateUser(req.Username, req.Email, req.Password, req.Role, req.MonthlyAllocation)
	if err != nil {
		respondError(c, http.StatusBadRequest, "USER_CREATE_FAILED", err.Error(), nil)
		return
	}

	ac.auditService.Record(c.GetUint("user_id"), "user:create", "user", user.ID, user.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

// UserPointsInfo is one row of the admin users table.
type UserPointsInfo struct {
	ID                uint            `json:"id"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	Role              models.UserRole `json:"role"`
	IsActive          bool            `json:"is_active"`
	MonthlyAllocation int             `json:"monthly_allocation"`
	CurrentBalance    int             `json:"current_balance"`
	TotalEarned       int64           `json:"total_earned"`
	TotalSpent        int64           `json:"total_spent"`
	CreatedAt         time.Time       `json:"created_at"`
}

// GetUsers serves both /admin/users and /admin/points/users: every user with
// balance and lifetime earned/spent totals, ordered by balance.
func (ac *AdminController) GetUsers(c *gin.Context) {
	page, pageSize := pageParams(c)
	page, pageSize = services.NormalizePage(page, pageSize)

	search := c.Query("search")

	countQuery := config.DB.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		countQuery = countQuery.Where("username LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch users", nil)
		return
	}

	// Lifetime earned/spent come from correlated subqueries so one round trip
	// serves the whole page.
	query := config.DB.Model(&models.User{}).
		Select(`users.id, users.username, users.email, users.role, users.is_active, users.monthly_allocation, users.created_at,
			COALESCE(points.current_balance, 0) AS current_balance,
			COALESCE((SELECT SUM(h.amount) FROM points_history h WHERE h.user_id = users.id AND h.amount > 0), 0) AS total_earned,
			COALESCE((SELECT -SUM(h.amount) FROM points_history h WHERE h.user_id = users.id AND h.amount < 0), 0) AS total_spent`).
		Joins("LEFT JOIN points ON points.user_id = users.id")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("users.username LIKE ? OR users.email LIKE ?", pattern, pattern)
	}

	var users []UserPointsInfo
	err := query.Order("current_balance DESC, users.id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&users).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch users", nil)
		return
	}

	c.JSON(http.StatusOK, services.NewPage(users, total, page, pageSize))
}

// --- Points ---

type AdjustPointsRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Amount int    `json:"amount" binding:"required"` // signed; binding rejects zero
	Reason string `json:"reason" binding:"required"`
}

func (ac *AdminController) AdjustPoints(c *gin.Context) {
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Amount and reason are required; amount must be non-zero", err.Error())
		return
	}

	operatorID := c.GetUint("user_id")

	entry, err := ac.pointsService.AdjustPoints(req.UserID, req.Amount, req.Reason, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
		case errors.Is(err, services.ErrInsufficientBalance):
			respondError(c, http.StatusBadRequest, "INSUFFICIENT_POINTS", "Adjustment would drive the balance below zero", nil)
		case errors.Is(err, services.ErrZeroAmount), errors.Is(err, services.ErrReasonRequired):
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to adjust points", nil)
		}
		return
	}

	ac.auditService.Record(operatorID, "points:adjust", "user", req.UserID,
		fmt.Sprintf("amount=%d reason=%s", req.Amount, req.Reason))

	c.JSON(http.StatusOK, gin.H{
		"message": "Points adjusted successfully",
		"entry":   entry,
	})
}

type BulkAllocateRequest struct {
	Amount  int    `json:"amount"` // zero means each user's monthly allocation
	Reason  string `json:"reason" binding:"required"`
	UserIDs []uint `json:"user_ids"`
}

func (ac *AdminController) BulkAllocatePoints(c *gin.Context) {
	var req BulkAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reason is required", err.Error())
		return
	}

	operatorID := c.GetUint("user_id")

	allocatedUsers, allocatedPoints, err := ac.pointsService.BulkAllocate(req.Amount, req.Reason, req.UserIDs, operatorID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ALLOCATION_FAILED", err.Error(),
			gin.H{"allocated_users": allocatedUsers, "allocated_points": allocatedPoints})
		return
	}

	ac.auditService.Record(operatorID, "points:allocate", "user", 0,
		fmt.Sprintf("users=%d points=%d reason=%s", allocatedUsers, allocatedPoints, req.Reason))

	c.JSON(http.StatusOK, gin.H{
		"message":          "Points allocated successfully",
		"allocated_users":  allocatedUsers,
		"allocated_points": allocatedPoints,
	})
}

func (ac *AdminController) GetPointsOverview(c *gin.Context) {
	overview, err := ac.pointsService.Overview()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch points overview", nil)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetPointsHistory is the admin view of the ledger: all users, optionally
// filtered by user, type and date range.
func (ac *AdminController) GetPointsHistory(c *gin.Context) {
	page, pageSize := pageParams(c)

	var userID uint
	if v := c.Query("user_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
			return
		}
		userID = uint(parsed)
	}

	entries, total, err := ac.pointsService.GetHistory(services.HistoryFilter{
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

// --- Orders ---

func (ac *AdminController) GetOrders(c *gin.Context) {
	page, pageSize := pageParams(c)

	var userID uint
	if v := c.Query("user_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id", nil)
			return
		}
		userID = uint(parsed)
	}

	orders, total, err := ac.orderService.ListOrders(services.OrderFilter{
		UserID:   userID,
		Status:   models.OrderStatus(c.Query("status")),
		From:     dateParam(c, "start_date"),
		To:       dateParam(c, "end_date"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch orders", nil)
		return
	}

	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, services.NewPage(orders, total, page, pageSize))
}

// --- Products ---

type ProductRequest struct {
	Name              string `json:"name" binding:"required,max=100"`
	Description       string `json:"description"`
	ImageURL          string `json:"image_url"`
	PointsPrice       int    `json:"points_price" binding:"required,gt=0"`
	StockQuantity     int    `json:"stock_quantity" binding:"gte=0"`
	Category          string `json:"category"`
	Status            string `json:"status" binding:"omitempty,oneof=active inactive"`
	UsageInstructions string `json:"usage_instructions"`
	TermsConditions   string `json:"terms_conditions"`
	ExpiryDate        string `json:"expiry_date"` // YYYY-MM-DD, optional
}

func (req *ProductRequest) apply(product *models.Product) error {
	product.Name = req.Name
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.PointsPrice = req.PointsPrice
	product.StockQuantity = req.StockQuantity
	product.Category = req.Category
	if req.Status != "" {
		product.Status = models.ProductStatus(req.Status)
	}
	product.UsageInstructions = req.UsageInstructions
	product.TermsConditions = req.TermsConditions
	if req.ExpiryDate != "" {
		expiry, err := time.ParseInLocation("2006-01-02", req.ExpiryDate, time.Local)
		if err != nil {
			return errors.New("invalid expiry date, use YYYY-MM-DD")
		}
		product.ExpiryDate = &expiry
	} else {
		product.ExpiryDate = nil
	}
	return nil
}

// GetProducts is the admin catalog view: inactive products included.
func (ac *AdminController) GetProducts(c *gin.Context) {
	page, pageSize := pageParams(c)

	products, total, err := ac.productService.ListProducts(services.ProductFilter{
		Status:   models.ProductStatus(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch products", nil)
		return
	}

	page, pageSize = services.NormalizePage(page, pageSize)
	c.JSON(http.StatusOK, services.NewPage(products, total, page, pageSize))
}

func (ac *AdminController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product payload", err.Error())
		return
	}

	var product models.Product
	if err := req.apply(&product); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := ac.productService.CreateProduct(&product); err != nil {
		if errors.Is(err, services.ErrDuplicateProductName) {
			respondError(c, http.StatusBadRequest, "DUPLICATE_NAME", err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product", nil)
		return
	}

	ac.auditService.Record(c.GetUint("user_id"), "product:create", "product", product.ID, product.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

func (ac *AdminController) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id", nil)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product payload", err.Error())
		return
	}

	product, err := ac.productService.GetProductByID(uint(productID))
	if err != nil {
		respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
		return
	}

	if err := req.apply(product); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := ac.productService.UpdateProduct(product); err != nil {
		if errors.Is(err, services.ErrDuplicateProductName) {
			respondError(c, http.StatusBadRequest, "DUPLICATE_NAME", err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product", nil)
		return
	}

	ac.auditService.Record(c.GetUint("user_id"), "product:update", "product", product.ID, product.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

func (ac *AdminController) DeleteProduct(c *gin.Context) {
	ac.removeProduct(c, false)
}

func (ac *AdminController) PermanentlyDeleteProduct(c *gin.Context) {
	ac.removeProduct(c, true)
}

func (ac *AdminController) removeProduct(c *gin.Context, permanent bool) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id", nil)
		return
	}

	if permanent {
		err = ac.productService.PermanentlyDeleteProduct(uint(productID))
	} else {
		err = ac.productService.DeleteProduct(uint(productID))
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
		case errors.Is(err, services.ErrProductHasOrders):
			respondError(c, http.StatusBadRequest, "PRODUCT_HAS_ORDERS",
				"Product has existing orders; deactivate it instead", nil)
		default:
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete product", nil)
		}
		return
	}

	action := "product:delete"
	if permanent {
		action = "product:delete_permanent"
	}
	ac.auditService.Record(c.GetUint("user_id"), action, "product", uint(productID), "")
	c.Status(http.StatusNoContent)
}

func (ac *AdminController) ActivateProduct(c *gin.Context) {
	ac.setProductStatus(c, models.ProductActive)
}

func (ac *AdminController) DeactivateProduct(c *gin.Context) {
	ac.setProductStatus(c, models.ProductInactive)
}

func (ac *AdminController) setProductStatus(c *gin.Context, status models.ProductStatus) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id", nil)
		return
	}

	product, err := ac.productService.SetStatus(uint(productID), status)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update product status", nil)
		return
	}

	ac.auditService.Record(c.GetUint("user_id"), "product:"+string(status), "product", product.ID, product.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Product status updated", "product": product})
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (ac *AdminController) RestockProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id", nil)
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be positive", err.Error())
		return
	}

	product, err := ac.productService.RestockProduct(uint(productID), req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to restock product", nil)
		return
	}

	ac.auditService.Record(c.GetUint("user_id"), "product:restock", "product", product.ID,
		fmt.Sprintf("quantity=%d", req.Quantity))
	c.JSON(http.StatusOK, gin.H{"message": "Product restocked", "product": product})
}
