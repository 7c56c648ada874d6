package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	ws "github.com/awsomeshop/rewards-be/websocket"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available for redemption")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
)

type OrderService struct {
	pointsService *PointsService
	notifier      *NotificationService
}

func NewOrderService() *OrderService {
	return &OrderService{
		pointsService: NewPointsService(),
		notifier:      NewNotificationService(),
	}
}

const redemptionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRedemptionCode returns a code like "K3QX-9ZPM-A7T2-WNB4".
func GenerateRedemptionCode() (string, error) {
	chars := make([]byte, 16)
	max := big.NewInt(int64(len(redemptionCodeAlphabet)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate redemption code: %w", err)
		}
		chars[i] = redemptionCodeAlphabet[n.Int64()]
	}
	groups := []string{
		string(chars[0:4]),
		string(chars[4:8]),
		string(chars[8:12]),
		string(chars[12:16]),
	}
	return strings.Join(groups, "-"), nil
}

// CreateRedemptionOrder converts a redemption request into one atomic state
// transition: lock product and balance, validate availability, stock and
// balance, decrement stock, debit points with a redemption ledger entry, and
// create the completed order with a fresh redemption code. All or nothing.
func (s *OrderService) CreateRedemptionOrder(userID, productID uint, quantity int) (*models.Order, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	var order models.Order
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := lockForUpdate(tx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if !product.IsAvailable() {
			return ErrProductUnavailable
		}
		if product.StockQuantity < quantity {
			return ErrInsufficientStock
		}

		totalPoints := product.PointsPrice * quantity

		reason := fmt.Sprintf("Redeemed %s x%d", product.Name, quantity)
		if _, err := s.pointsService.apply(tx, userID, -totalPoints, models.EntryRedemption, reason, nil); err != nil {
			return err
		}

		if err := tx.Model(&product).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity)).Error; err != nil {
			return err
		}

		code, err := GenerateRedemptionCode()
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:         userID,
			ProductID:      productID,
			Quantity:       quantity,
			PointsSpent:    totalPoints,
			Status:         models.OrderCompleted,
			RedemptionCode: code,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		order.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	if config.WSHub != nil {
		config.WSHub.BroadcastEvent(ws.EventOrderRedeemed, ws.OrderEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			ProductID:   order.ProductID,
			ProductName: order.Product.Name,
			Quantity:    order.Quantity,
			PointsSpent: order.PointsSpent,
			Status:      string(order.Status),
		})
	}

	// Email confirmation happens off the request path; the order is already
	// committed either way.
	go s.notifier.SendRedemptionSuccess(order.UserID, &order)

	return &order, nil
}

type OrderFilter struct {
	UserID   uint // zero means all users (admin view)
	Status   models.OrderStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ListOrders returns orders newest first with their products preloaded.
func (s *OrderService) ListOrders(filter OrderFilter) ([]models.Order, int64, error) {
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	query := config.DB.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Product").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// GetOrderByID loads one order. A non-zero userID scopes the lookup to that
// user's own orders (data isolation for non-admins).
func (s *OrderService) GetOrderByID(orderID, userID uint) (*models.Order, error) {
	query := config.DB.Preload("Product").Where("id = ?", orderID)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
