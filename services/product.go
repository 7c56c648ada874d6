package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	ws "github.com/awsomeshop/rewards-be/websocket"
)

var (
	ErrDuplicateProductName = errors.New("a product with this name already exists")
	ErrProductHasOrders     = errors.New("product has existing orders and cannot be deleted")
)

type ProductService struct{}

func NewProductService() *ProductService {
	return &ProductService{}
}

type ProductFilter struct {
	Category      string
	Search        string
	AvailableOnly bool
	Status        models.ProductStatus // empty means any (admin view); public listings pass active
	Page          int
	PageSize      int
}

// ListProducts returns the catalog page matching the filter.
func (s *ProductService) ListProducts(filter ProductFilter) ([]models.Product, int64, error) {
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	query := config.DB.Model(&models.Product{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.AvailableOnly {
		query = query.Where("status = ? AND stock_quantity > 0", models.ProductActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error

	return products, total, err
}

func (s *ProductService) GetProductByID(productID uint) (*models.Product, error) {
	var product models.Product
	if err := config.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetCategories returns the distinct non-empty categories of active products.
func (s *ProductService) GetCategories() ([]string, error) {
	var categories []string
	err := config.DB.Model(&models.Product{}).
		Where("status = ? AND category <> ''", models.ProductActive).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

func (s *ProductService) CreateProduct(product *models.Product) error {
	var count int64
	if err := config.DB.Model(&models.Product{}).
		Where("name = ?", product.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateProductName
	}

	if product.Status == "" {
		product.Status = models.ProductActive
	}

	if err := config.DB.Create(product).Error; err != nil {
		return err
	}

	s.broadcastProductEvent(product, "created")
	return nil
}

func (s *ProductService) UpdateProduct(product *models.Product) error {
	var count int64
	if err := config.DB.Model(&models.Product{}).
		Where("name = ? AND id <> ?", product.Name, product.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateProductName
	}

	if err := config.DB.Save(product).Error; err != nil {
		return err
	}

	s.broadcastProductEvent(product, "updated")
	return nil
}

// SetStatus activates or deactivates a product without touching stock.
func (s *ProductService) SetStatus(productID uint, status models.ProductStatus) (*models.Product, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	product.Status = status
	if err := config.DB.Save(product).Error; err != nil {
		return nil, err
	}

	action := "deactivated"
	if status == models.ProductActive {
		action = "activated"
	}
	s.broadcastProductEvent(product, action)
	return product, nil
}

// DeleteProduct soft-deletes a product. Products referenced by orders cannot
// be deleted; they must be deactivated instead, so order history stays whole.
func (s *ProductService) DeleteProduct(productID uint) error {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return err
	}

	var orderCount int64
	if err := config.DB.Model(&models.Order{}).
		Where("product_id = ?", productID).
		Count(&orderCount).Error; err != nil {
		return err
	}
	if orderCount > 0 {
		return ErrProductHasOrders
	}

	if err := config.DB.Delete(product).Error; err != nil {
		return err
	}

	s.broadcastProductEvent(product, "deleted")
	return nil
}

// PermanentlyDeleteProduct removes the row entirely, including a previously
// soft-deleted one. Same guard: never while orders reference it.
func (s *ProductService) PermanentlyDeleteProduct(productID uint) error {
	var product models.Product
	if err := config.DB.Unscoped().First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	var orderCount int64
	if err := config.DB.Model(&models.Order{}).
		Where("product_id = ?", productID).
		Count(&orderCount).Error; err != nil {
		return err
	}
	if orderCount > 0 {
		return ErrProductHasOrders
	}

	return config.DB.Unscoped().Delete(&product).Error
}

// RestockProduct adds inventory to an existing product.
func (s *ProductService) RestockProduct(productID uint, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, errors.New("restock quantity must be positive")
	}

	var product models.Product
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		return tx.Model(&product).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
	})
	if err != nil {
		return nil, err
	}

	product.StockQuantity += quantity
	s.broadcastProductEvent(&product, "updated")
	return &product, nil
}

func (s *ProductService) broadcastProductEvent(product *models.Product, action string) {
	if config.WSHub == nil {
		return
	}
	config.WSHub.BroadcastEvent(ws.EventProductUpdated, ws.ProductEvent{
		ProductID:   product.ID,
		ProductName: product.Name,
		Action:      action,
	})
}
