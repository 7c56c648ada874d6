package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
)

func TestCreateProductRejectsDuplicateName(t *testing.T) {
	setupTestDB(t)
	svc := NewProductService()

	createTestProduct(t, "Coffee Gift Card", 500, 10)

	duplicate := &models.Product{Name: "Coffee Gift Card", PointsPrice: 400, StockQuantity: 5}
	err := svc.CreateProduct(duplicate)
	assert.ErrorIs(t, err, ErrDuplicateProductName)

	fresh := &models.Product{Name: "Tea Gift Card", PointsPrice: 400, StockQuantity: 5}
	require.NoError(t, svc.CreateProduct(fresh))
	assert.Equal(t, models.ProductActive, fresh.Status)

	// Renaming onto an existing product is rejected too.
	fresh.Name = "Coffee Gift Card"
	assert.ErrorIs(t, svc.UpdateProduct(fresh), ErrDuplicateProductName)
}

func TestDeleteProductWithOrders(t *testing.T) {
	setupTestDB(t)
	productSvc := NewProductService()
	orderSvc := NewOrderService()
	pointsSvc := NewPointsService()

	user := createTestUser(t, models.RoleEmployee, 0)
	product := createTestProduct(t, "Hoodie", 100, 10)

	_, err := pointsSvc.AddPoints(user.ID, 500, "Allocation", models.EntryAllocation, nil)
	require.NoError(t, err)
	_, err = orderSvc.CreateRedemptionOrder(user.ID, product.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, productSvc.DeleteProduct(product.ID), ErrProductHasOrders)
	assert.ErrorIs(t, productSvc.PermanentlyDeleteProduct(product.ID), ErrProductHasOrders)

	// Deactivation is the supported path for retiring redeemed products.
	updated, err := productSvc.SetStatus(product.ID, models.ProductInactive)
	require.NoError(t, err)
	assert.Equal(t, models.ProductInactive, updated.Status)
}

func TestDeleteProductWithoutOrders(t *testing.T) {
	setupTestDB(t)
	svc := NewProductService()

	product := createTestProduct(t, "Unwanted Mug", 100, 10)
	require.NoError(t, svc.DeleteProduct(product.ID))

	// Soft delete hides it from normal queries but keeps the row.
	_, err := svc.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var count int64
	require.NoError(t, config.DB.Unscoped().Model(&models.Product{}).
		Where("id = ?", product.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.PermanentlyDeleteProduct(product.ID))
	require.NoError(t, config.DB.Unscoped().Model(&models.Product{}).
		Where("id = ?", product.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestRestockProduct(t *testing.T) {
	setupTestDB(t)
	svc := NewProductService()

	product := createTestProduct(t, "Mouse", 1200, 3)

	updated, err := svc.RestockProduct(product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.StockQuantity)

	_, err = svc.RestockProduct(product.ID, 0)
	assert.Error(t, err)

	_, err = svc.RestockProduct(99999, 5)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProductsFilters(t *testing.T) {
	setupTestDB(t)
	svc := NewProductService()

	inStock := createTestProduct(t, "Coffee Card", 500, 10)
	outOfStock := createTestProduct(t, "Sold Out Hoodie", 1500, 0)
	inactive := createTestProduct(t, "Hidden Voucher", 100, 5)
	require.NoError(t, config.DB.Model(inactive).Update("status", models.ProductInactive).Error)

	products, total, err := svc.ListProducts(ProductFilter{Status: models.ProductActive})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	products, total, err = svc.ListProducts(ProductFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, inStock.Name, products[0].Name)

	products, _, err = svc.ListProducts(ProductFilter{Search: "hoodie"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, outOfStock.Name, products[0].Name)
}

func TestGetCategories(t *testing.T) {
	setupTestDB(t)
	svc := NewProductService()

	a := createTestProduct(t, "Card A", 100, 5)
	b := createTestProduct(t, "Card B", 100, 5)
	c := createTestProduct(t, "Card C", 100, 5)
	require.NoError(t, config.DB.Model(a).Update("category", "gift-cards").Error)
	require.NoError(t, config.DB.Model(b).Update("category", "gift-cards").Error)
	require.NoError(t, config.DB.Model(c).Update("category", "vouchers").Error)

	hidden := createTestProduct(t, "Card D", 100, 5)
	require.NoError(t, config.DB.Model(hidden).
		Updates(map[string]interface{}{"category": "secret", "status": models.ProductInactive}).Error)

	categories, err := svc.GetCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"gift-cards", "vouchers"}, categories)
}
