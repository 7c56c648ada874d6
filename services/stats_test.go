package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsomeshop/rewards-be/models"
)

func TestGetSystemStats(t *testing.T) {
	setupTestDB(t)
	statsSvc := NewStatsService()
	pointsSvc := NewPointsService()
	orderSvc := NewOrderService()

	alice := createTestUser(t, models.RoleEmployee, 0)
	createTestUser(t, models.RoleAdmin, 0)
	product := createTestProduct(t, "Coffee Card", 100, 10)

	_, err := pointsSvc.AddPoints(alice.ID, 500, "Allocation", models.EntryAllocation, nil)
	require.NoError(t, err)
	_, err = orderSvc.CreateRedemptionOrder(alice.ID, product.ID, 2)
	require.NoError(t, err)

	stats, err := statsSvc.GetSystemStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.OrdersToday)
	assert.Equal(t, int64(300), stats.PointsInCirculation)
	assert.Equal(t, int64(200), stats.PointsSpentTotal)
}

func TestGetRedemptionStats(t *testing.T) {
	setupTestDB(t)
	statsSvc := NewStatsService()
	pointsSvc := NewPointsService()
	orderSvc := NewOrderService()

	user := createTestUser(t, models.RoleEmployee, 0)
	coffee := createTestProduct(t, "Coffee Card", 100, 10)
	hoodie := createTestProduct(t, "Hoodie", 300, 10)

	_, err := pointsSvc.AddPoints(user.ID, 1000, "Allocation", models.EntryAllocation, nil)
	require.NoError(t, err)
	_, err = orderSvc.CreateRedemptionOrder(user.ID, coffee.ID, 1)
	require.NoError(t, err)
	_, err = orderSvc.CreateRedemptionOrder(user.ID, coffee.ID, 1)
	require.NoError(t, err)
	_, err = orderSvc.CreateRedemptionOrder(user.ID, hoodie.ID, 1)
	require.NoError(t, err)

	stats, err := statsSvc.GetRedemptionStats(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(500), stats.TotalPointsSpent)
	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, "Coffee Card", stats.TopProducts[0].ProductName)
	assert.Equal(t, int64(2), stats.TopProducts[0].OrderCount)
}

func TestGetUserActivityStats(t *testing.T) {
	setupTestDB(t)
	statsSvc := NewStatsService()
	pointsSvc := NewPointsService()

	alice := createTestUser(t, models.RoleEmployee, 0)
	createTestUser(t, models.RoleEmployee, 0)

	_, err := pointsSvc.AddPoints(alice.ID, 100, "Allocation", models.EntryAllocation, nil)
	require.NoError(t, err)

	stats, err := statsSvc.GetUserActivityStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveLast30Days)
	require.Len(t, stats.MostActive, 1)
	assert.Equal(t, alice.ID, stats.MostActive[0].UserID)
}
