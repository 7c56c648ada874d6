package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
)

// setupTestDB points config.DB at a fresh in-memory SQLite database. A single
// connection keeps the shared-cache database alive and serializes writers the
// way SQLite expects.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.AutoMigrate(db))

	config.DB = db
	t.Cleanup(func() {
		sqlDB.Close()
		config.DB = nil
	})
}

var testUserSeq int

func createTestUser(t *testing.T, role models.UserRole, monthlyAllocation int) *models.User {
	t.Helper()
	testUserSeq++

	user := models.User{
		Username:          fmt.Sprintf("user%d", testUserSeq),
		Email:             fmt.Sprintf("user%d@example.com", testUserSeq),
		Password:          "not-a-real-hash",
		Role:              role,
		IsActive:          true,
		MonthlyAllocation: monthlyAllocation,
	}
	require.NoError(t, config.DB.Create(&user).Error)
	require.NoError(t, config.DB.Create(&models.Points{UserID: user.ID}).Error)
	return &user
}

func createTestProduct(t *testing.T, name string, price, stock int) *models.Product {
	t.Helper()

	product := models.Product{
		Name:          name,
		Description:   "test product",
		PointsPrice:   price,
		StockQuantity: stock,
		Category:      "test",
		Status:        models.ProductActive,
	}
	require.NoError(t, config.DB.Create(&product).Error)
	return &product
}

func currentBalance(t *testing.T, userID uint) int {
	t.Helper()

	var points models.Points
	require.NoError(t, config.DB.Where("user_id = ?", userID).First(&points).Error)
	return points.CurrentBalance
}
