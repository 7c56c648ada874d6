package services

import (
	"time"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
)

type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

type SystemStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	TotalProducts       int64 `json:"total_products"`
	ActiveProducts      int64 `json:"active_products"`
	TotalOrders         int64 `json:"total_orders"`
	OrdersToday         int64 `json:"orders_today"`
	PointsInCirculation int64 `json:"points_in_circulation"`
	PointsSpentTotal    int64 `json:"points_spent_total"`
}

func (s *StatsService) GetSystemStats() (*SystemStats, error) {
	var stats SystemStats
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := config.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.User{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Product{}).
		Where("status = ?", models.ProductActive).
		Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Order{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.OrdersToday).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Points{}).
		Select("COALESCE(SUM(current_balance), 0)").
		Scan(&stats.PointsInCirculation).Error; err != nil {
		return nil, err
	}
	if err := config.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(points_spent), 0)").
		Scan(&stats.PointsSpentTotal).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

type TopProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	OrderCount  int64  `json:"order_count"`
	TotalPoints int64  `json:"total_points"`
}

type RedemptionStats struct {
	TotalOrders       int64        `json:"total_orders"`
	TotalPointsSpent  int64        `json:"total_points_spent"`
	AverageOrderValue float64      `json:"average_order_value"`
	TopProducts       []TopProduct `json:"top_products"`
}

func (s *StatsService) GetRedemptionStats(from, to *time.Time) (*RedemptionStats, error) {
	var stats RedemptionStats

	query := config.DB.Model(&models.Order{})
	if from != nil {
		query = query.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("orders.created_at <= ?", *to)
	}

	row := query.
		Select("COUNT(*), COALESCE(SUM(points_spent), 0), COALESCE(AVG(points_spent), 0)").
		Row()
	if err := row.Scan(&stats.TotalOrders, &stats.TotalPointsSpent, &stats.AverageOrderValue); err != nil {
		return nil, err
	}

	topQuery := config.DB.Model(&models.Order{}).
		Select("products.id AS product_id, products.name AS product_name, COUNT(orders.id) AS order_count, COALESCE(SUM(orders.points_spent), 0) AS total_points").
		Joins("JOIN products ON products.id = orders.product_id").
		Group("products.id, products.name").
		Order("order_count DESC").
		Limit(10)
	if from != nil {
		topQuery = topQuery.Where("orders.created_at >= ?", *from)
	}
	if to != nil {
		topQuery = topQuery.Where("orders.created_at <= ?", *to)
	}
	if err := topQuery.Scan(&stats.TopProducts).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

type ActiveUser struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	EntryCount int64  `json:"entry_count"`
}

type UserActivityStats struct {
	TotalUsers       int64        `json:"total_users"`
	ActiveLast30Days int64        `json:"active_last_30_days"`
	NewThisMonth     int64        `json:"new_this_month"`
	MostActive       []ActiveUser `json:"most_active"`
}

func (s *StatsService) GetUserActivityStats() (*UserActivityStats, error) {
	var stats UserActivityStats
	now := time.Now()
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if err := config.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := config.DB.Model(&models.PointsHistory{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Distinct("user_id").
		Count(&stats.ActiveLast30Days).Error; err != nil {
		return nil, err
	}

	if err := config.DB.Model(&models.User{}).
		Where("created_at >= ?", startOfMonth).
		Count(&stats.NewThisMonth).Error; err != nil {
		return nil, err
	}

	err := config.DB.Model(&models.PointsHistory{}).
		Select("users.id AS user_id, users.username AS username, COUNT(points_history.id) AS entry_count").
		Joins("JOIN users ON users.id = points_history.user_id").
		Where("points_history.created_at >= ?", thirtyDaysAgo).
		Group("users.id, users.username").
		Order("entry_count DESC").
		Limit(10).
		Scan(&stats.MostActive).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
