package models

import (
	"time"
)

type OrderStatus string

const (
	// Digital products fulfil immediately, so redemptions land as completed.
	OrderCompleted  OrderStatus = "completed"
	OrderProcessing OrderStatus = "processing"
	OrderCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	UserID         uint        `json:"user_id" gorm:"not null;index"`
	User           User        `json:"-"`
	ProductID      uint        `json:"product_id" gorm:"not null;index"`
	Product        Product     `json:"product,omitempty"`
	Quantity       int         `json:"quantity" gorm:"not null;default:1"`
	PointsSpent    int         `json:"points_spent" gorm:"not null"`
	Status         OrderStatus `json:"status" gorm:"size:20;default:'completed';index"`
	RedemptionCode string      `json:"redemption_code" gorm:"size:100"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
