package models

import (
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"size:100;not null;index"`
	Description       string         `json:"description" gorm:"type:text"`
	ImageURL          string         `json:"image_url" gorm:"size:500"`
	PointsPrice       int            `json:"points_price" gorm:"not null"`
	StockQuantity     int            `json:"stock_quantity" gorm:"not null;default:0"`
	Category          string         `json:"category" gorm:"size:50;index"`
	Status            ProductStatus  `json:"status" gorm:"size:20;default:'active';index"`
	UsageInstructions string         `json:"usage_instructions" gorm:"type:text"`
	TermsConditions   string         `json:"terms_conditions" gorm:"type:text"`
	ExpiryDate        *time.Time     `json:"expiry_date,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Orders []Order `json:"-"`
}

// IsAvailable reports whether the product can currently be redeemed.
// Stock is authoritative here; clients never decrement it locally.
func (p *Product) IsAvailable() bool {
	if p.Status != ProductActive || p.StockQuantity <= 0 {
		return false
	}
	if p.ExpiryDate != nil && p.ExpiryDate.Before(time.Now()) {
		return false
	}
	return true
}
