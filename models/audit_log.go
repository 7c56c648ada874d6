package models

import (
	"time"
)

// AuditLog records administrative actions (logins, adjustments, product
// changes) for later review. Best effort: a failed audit write never fails
// the action it describes.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    uint      `json:"actor_id" gorm:"not null;index"`
	Actor      User      `json:"-" gorm:"foreignKey:ActorID"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	TargetType string    `json:"target_type" gorm:"size:50"`
	TargetID   uint      `json:"target_id"`
	Detail     string    `json:"detail" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
