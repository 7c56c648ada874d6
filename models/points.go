package models

import (
	"time"
)

type EntryType string

const (
	EntryAllocation EntryType = "allocation"
	EntryRedemption EntryType = "redemption"
	EntryAdjustment EntryType = "adjustment"
	EntryExpiration EntryType = "expiration"
)

// Points holds the authoritative balance for a single user.
// It is only ever mutated together with an appended PointsHistory row.
type Points struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User           User      `json:"-"`
	CurrentBalance int       `json:"current_balance" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Points) TableName() string {
	return "points"
}

// PointsHistory is the append-only ledger. Entries are never updated or
// deleted; corrections are posted as new adjustment entries.
type PointsHistory struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	User          User      `json:"-"`
	Amount        int       `json:"amount" gorm:"not null"` // signed: positive credits, negative debits
	Type          EntryType `json:"type" gorm:"size:20;not null;index"`
	Reason        string    `json:"reason" gorm:"type:text;not null"`
	OperatorID    *uint     `json:"operator_id,omitempty" gorm:"index"` // set for admin-driven entries
	BalanceBefore int       `json:"balance_before" gorm:"not null"`
	BalanceAfter  int       `json:"balance_after" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PointsHistory) TableName() string {
	return "points_history"
}
