package model

import (
	"time"
)

// Beneficiary is a saved transfer counterparty, scoped to its owner.
type Beneficiary struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"index:idx_beneficiary_owner;not null" json:"-"`
	AccountNumber string    `gorm:"type:varchar(10);index:idx_beneficiary_owner;not null" json:"account_number"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Beneficiary) TableName() string {
	return "beneficiary"
}
