package model

import (
	"time"
)

// Account is a user's wallet, 1:1 with the user.
// Balance and BookBalance move together; BookBalance is kept for a future divergent
// accounting scheme.
type Account struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	AccountNumber string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"account_number"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"`
	BookBalance   int64     `gorm:"not null;default:0" json:"book_balance"`
	TierID        int64     `gorm:"index;not null" json:"tier_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

// ============================================================================
// Account tiers
// ============================================================================

// AccountTier is static reference data. A zero threshold means no limit for that threshold.
type AccountTier struct {
	ID                        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                      string `gorm:"type:varchar(32);uniqueIndex;not null" json:"name"`
	MaxBalance                int64  `gorm:"not null;default:0" json:"max_balance"`
	MaxTransferPerTransaction int64  `gorm:"not null;default:0" json:"max_transfer_per_transaction"`
	MaxTransferPerDay         int64  `gorm:"not null;default:0" json:"max_transfer_per_day"`
	Unlimited                 bool   `gorm:"not null;default:false" json:"unlimited"`
}

func (AccountTier) TableName() string {
	return "account_tier"
}

const (
	TierLevel1 = "level 1"
	TierLevel2 = "level 2"
	TierLevel3 = "level 3"
)

// DefaultTiers is the seed data, amounts in minor units.
var DefaultTiers = []AccountTier{
	{Name: TierLevel1, MaxBalance: 20000_00, MaxTransferPerTransaction: 5000_00, MaxTransferPerDay: 10000_00},
	{Name: TierLevel2, MaxBalance: 300000_00, MaxTransferPerTransaction: 50000_00, MaxTransferPerDay: 100000_00},
	{Name: TierLevel3, MaxBalance: 0, MaxTransferPerTransaction: 10000000_00, MaxTransferPerDay: 10000000_00, Unlimited: true},
}
