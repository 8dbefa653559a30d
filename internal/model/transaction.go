package model

import (
	"time"
)

const (
	TransactionTypeCredit = "CREDIT"
	TransactionTypeDebit  = "DEBIT"
)

const (
	TransactionStatusPending  = "PENDING"
	TransactionStatusSuccess  = "SUCCESS"
	TransactionStatusFailed   = "FAILED"
	TransactionStatusRefunded = "REFUNDED"
)

// ============================================================================
// Ledger entries
// ============================================================================

// TransactionRecord is one ledger row on one account.
//
// Rows are append-only: corrections are new REFUNDED rows, never updates.
// CurrentBalance is the owning account's balance right after this row's effect.
// A transfer writes a DEBIT on the sender and a CREDIT on the receiver sharing SessionID.
type TransactionRecord struct {
	ID                        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID                 int64     `gorm:"index;not null" json:"account_id"`
	UserID                    int64     `gorm:"index;not null" json:"user_id"`
	Amount                    int64     `gorm:"not null" json:"amount"`
	Type                      string    `gorm:"type:varchar(10);index;not null" json:"transaction_type"`
	Status                    string    `gorm:"type:varchar(10);index;not null" json:"transaction_status"`
	CategoryID                *int64    `gorm:"index" json:"category_id,omitempty"`
	CounterpartyAccountNumber string    `gorm:"type:varchar(10)" json:"counterparty_account_number,omitempty"`
	CounterpartyName          string    `gorm:"type:varchar(255)" json:"counterparty_name,omitempty"`
	SessionID                 string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	TransactionRef            string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"transaction_ref"`
	CurrentBalance            int64     `gorm:"not null" json:"current_balance"`
	BookBalance               int64     `gorm:"not null" json:"book_balance"`
	Description               string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt                 time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TransactionRecord) TableName() string {
	return "transaction_record"
}

// Category tags ledger rows. Names are stored lower-case.
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "category"
}

const (
	CategoryTransfer = "transfer"
	CategoryTopUp    = "top-up"
)
