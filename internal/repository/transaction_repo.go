package repository

import (
	"context"
	"time"

	"wallet/internal/model"

	"gorm.io/gorm"
)

// TransactionFilter narrows a history listing; empty fields are ignored.
type TransactionFilter struct {
	Status    string
	Type      string
	SessionID string
	Ref       string
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, records ...*model.TransactionRecord) error {
	if tx == nil {
		tx = r.db
	}
	for _, record := range records {
		if err := tx.WithContext(ctx).Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListBySession returns every row written under sessionID, oldest first.
func (r *TransactionRepository) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*model.TransactionRecord, error) {
	if tx == nil {
		tx = r.db
	}
	var records []*model.TransactionRecord
	err := tx.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// SumSince totals the amounts of an account's successful rows from since onwards,
// incoming and outgoing alike.
func (r *TransactionRepository) SumSince(ctx context.Context, tx *gorm.DB, accountID int64, since time.Time) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var total int64
	err := tx.WithContext(ctx).
		Model(&model.TransactionRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id = ? AND status = ? AND created_at >= ?",
			accountID, model.TransactionStatusSuccess, since).
		Scan(&total).Error
	return total, err
}

// ListByAccount pages through an account's rows, most recent first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, filter TransactionFilter, page, pageSize int) ([]*model.TransactionRecord, int64, error) {
	var records []*model.TransactionRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&model.TransactionRecord{}).Where("account_id = ?", accountID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Ref != "" {
		query = query.Where("transaction_ref = ?", filter.Ref)
	}

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	// Compared in int64 so a huge page cannot overflow the offset back to page one.
	if lastPage := (total + int64(pageSize) - 1) / int64(pageSize); int64(page) > lastPage {
		return []*model.TransactionRecord{}, total, nil
	}

	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error

	return records, total, err
}
