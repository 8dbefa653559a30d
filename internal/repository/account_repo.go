package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"wallet/internal/model"
	"wallet/pkg/idgen"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountNumberExhaust = errors.New("could not allocate a unique account number")
	ErrBalanceNotEnough     = errors.New("insufficient balance")
	ErrTierNotFound         = errors.New("account tier not found")
)

const accountNumberAttempts = 10

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create assigns a fresh account number and inserts the account.
func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	if tx == nil {
		tx = r.db
	}

	for i := 0; i < accountNumberAttempts; i++ {
		number := idgen.GenerateAccountNumber()
		var count int64
		err := tx.WithContext(ctx).Model(&model.Account{}).Where("account_number = ?", number).Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			account.AccountNumber = number
			return tx.WithContext(ctx).Create(account).Error
		}
	}
	return ErrAccountNumberExhaust
}

func (r *AccountRepository) GetByUserID(ctx context.Context, tx *gorm.DB, userID int64) (*model.Account, error) {
	if tx == nil {
		tx = r.db
	}
	var account model.Account
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByAccountNumberExcludingUser resolves an account number that does not belong to userID.
func (r *AccountRepository) GetByAccountNumberExcludingUser(ctx context.Context, accountNumber string, userID int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("account_number = ? AND user_id <> ?", accountNumber, userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// LockForUpdate takes row locks on every id in ascending id order and returns the rows
// keyed by id. Two transfers touching the same pair always lock in the same order.
func (r *AccountRepository) LockForUpdate(ctx context.Context, tx *gorm.DB, ids ...int64) (map[int64]*model.Account, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[int64]*model.Account, len(sorted))
	for _, id := range sorted {
		if _, ok := locked[id]; ok {
			continue
		}
		var account model.Account
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, fmt.Errorf("lock account %d: %w", id, err)
		}
		locked[id] = &account
	}
	return locked, nil
}

// ApplyDelta moves balance and book balance together. A negative delta only applies
// while the balance covers it, so the balance can never go below zero.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx *gorm.DB, accountID int64, delta int64) error {
	query := tx.WithContext(ctx).Model(&model.Account{}).Where("id = ?", accountID)
	if delta < 0 {
		query = query.Where("balance >= ?", -delta)
	}

	result := query.Updates(map[string]interface{}{
		"balance":      gorm.Expr("balance + ?", delta),
		"book_balance": gorm.Expr("book_balance + ?", delta),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return ErrBalanceNotEnough
		}
		return ErrAccountNotFound
	}
	return nil
}

type TierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) *TierRepository {
	return &TierRepository{db: db}
}

func (r *TierRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.AccountTier, error) {
	if tx == nil {
		tx = r.db
	}
	var tier model.AccountTier
	err := tx.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}

func (r *TierRepository) GetByName(ctx context.Context, name string) (*model.AccountTier, error) {
	var tier model.AccountTier
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}
