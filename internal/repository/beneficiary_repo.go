package repository

import (
	"context"
	"errors"
	"strings"

	"wallet/internal/model"

	"gorm.io/gorm"
)

var ErrBeneficiaryNotFound = errors.New("beneficiary not found")

// likeEscaper makes a search term match literally under LIKE ... ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type BeneficiaryRepository struct {
	db *gorm.DB
}

func NewBeneficiaryRepository(db *gorm.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

// Save stores (userID, accountNumber, name) once; repeating it returns the stored row.
func (r *BeneficiaryRepository) Save(ctx context.Context, tx *gorm.DB, userID int64, accountNumber, name string) (*model.Beneficiary, error) {
	if tx == nil {
		tx = r.db
	}
	name = strings.ToLower(strings.TrimSpace(name))

	var existing model.Beneficiary
	err := tx.WithContext(ctx).
		Where("user_id = ? AND account_number = ? AND name = ?", userID, accountNumber, name).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	beneficiary := &model.Beneficiary{
		UserID:        userID,
		AccountNumber: accountNumber,
		Name:          name,
	}
	if err := tx.WithContext(ctx).Create(beneficiary).Error; err != nil {
		return nil, err
	}
	return beneficiary, nil
}

// ListByUserID returns a user's beneficiaries. With a name filter the match is a
// case-insensitive substring and results are newest first.
func (r *BeneficiaryRepository) ListByUserID(ctx context.Context, userID int64, name string) ([]*model.Beneficiary, error) {
	var beneficiaries []*model.Beneficiary

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
		query = query.Where("name LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(name)+"%").
			Order("created_at DESC").
			Order("id DESC")
	}

	err := query.Find(&beneficiaries).Error
	return beneficiaries, err
}

func (r *BeneficiaryRepository) GetByID(ctx context.Context, userID, id int64) (*model.Beneficiary, error) {
	var beneficiary model.Beneficiary
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&beneficiary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBeneficiaryNotFound
		}
		return nil, err
	}
	return &beneficiary, nil
}
