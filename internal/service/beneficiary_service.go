package service

import (
	"context"
	"errors"

	"wallet/internal/model"
	"wallet/internal/repository"

	"gorm.io/gorm"
)

type BeneficiaryService struct {
	beneficiaryRepo *repository.BeneficiaryRepository
}

func NewBeneficiaryService(db *gorm.DB) *BeneficiaryService {
	return &BeneficiaryService{beneficiaryRepo: repository.NewBeneficiaryRepository(db)}
}

func (s *BeneficiaryService) List(ctx context.Context, userID int64, name string) ([]*model.Beneficiary, error) {
	beneficiaries, err := s.beneficiaryRepo.ListByUserID(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if beneficiaries == nil {
		beneficiaries = []*model.Beneficiary{}
	}
	return beneficiaries, nil
}

func (s *BeneficiaryService) Get(ctx context.Context, userID, id int64) (*model.Beneficiary, error) {
	beneficiary, err := s.beneficiaryRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrBeneficiaryNotFound) {
			return nil, ErrBeneficiaryNotFound
		}
		return nil, err
	}
	return beneficiary, nil
}

// Save is idempotent on (userID, accountNumber, case-folded name).
func (s *BeneficiaryService) Save(ctx context.Context, tx *gorm.DB, userID int64, accountNumber, name string) (*model.Beneficiary, error) {
	return s.beneficiaryRepo.Save(ctx, tx, userID, accountNumber, name)
}
