package repository

import (
	"context"
	"errors"

	"wallet/internal/model"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.User, error) {
	if tx == nil {
		tx = r.db
	}
	var user model.User
	err := tx.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
