package repository

import (
	"context"
	"errors"
	"strings"

	"wallet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetByName(ctx context.Context, tx *gorm.DB, name string) (*model.Category, error) {
	if tx == nil {
		tx = r.db
	}
	var category model.Category
	err := tx.WithContext(ctx).Where("name = ?", strings.ToLower(strings.TrimSpace(name))).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetOrCreate returns the category with this name, inserting it first when missing.
// Names compare case-insensitively.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name string) (*model.Category, error) {
	category, err := r.GetByName(ctx, nil, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&model.Category{Name: strings.ToLower(strings.TrimSpace(name))}).Error
	if err != nil {
		return nil, err
	}

	return r.GetByName(ctx, nil, name)
}

func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}
