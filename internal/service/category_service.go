package service

import (
	"context"
	"strings"

	"wallet/internal/model"
	"wallet/internal/repository"

	"gorm.io/gorm"
)

type CategoryService struct {
	categoryRepo *repository.CategoryRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{categoryRepo: repository.NewCategoryRepository(db)}
}

// Create returns the existing category when the name is already taken, ignoring case.
func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "category name is required")
	}
	return s.categoryRepo.GetOrCreate(ctx, name)
}

func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.List(ctx)
}
