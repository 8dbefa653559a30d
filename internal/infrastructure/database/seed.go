package database

import (
	"fmt"

	"wallet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed inserts the account tiers and the built-in categories. Running it again is a no-op.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := range model.DefaultTiers {
			tier := model.DefaultTiers[i]
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&tier).Error
			if err != nil {
				return fmt.Errorf("seed tier %q: %w", tier.Name, err)
			}
		}

		for _, name := range []string{model.CategoryTransfer, model.CategoryTopUp} {
			category := model.Category{Name: name}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&category).Error
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		return nil
	})
}
