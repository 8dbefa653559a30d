// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"wallet/internal/infrastructure/database"
	"wallet/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// NewDB returns a migrated and seeded in-memory SQLite database private to the test.
// The pool holds one connection, so concurrent transactions are serialised by the pool
// the way row locks serialise them on MySQL.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:wallet_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

// Tier loads a seeded tier by name.
func Tier(t *testing.T, db *gorm.DB, name string) *model.AccountTier {
	t.Helper()
	var tier model.AccountTier
	require.NoError(t, db.Where("name = ?", name).First(&tier).Error)
	return &tier
}

// CreateTier inserts a custom tier for limit scenarios.
func CreateTier(t *testing.T, db *gorm.DB, tier model.AccountTier) *model.AccountTier {
	t.Helper()
	require.NoError(t, db.Create(&tier).Error)
	return &tier
}

// CreateAccount inserts a user profile and its account with the given balance.
func CreateAccount(t *testing.T, db *gorm.DB, first, last, accountNumber string, balance int64, tierID int64) (*model.User, *model.Account) {
	t.Helper()

	user := &model.User{
		Email:     fmt.Sprintf("%s.%s.%s@example.com", first, last, accountNumber),
		FirstName: first,
		LastName:  last,
	}
	require.NoError(t, db.Create(user).Error)

	account := &model.Account{
		UserID:        user.ID,
		AccountNumber: accountNumber,
		Balance:       balance,
		BookBalance:   balance,
		TierID:        tierID,
	}
	require.NoError(t, db.Create(account).Error)
	return user, account
}

// Balance re-reads an account balance.
func Balance(t *testing.T, db *gorm.DB, accountID int64) int64 {
	t.Helper()
	var account model.Account
	require.NoError(t, db.First(&account, accountID).Error)
	return account.Balance
}
