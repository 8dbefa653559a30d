package repository_test

import (
	"context"
	"testing"

	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/internal/testutil"
	"wallet/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAccountRepository_Create(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepository(db)
	tier := testutil.Tier(t, db, model.TierLevel1)
	ctx := context.Background()

	account := &model.Account{UserID: 42, TierID: tier.ID}
	require.NoError(t, repo.Create(ctx, nil, account))

	assert.NotZero(t, account.ID)
	assert.True(t, idgen.IsAccountNumber(account.AccountNumber))

	got, err := repo.GetByUserID(ctx, nil, 42)
	require.NoError(t, err)
	assert.Equal(t, account.AccountNumber, got.AccountNumber)
}

func TestAccountRepository_GetByAccountNumberExcludingUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepository(db)
	tier := testutil.Tier(t, db, model.TierLevel1)
	ctx := context.Background()

	owner, account := testutil.CreateAccount(t, db, "Ada", "Lovelace", "1234567890", 0, tier.ID)

	got, err := repo.GetByAccountNumberExcludingUser(ctx, "1234567890", owner.ID+1)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = repo.GetByAccountNumberExcludingUser(ctx, "1234567890", owner.ID)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	_, err = repo.GetByAccountNumberExcludingUser(ctx, "0000000000", owner.ID+1)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepository(db)
	tier := testutil.Tier(t, db, model.TierLevel1)
	ctx := context.Background()

	_, a := testutil.CreateAccount(t, db, "Ada", "Lovelace", "1111111111", 100, tier.ID)
	_, b := testutil.CreateAccount(t, db, "Alan", "Turing", "2222222222", 200, tier.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockForUpdate(ctx, tx, b.ID, a.ID, b.ID)
		require.NoError(t, err)
		assert.Len(t, locked, 2)
		assert.Equal(t, int64(100), locked[a.ID].Balance)
		assert.Equal(t, int64(200), locked[b.ID].Balance)
		return nil
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.LockForUpdate(ctx, tx, a.ID, 9999)
		return err
	})
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestAccountRepository_ApplyDelta(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAccountRepository(db)
	tier := testutil.Tier(t, db, model.TierLevel1)
	ctx := context.Background()

	_, account := testutil.CreateAccount(t, db, "Ada", "Lovelace", "1111111111", 100, tier.ID)

	require.NoError(t, repo.ApplyDelta(ctx, db, account.ID, 50))
	require.NoError(t, repo.ApplyDelta(ctx, db, account.ID, -150))
	assert.Equal(t, int64(0), testutil.Balance(t, db, account.ID))

	err := repo.ApplyDelta(ctx, db, account.ID, -1)
	assert.ErrorIs(t, err, repository.ErrBalanceNotEnough)
	assert.Equal(t, int64(0), testutil.Balance(t, db, account.ID))

	var stored model.Account
	require.NoError(t, db.First(&stored, account.ID).Error)
	assert.Equal(t, stored.Balance, stored.BookBalance)

	err = repo.ApplyDelta(ctx, db, 9999, 10)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestTierRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTierRepository(db)
	ctx := context.Background()

	tier, err := repo.GetByName(ctx, model.TierLevel2)
	require.NoError(t, err)
	assert.Equal(t, int64(50000_00), tier.MaxTransferPerTransaction)

	byID, err := repo.GetByID(ctx, nil, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, tier.Name, byID.Name)

	_, err = repo.GetByName(ctx, "level 9")
	assert.ErrorIs(t, err, repository.ErrTierNotFound)
}
