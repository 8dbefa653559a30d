package repository_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(accountID, userID, amount int64, typ, status, session string, n int) *model.TransactionRecord {
	return &model.TransactionRecord{
		AccountID:      accountID,
		UserID:         userID,
		Amount:         amount,
		Type:           typ,
		Status:         status,
		SessionID:      session,
		TransactionRef: fmt.Sprintf("20240101000000REF%04d", n),
	}
}

func TestTransactionRepository_SumSince(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	records := []*model.TransactionRecord{
		newRecord(1, 1, 300, model.TransactionTypeDebit, model.TransactionStatusSuccess, "s1", 1),
		newRecord(1, 1, 200, model.TransactionTypeDebit, model.TransactionStatusSuccess, "s2", 2),
		newRecord(1, 1, 999, model.TransactionTypeCredit, model.TransactionStatusSuccess, "s3", 3),
		newRecord(1, 1, 999, model.TransactionTypeDebit, model.TransactionStatusRefunded, "s4", 4),
		newRecord(2, 2, 999, model.TransactionTypeDebit, model.TransactionStatusSuccess, "s5", 5),
	}
	require.NoError(t, repo.Create(ctx, nil, records...))

	old := newRecord(1, 1, 999, model.TransactionTypeDebit, model.TransactionStatusSuccess, "s6", 6)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, nil, old))

	total, err := repo.SumSince(ctx, nil, 1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1499), total)

	total, err = repo.SumSince(ctx, nil, 3, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		typ := model.TransactionTypeDebit
		if i%2 == 0 {
			typ = model.TransactionTypeCredit
		}
		record := newRecord(1, 1, int64(100+i), typ, model.TransactionStatusSuccess, fmt.Sprintf("s%d", i), i)
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, nil, record))
	}

	records, total, err := repo.ListByAccount(ctx, 1, repository.TransactionFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, records, 2)
	assert.Equal(t, int64(104), records[0].Amount)
	assert.Equal(t, int64(103), records[1].Amount)

	records, total, err = repo.ListByAccount(ctx, 1, repository.TransactionFilter{Type: model.TransactionTypeCredit}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 3)

	records, total, err = repo.ListByAccount(ctx, 1, repository.TransactionFilter{SessionID: "s1", Ref: "20240101000000REF0001"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, int64(101), records[0].Amount)

	records, total, err = repo.ListByAccount(ctx, 1, repository.TransactionFilter{}, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, records)

	records, total, err = repo.ListByAccount(ctx, 1, repository.TransactionFilter{}, math.MaxInt64/2+2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, records)

	records, total, err = repo.ListByAccount(ctx, 2, repository.TransactionFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}

func TestTransactionRepository_Lookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	debit := newRecord(1, 1, 100, model.TransactionTypeDebit, model.TransactionStatusSuccess, "pair", 1)
	credit := newRecord(2, 2, 100, model.TransactionTypeCredit, model.TransactionStatusSuccess, "pair", 2)
	require.NoError(t, repo.Create(ctx, nil, debit, credit))

	pair, err := repo.ListBySession(ctx, nil, "pair")
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, model.TransactionTypeDebit, pair[0].Type)
	assert.Equal(t, model.TransactionTypeCredit, pair[1].Type)
}
