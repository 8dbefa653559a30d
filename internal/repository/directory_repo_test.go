package repository_test

import (
	"context"
	"testing"

	"wallet/internal/model"
	"wallet/internal/repository"
	"wallet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewCategoryRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, " Groceries ")
	require.NoError(t, err)
	assert.Equal(t, "groceries", first.Name)

	second, err := repo.GetOrCreate(ctx, "GROCERIES")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	transfer, err := repo.GetByName(ctx, nil, model.CategoryTransfer)
	require.NoError(t, err)
	assert.NotZero(t, transfer.ID)

	_, err = repo.GetByName(ctx, nil, "rent")
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"groceries", "top-up", "transfer"}, names)
}

func TestBeneficiaryRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBeneficiaryRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, nil, 1, "1234567890", "Lovelace Ada")
	require.NoError(t, err)
	assert.Equal(t, "lovelace ada", saved.Name)

	again, err := repo.Save(ctx, nil, 1, "1234567890", "LOVELACE ADA")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	_, err = repo.Save(ctx, nil, 1, "2222222222", "Turing Alan")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, 2, "1234567890", "Lovelace Ada")
	require.NoError(t, err)

	all, err := repo.ListByUserID(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListByUserID(ctx, 1, "LACE")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "1234567890", filtered[0].AccountNumber)

	none, err := repo.ListByUserID(ctx, 1, "hopper")
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := repo.GetByID(ctx, 1, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Name, got.Name)

	_, err = repo.GetByID(ctx, 2, saved.ID)
	assert.ErrorIs(t, err, repository.ErrBeneficiaryNotFound)
}

func TestBeneficiaryRepository_LiteralSearch(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewBeneficiaryRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, nil, 1, "1111111111", "Lovelace Ada")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, 1, "3333333333", "O_Brien Flann")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, 1, "4444444444", "Fifty 100% Ltd")
	require.NoError(t, err)

	for term, want := range map[string][]string{
		"_":     {"3333333333"},
		"%":     {"4444444444"},
		"o_b":   {"3333333333"},
		"0% l":  {"4444444444"},
		"!":     nil,
		"a_a":   nil,
		"%ada%": nil,
	} {
		got, err := repo.ListByUserID(ctx, 1, term)
		require.NoError(t, err, term)
		numbers := make([]string, 0, len(got))
		for _, b := range got {
			numbers = append(numbers, b.AccountNumber)
		}
		assert.ElementsMatch(t, want, numbers, term)
	}
}
