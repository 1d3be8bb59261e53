package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db := NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mobile := "9870000000"
	u, err := repo.Create(ctx, &model.User{Username: "sita", Email: "sita@example.com", Mobile: &mobile, PasswordHash: "x"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)

	_, err = repo.Create(ctx, &model.User{Username: "sita", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = repo.Create(ctx, &model.User{Username: "gita", Mobile: &mobile, PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrUserMobileTaken)
}

func TestUserRepository_RoleIsNormalised(t *testing.T) {
	db := NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	admin, err := repo.Create(ctx, &model.User{Username: "root", Role: model.RoleAdmin, PasswordHash: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	odd, err := repo.Create(ctx, &model.User{Username: "odd", Role: model.Role("superuser"), PasswordHash: "x"})
	require.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, odd.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, reloaded.Role)
}

func TestUserRepository_Lookups(t *testing.T) {
	db := NewTestDB(t)
	repo := NewUserRepository(db)
	debtors := NewDebtorRepository(db)
	ctx := context.Background()

	u, err := repo.Create(ctx, &model.User{Username: "hari", PasswordHash: "old"})
	require.NoError(t, err)
	idle, err := repo.Create(ctx, &model.User{Username: "idle", PasswordHash: "x"})
	require.NoError(t, err)

	found, err := repo.GetByUsername(ctx, "hari")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new"))
	require.NoError(t, repo.UpdateProfilePic(ctx, u.ID, "profile/hari.png"))
	found, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", found.PasswordHash)
	assert.Equal(t, "profile/hari.png", found.ProfilePic)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, 999, "x"), ErrUserNotFound)

	_, err = debtors.Create(ctx, newDebtor(u.ID, "9871000001", 10))
	require.NoError(t, err)
	d2, err := debtors.Create(ctx, newDebtor(u.ID, "9871000002", 0))
	require.NoError(t, err)
	require.NoError(t, debtors.SoftDelete(ctx, d2.ID, time.Now()))

	overview, err := repo.ListWithDebtorCounts(ctx)
	require.NoError(t, err)
	require.Len(t, overview, 2)
	assert.Equal(t, "hari", overview[0].Username)
	assert.Equal(t, int64(2), overview[0].DebtorCount)
	assert.Equal(t, idle.ID, overview[1].ID)
	assert.Zero(t, overview[1].DebtorCount)
}
