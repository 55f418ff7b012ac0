package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/Kariqs/amexan-checkout/models"
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/Kariqs/amexan-checkout/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProvisionalLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(testutil.NewDB(t))

	guest := &models.User{Email: "guest@example.com", ExpireAt: ptr(time.Now().Add(time.Hour))}
	require.NoError(t, repo.Create(ctx, guest))

	got, err := repo.FindByEmail(ctx, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, guest.ID, got.ID)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.False(t, got.Verified)

	require.NoError(t, repo.ClearExpiry(ctx, guest.ID))
	deleted, err := repo.DeleteProvisional(ctx, guest.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "promoted user must survive")

	require.NoError(t, repo.SetExpiry(ctx, guest.ID, time.Now().Add(time.Hour)))
	deleted, err = repo.DeleteProvisional(ctx, guest.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, guest.ID)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestVerifiedUserIsNeverProvisional(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(testutil.NewDB(t))

	u := &models.User{Email: "v@example.com", ExpireAt: ptr(time.Now().Add(time.Hour))}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Verify(ctx, u.ID))

	deleted, err := repo.DeleteProvisional(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteLapsedKeepsOrderOwners(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)
	past := time.Now().Add(-time.Minute)

	lonely := &models.User{Email: "a@example.com", ExpireAt: ptr(past)}
	owner := &models.User{Email: "b@example.com", ExpireAt: ptr(past)}
	require.NoError(t, users.Create(ctx, lonely))
	require.NoError(t, users.Create(ctx, owner))

	order := provisionalOrder("stripe_checkout", "cs_u", time.Now().Add(time.Hour))
	order.UserID = owner.ID
	require.NoError(t, orders.CreateWithItems(ctx, order))

	n, err := users.DeleteLapsed(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = users.FindByID(ctx, owner.ID)
	assert.NoError(t, err)
}

func TestDeleteProvisionalKeepsOrderOwners(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)

	guest := &models.User{Email: "shared@example.com", ExpireAt: ptr(time.Now().Add(time.Hour))}
	require.NoError(t, users.Create(ctx, guest))
	order := provisionalOrder("stripe_checkout", "cs_shared", time.Now().Add(time.Hour))
	order.UserID = guest.ID
	require.NoError(t, orders.CreateWithItems(ctx, order))

	deleted, err := users.DeleteProvisional(ctx, guest.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "guest still owns an order")

	require.NoError(t, orders.Delete(ctx, order.ID))
	deleted, err = users.DeleteProvisional(ctx, guest.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestFindAdmin(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(testutil.NewDB(t))

	_, err := repo.FindAdmin(ctx)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin, Verified: true}
	require.NoError(t, repo.Create(ctx, admin))

	got, err := repo.FindAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
}
