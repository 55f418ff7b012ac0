package repositories_test

import (
	"context"
	"testing"

	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/Kariqs/amexan-checkout/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCreatesThenIncrementsCounter(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewNotificationRepository(testutil.NewDB(t))

	require.NoError(t, repo.Append(ctx, "admin-1", "New order", ptr("order-1")))
	count, err := repo.Counter(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Append(ctx, "admin-1", "New order", nil))
	count, err = repo.Counter(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.Counter(ctx, "admin-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllReadResetsCounter(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewNotificationRepository(testutil.NewDB(t))

	require.NoError(t, repo.Append(ctx, "admin-1", "first", nil))
	require.NoError(t, repo.Append(ctx, "admin-1", "second", nil))
	require.NoError(t, repo.MarkAllRead(ctx, "admin-1"))

	count, err := repo.Counter(ctx, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	list, err := repo.List(ctx, "admin-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.True(t, n.Read)
	}

	require.NoError(t, repo.Append(ctx, "admin-1", "third", nil))
	count, err = repo.Counter(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIncrementCounter(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewNotificationRepository(testutil.NewDB(t))

	require.NoError(t, repo.IncrementCounter(ctx, "admin-9"))
	require.NoError(t, repo.IncrementCounter(ctx, "admin-9"))

	count, err := repo.Counter(ctx, "admin-9")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
