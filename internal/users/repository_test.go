package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryUpsertAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	err := repo.Upsert(ctx, &User{ID: "user_1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, RolePatient, got.Role, "role defaults to patient")
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInMemoryUpsertPreservesCreatedAtAndRole(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane@example.com", Role: RoleDoctor}))
	first, err := repo.Get(ctx, "user_1")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane.doe@example.com"}))
	second, err := repo.Get(ctx, "user_1")
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", second.Email)
	assert.Equal(t, RoleDoctor, second.Role, "role survives updates that omit it")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestInMemoryGetMissing(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryDelete(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &User{ID: "user_1", Email: "jane@example.com"}))
	require.NoError(t, repo.Delete(ctx, "user_1"))

	_, err := repo.Get(ctx, "user_1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user_1"), ErrNotFound)
}

func TestInMemoryUpsertRequiresID(t *testing.T) {
	repo := NewInMemoryRepository()
	assert.Error(t, repo.Upsert(context.Background(), &User{Email: "jane@example.com"}))
	assert.Error(t, repo.Upsert(context.Background(), nil))
}
