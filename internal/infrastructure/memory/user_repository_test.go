package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/authmify/internal/domain/repository"
)

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u, err := repo.Create(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.Create(ctx, "a@example.com", "h1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "a@example.com", "h2")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCreate_ConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, "race@example.com", "h")
			switch err {
			case nil:
				ok.Add(1)
			case repository.ErrDuplicate:
				dup.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 31, dup.Load())
}

func TestUpdateBiometricKey(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u1, _ := repo.Create(ctx, "u1@example.com", "h")
	u2, _ := repo.Create(ctx, "u2@example.com", "h")

	require.NoError(t, repo.UpdateBiometricKey(ctx, u1.ID, "k1"))
	got, err := repo.FindByBiometricKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, got.ID)

	assert.ErrorIs(t, repo.UpdateBiometricKey(ctx, u2.ID, "k1"), repository.ErrDuplicate)
	require.NoError(t, repo.UpdateBiometricKey(ctx, u1.ID, "k1"))

	require.NoError(t, repo.UpdateBiometricKey(ctx, u1.ID, "k2"))
	_, err = repo.FindByBiometricKey(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.UpdateBiometricKey(ctx, "missing", "k3"), repository.ErrNotFound)
}

func TestFindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u, _ := repo.Create(ctx, "a@example.com", "h")

	u.Email = "mutated@example.com"
	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}
