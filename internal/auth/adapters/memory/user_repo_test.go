package memory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/auth/adapters/memory"
	"notekeeper/internal/auth/domain/entities"
	"notekeeper/internal/auth/domain/services"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		repo := memory.NewUserRepository()

		alice, err := repo.Create(ctx, &entities.User{Username: "alice", Email: "a@x.io", PasswordHash: "h1"})
		require.NoError(t, err)
		bob, err := repo.Create(ctx, &entities.User{Username: "bob", Email: "b@x.io", PasswordHash: "h2"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), alice.ID)
		assert.Equal(t, int64(2), bob.ID)
		assert.False(t, alice.CreatedAt.IsZero())

		found, err := repo.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)

		found, err = repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := memory.NewUserRepository()

		_, err := repo.FindByUsername(ctx, "ghost")
		require.ErrorIs(t, err, entities.ErrUserNotFound)

		_, err = repo.FindByID(ctx, 42)
		require.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := memory.NewUserRepository()

		_, err := repo.Create(ctx, &entities.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, &entities.User{Username: "alice", Email: "other@x.io", PasswordHash: "h"})
		require.ErrorIs(t, err, services.ErrUsernameAlreadyExists)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		repo := memory.NewUserRepository()

		created, err := repo.Create(ctx, &entities.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
		require.NoError(t, err)
		created.Username = "mallory"

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("concurrent registrations of one name", func(t *testing.T) {
		repo := memory.NewUserRepository()

		const workers = 16
		var wg sync.WaitGroup
		var created atomic.Int32
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Create(ctx, &entities.User{
					Username:     "alice",
					Email:        fmt.Sprintf("a%d@x.io", i),
					PasswordHash: "h",
				})
				if err == nil {
					created.Add(1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), created.Load())
	})
}
