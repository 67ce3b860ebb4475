package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"aviary/internal/cache"
	"aviary/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

// A user served from the cache must carry the stored password hash: the
// json:"-" tag on the field would otherwise drop it on the round trip, and
// saving such a copy back wipes the column.
func TestUserRepository_CachePreservesPasswordHash(t *testing.T) {
	setupCache(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	hash := "$2a$10$notarealhashbutitmustsurvive"
	u := &models.User{
		Username: fmt.Sprintf("ch_%d", ts),
		Email:    fmt.Sprintf("ch_%d@e.com", ts),
		Password: hash,
	}
	require.NoError(t, repo.Create(ctx, u))

	// First read populates the cache, second read is served from it
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	cached, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, cached.Password)

	// A bio-only edit of the cached copy must not touch the stored hash
	cached.Bio = "hello"
	require.NoError(t, repo.Update(ctx, cached))

	fresh, err := repo.GetByUsername(ctx, u.Username)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "hello", fresh.Bio)
	assert.Equal(t, hash, fresh.Password)
}

func TestUserRepository_ProfileCache(t *testing.T) {
	setupCache(t)
	users := NewUserRepository(testDB)
	follows := NewFollowRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	owner := &models.User{Username: fmt.Sprintf("pc_%d", ts), Email: fmt.Sprintf("pc_%d@e.com", ts), Password: "hashed"}
	fan := &models.User{Username: fmt.Sprintf("pf_%d", ts), Email: fmt.Sprintf("pf_%d@e.com", ts), Password: "hashed"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, fan))

	profile, err := users.GetProfile(ctx, owner.Username)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.FollowersCount)

	// Served from the cache: a direct DB write stays invisible
	require.NoError(t, testDB.Model(&models.User{}).Where("id = ?", owner.ID).Update("bio", "direct").Error)
	stale, err := users.GetProfile(ctx, owner.Username)
	require.NoError(t, err)
	assert.Empty(t, stale.Bio)

	// A follow invalidates both profiles; counts come back fresh
	require.NoError(t, follows.Follow(ctx, &models.Follow{FollowerID: fan.ID, FolloweeID: owner.ID}, nil))

	fresh, err := users.GetProfile(ctx, owner.Username)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.FollowersCount)
	assert.Equal(t, "direct", fresh.Bio)

	fanProfile, err := users.GetProfile(ctx, fan.Username)
	require.NoError(t, err)
	assert.Equal(t, 1, fanProfile.FollowingCount)
}
