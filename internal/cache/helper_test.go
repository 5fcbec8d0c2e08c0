package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_CacheMissThenHit(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	loads := 0
	load := func(dest *cachedProfile) func() error {
		return func() error {
			loads++
			dest.ID = 7
			dest.Nickname = "Ada"
			return nil
		}
	}

	var first cachedProfile
	require.NoError(t, Aside(ctx, "user:7", &first, time.Minute, load(&first)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, "Ada", first.Nickname)

	// Second read is served from the cache
	var second cachedProfile
	require.NoError(t, Aside(ctx, "user:7", &second, time.Minute, load(&second)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)
}

func TestAside_LoaderErrorPropagates(t *testing.T) {
	setupTestRedis(t)

	var dest cachedProfile
	wantErr := errors.New("boom")
	err := Aside(context.Background(), "user:9", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAside_NilClientDegradesToLoad(t *testing.T) {
	SetClient(nil)

	var dest cachedProfile
	err := Aside(context.Background(), "user:1", &dest, time.Minute, func() error {
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), dest.ID)
}

func TestAside_CorruptEntryFallsBack(t *testing.T) {
	mr := setupTestRedis(t)
	require.NoError(t, mr.Set("user:3", "{not json"))

	var dest cachedProfile
	err := Aside(context.Background(), "user:3", &dest, time.Minute, func() error {
		dest.ID = 3
		dest.Nickname = "Grace"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", dest.Nickname)
}

func TestInvalidateUser(t *testing.T) {
	mr := setupTestRedis(t)
	require.NoError(t, mr.Set(UserKey(5), `{"id":5}`))

	InvalidateUser(context.Background(), 5)
	assert.False(t, mr.Exists(UserKey(5)))
}
