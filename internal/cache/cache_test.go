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

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

type profile struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.User.Set(ctx, UserProfileKey("u1"), profile{ID: "u1", Level: 3}, time.Minute))
	assert.True(t, mr.Exists("user:profile:u1"))

	var got profile
	require.NoError(t, cm.User.Get(ctx, UserProfileKey("u1"), &got))
	assert.Equal(t, profile{ID: "u1", Level: 3}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cm.User.Get(ctx, UserProfileKey("u1"), &got), ErrCacheNotFound)

	require.NoError(t, cm.Voice.SetString(ctx, "k", "audio", time.Minute))
	assert.True(t, mr.Exists("voice:k"))
	require.NoError(t, cm.Voice.Delete(ctx, "k"))
	assert.False(t, mr.Exists("voice:k"))
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return profile{ID: "u2", Level: 5}, nil
	}

	for i := 0; i < 3; i++ {
		var got profile
		require.NoError(t, cm.User.CacheOrExecute(ctx, "profile:u2", &got, time.Minute, fetch))
		assert.Equal(t, 5, got.Level)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("db down")
	var got profile
	err := cm.User.CacheOrExecute(ctx, "profile:u3", &got, time.Minute, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, k := range []string{"profile:a", "profile:b", "other:c"} {
		require.NoError(t, cm.User.SetString(ctx, k, "v", time.Minute))
	}
	require.NoError(t, cm.User.InvalidatePattern(ctx, "profile:*"))

	assert.False(t, mr.Exists("user:profile:a"))
	assert.False(t, mr.Exists("user:profile:b"))
	assert.True(t, mr.Exists("user:other:c"))
}

func TestInvalidateUserCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.User.SetString(ctx, UserProfileKey("u1"), "p", time.Minute))
	require.NoError(t, cm.Progress.SetString(ctx, UserProgressKey("u1"), "p", time.Minute))

	InvalidateUserCache(ctx, cm, "u1")

	assert.False(t, mr.Exists("user:profile:u1"))
	assert.False(t, mr.Exists("progress:list:u1"))
}

func TestResetUserCaches(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.User.SetString(ctx, UserProfileKey("u1"), "p", time.Minute))
	require.NoError(t, cm.User.SetString(ctx, UserProfileKey("u2"), "p", time.Minute))
	require.NoError(t, cm.Progress.SetString(ctx, UserProgressKey("u1"), "p", time.Minute))
	require.NoError(t, cm.Voice.SetString(ctx, VoiceKey("en", "hello"), "audio", time.Minute))

	ResetUserCaches(ctx, cm)

	assert.False(t, mr.Exists("user:profile:u1"))
	assert.False(t, mr.Exists("user:profile:u2"))
	assert.False(t, mr.Exists("progress:list:u1"))
	assert.True(t, mr.Exists("voice:"+VoiceKey("en", "hello")))

	// no client: nothing to reset
	ResetUserCaches(ctx, NewCacheManager(nil))
}

func TestNilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.NoError(t, cm.Voice.Set(ctx, "k", "v", time.Minute))
	var s string
	assert.ErrorIs(t, cm.Voice.Get(ctx, "k", &s), ErrCacheNotAvailable)
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.False(t, cm.Voice.Available())

	calls := 0
	require.NoError(t, cm.User.CacheOrExecute(ctx, "x", &s, time.Minute, func() (interface{}, error) {
		calls++
		return "fresh", nil
	}))
	assert.Equal(t, "fresh", s)
	assert.Equal(t, 1, calls)
}

func TestVoiceKey(t *testing.T) {
	a := VoiceKey("en", "Score 2.8 out of 4.0")
	assert.Equal(t, a, VoiceKey("en", "Score 2.8 out of 4.0"))
	assert.NotEqual(t, a, VoiceKey("th", "Score 2.8 out of 4.0"))
	assert.Len(t, a, len("en:")+64)
}
