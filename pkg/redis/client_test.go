package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/gobacks-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Address: mr.Addr(), PoolSize: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSetGetAndDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	require.True(t, errors.Is(err, ErrNil))
}

func TestSetNXRespectsExistingKeyAndTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	ok, err := client.SetNX(ctx, "once", "first", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, "once", "second", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := client.Get(ctx, "once")
	require.NoError(t, err)
	require.Equal(t, "first", got)

	mr.FastForward(2 * time.Minute)
	_, err = client.Get(ctx, "once")
	require.ErrorIs(t, err, ErrNil)
}

func TestIdempotencyKeyIsNamespaced(t *testing.T) {
	client := &Client{}
	require.Equal(t, "gobacks:idempotency:POST|/cart:abc", client.IdempotencyKey("POST|/cart", "abc"))
	require.Equal(t, "gobacks:idempotency:abc", client.IdempotencyKey("", "abc"))
}

func TestPingAndUninitializedClient(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	require.Error(t, client.Ping(context.Background()))

	empty := &Client{}
	require.Error(t, empty.Ping(context.Background()))
	require.NoError(t, empty.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, "localhost:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, "secret", opts.Password)
	require.Equal(t, 7, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)

	_, err = optionsFromConfig(config.RedisConfig{URL: "://bad"})
	require.Error(t, err)
}
