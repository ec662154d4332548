package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/redis"
	"github.com/nhatro/ownerportal/internal/portal/store/storetest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		_, client := newTestRedis(t)
		return redis.NewStoreWithClient(client, "test")
	})
}

func TestKeysArePrefixed(t *testing.T) {
	mr, client := newTestRedis(t)
	st := redis.NewStoreWithClient(client, "portal")

	require.NoError(t, st.Values().Put(context.Background(), store.KeyAccessToken, "a.b.c"))

	got, err := mr.Get("portal:accessToken")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", got)
}

func TestClearSessionUsesOneTransaction(t *testing.T) {
	mr, client := newTestRedis(t)
	st := redis.NewStoreWithClient(client, "")
	ctx := context.Background()

	for _, k := range store.SessionKeys {
		require.NoError(t, st.Values().Put(ctx, k, "v"))
	}
	require.NoError(t, store.ClearSession(ctx, st))

	for _, k := range store.SessionKeys {
		require.False(t, mr.Exists("ownerportal:"+string(k)))
	}
}

func TestNewStoreDialsServer(t *testing.T) {
	mr, _ := newTestRedis(t)

	st := redis.NewStore(redis.Options{Addr: mr.Addr(), Prefix: "p"})
	defer st.Close()

	require.NoError(t, st.Ping(context.Background()))
}

func TestPingFailsWhenServerIsGone(t *testing.T) {
	mr, client := newTestRedis(t)
	st := redis.NewStoreWithClient(client, "")
	mr.Close()

	require.Error(t, st.Ping(context.Background()))
}

func TestCommitHonoursTransactionContext(t *testing.T) {
	mr, client := newTestRedis(t)
	st := redis.NewStoreWithClient(client, "portal")

	ctx, cancel := context.WithCancel(context.Background())
	tx, err := st.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Values().Put(ctx, store.KeyAccessToken, "a.b.c"))

	cancel()
	require.ErrorIs(t, tx.Commit(), context.Canceled)
	require.False(t, mr.Exists("portal:accessToken"))
}
