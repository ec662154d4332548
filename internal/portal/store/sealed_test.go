package store_test

import (
	"context"
	"testing"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/memory"
	"github.com/nhatro/ownerportal/internal/portal/store/storetest"
	"github.com/nhatro/ownerportal/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T, key string) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte(key))
	require.NoError(t, err)
	return s
}

func TestSealedContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.Sealed(memory.NewStore(), newSealer(t, "contract-key"))
	})
}

func TestSealedHidesPlaintext(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	st := store.Sealed(inner, newSealer(t, "k1"))

	require.NoError(t, st.Values().Put(ctx, store.KeyAccessToken, "h.p.s"))

	raw := inner.Snapshot()[store.KeyAccessToken]
	require.NotEmpty(t, raw)
	require.NotContains(t, raw, "h.p.s")

	got, err := st.Values().Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "h.p.s", got)
}

func TestSealedUnreadableValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	require.NoError(t, store.Sealed(inner, newSealer(t, "old-key")).Values().Put(ctx, store.KeyUserInfo, `{"id":1}`))
	require.NoError(t, inner.Values().Put(ctx, store.KeyAccessToken, "not base64 !!"))

	st := store.Sealed(inner, newSealer(t, "new-key"))

	_, err := st.Values().Get(ctx, store.KeyUserInfo)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Values().Get(ctx, store.KeyAccessToken)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSealedBindsKeyName(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	st := store.Sealed(inner, newSealer(t, "k1"))

	require.NoError(t, st.Values().Put(ctx, store.KeyRefreshToken, "r.r.r"))

	// Moving a sealed value under another key must not make it readable there.
	require.NoError(t, inner.Values().Put(ctx, store.KeyAccessToken, inner.Snapshot()[store.KeyRefreshToken]))

	_, err := st.Values().Get(ctx, store.KeyAccessToken)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSealedTransactionSealsWrites(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	st := store.Sealed(inner, newSealer(t, "k1"))

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Values().Put(ctx, store.KeyUserInfo, `{"id":1}`)
	}))
	require.NotContains(t, inner.Snapshot()[store.KeyUserInfo], `"id"`)

	tx, err := st.Tx(ctx)
	require.NoError(t, err)
	got, err := tx.Values().Get(ctx, store.KeyUserInfo)
	require.NoError(t, err)
	require.Equal(t, `{"id":1}`, got)
	require.NoError(t, tx.Rollback())
	require.NoError(t, st.Ping(ctx))
}
