// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/stretchr/testify/require"
)

// Run exercises a driver. newStore must return an empty, migrated store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Values().Get(ctx, store.KeyAccessToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put overwrites", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Values().Put(ctx, store.KeyAccessToken, "first"))
		require.NoError(t, st.Values().Put(ctx, store.KeyAccessToken, "second"))

		got, err := st.Values().Get(ctx, store.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "second", got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Values().Put(ctx, store.KeyRefreshToken, "r"))
		require.NoError(t, st.Values().Delete(ctx, store.KeyRefreshToken))
		require.NoError(t, st.Values().Delete(ctx, store.KeyRefreshToken))
		require.NoError(t, st.Values().Delete(ctx))

		_, err := st.Values().Get(ctx, store.KeyRefreshToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("clear session removes all keys", func(t *testing.T) {
		st := newStore(t)
		for _, k := range store.SessionKeys {
			require.NoError(t, st.Values().Put(ctx, k, string(k)+"-value"))
		}

		require.NoError(t, store.ClearSession(ctx, st))
		require.NoError(t, store.ClearSession(ctx, st))

		for _, k := range store.SessionKeys {
			_, err := st.Values().Get(ctx, k)
			require.ErrorIs(t, err, store.ErrNotFound, "key %s", k)
		}
	})

	t.Run("committed tx is visible", func(t *testing.T) {
		st := newStore(t)
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Values().Put(ctx, store.KeyAccessToken, "a.b.c"); err != nil {
				return err
			}
			return tx.Values().Put(ctx, store.KeyUserInfo, `{"id":1}`)
		})
		require.NoError(t, err)

		got, err := st.Values().Get(ctx, store.KeyUserInfo)
		require.NoError(t, err)
		require.JSONEq(t, `{"id":1}`, got)
	})

	t.Run("failed tx is rolled back", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Values().Put(ctx, store.KeyAccessToken, "keep"))

		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Values().Delete(ctx, store.SessionKeys...); err != nil {
				return err
			}
			if err := tx.Values().Put(ctx, store.KeyUserInfo, "partial"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := st.Values().Get(ctx, store.KeyAccessToken)
		require.NoError(t, err)
		require.Equal(t, "keep", got)

		_, err = st.Values().Get(ctx, store.KeyUserInfo)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(ctx))
	})
}
