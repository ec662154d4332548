package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/nhatro/ownerportal/internal/portal/store/drivers/sqlite"
	"github.com/nhatro/ownerportal/internal/portal/store/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.ApplyMigrations())
}

func TestNestedTxIsRejected(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		return err
	})
	require.Error(t, err)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/portal.db"
	ctx := context.Background()

	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Values().Put(ctx, store.KeyAccessToken, "a.b.c"))
	require.NoError(t, st.Close())

	st, err = sqlite.NewStore(path)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.ApplyMigrations())

	got, err := st.Values().Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "a.b.c", got)

	_, err = st.Values().Get(ctx, store.KeyUserInfo)
	require.True(t, errors.Is(err, store.ErrNotFound))
}
