package store

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/nhatro/ownerportal/pkg/cryptox"
)

// Sealer encrypts values at rest. *cryptox.Sealer implements it.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(sealed, aad []byte) ([]byte, error)
}

// Sealed wraps a Store so every value is encrypted before it reaches the
// driver. The key name is bound as associated data. A value that cannot be
// opened reads as ErrNotFound.
func Sealed(inner Store, sealer Sealer) Store {
	return &sealedStore{inner: inner, sealer: sealer}
}

var (
	_ Store = (*sealedStore)(nil)
	_ Tx    = (*sealedTx)(nil)
)

type sealedStore struct {
	inner  Store
	sealer Sealer
}

func (s *sealedStore) Values() Values {
	return &sealedValues{inner: s.inner.Values(), sealer: s.sealer}
}

func (s *sealedStore) ApplyMigrations() error         { return s.inner.ApplyMigrations() }
func (s *sealedStore) Close() error                   { return s.inner.Close() }
func (s *sealedStore) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

func (s *sealedStore) Tx(ctx context.Context) (Tx, error) {
	tx, err := s.inner.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &sealedTx{inner: tx, sealer: s.sealer}, nil
}

func (s *sealedStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.inner.WithTx(ctx, func(tx Tx) error {
		return fn(&sealedTx{inner: tx, sealer: s.sealer})
	})
}

type sealedTx struct {
	inner  Tx
	sealer Sealer
}

func (t *sealedTx) Values() Values {
	return &sealedValues{inner: t.inner.Values(), sealer: t.sealer}
}

func (t *sealedTx) ApplyMigrations() error         { return t.inner.ApplyMigrations() }
func (t *sealedTx) Close() error                   { return t.inner.Close() }
func (t *sealedTx) Ping(ctx context.Context) error { return t.inner.Ping(ctx) }
func (t *sealedTx) Commit() error                  { return t.inner.Commit() }
func (t *sealedTx) Rollback() error                { return t.inner.Rollback() }

func (t *sealedTx) Tx(ctx context.Context) (Tx, error) {
	tx, err := t.inner.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &sealedTx{inner: tx, sealer: t.sealer}, nil
}

func (t *sealedTx) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return t.inner.WithTx(ctx, func(tx Tx) error {
		return fn(&sealedTx{inner: tx, sealer: t.sealer})
	})
}

type sealedValues struct {
	inner  Values
	sealer Sealer
}

func (v *sealedValues) Get(ctx context.Context, key Key) (string, error) {
	raw, err := v.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrNotFound
	}
	plain, err := v.sealer.Open(sealed, []byte(key))
	if err != nil {
		if errors.Is(err, cryptox.ErrOpen) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(plain), nil
}

func (v *sealedValues) Put(ctx context.Context, key Key, value string) error {
	sealed, err := v.sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return err
	}
	return v.inner.Put(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (v *sealedValues) Delete(ctx context.Context, keys ...Key) error {
	return v.inner.Delete(ctx, keys...)
}
