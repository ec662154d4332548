package redis

import (
	"context"
	"sync"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/redis/go-redis/v9"
)

type txStore struct {
	s    *Store
	ctx  context.Context
	pipe redis.Pipeliner

	mu   sync.Mutex
	done bool
}

func (t *txStore) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true

	if t.pipe.Len() == 0 {
		return nil
	}
	_, err := t.pipe.Exec(t.ctx)
	return err
}

func (t *txStore) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.pipe.Discard()
	return nil
}

func (t *txStore) Values() store.Values { return &txValues{t: t} }

func (t *txStore) ApplyMigrations() error         { return nil }
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errNestedTx
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

type txValues struct {
	t *txStore
}

func (v *txValues) Get(ctx context.Context, key store.Key) (string, error) {
	return (&valuesRepo{s: v.t.s}).Get(ctx, key)
}

func (v *txValues) Put(ctx context.Context, key store.Key, value string) error {
	return v.t.pipe.Set(ctx, v.t.s.key(key), value, 0).Err()
}

func (v *txValues) Delete(ctx context.Context, keys ...store.Key) error {
	if len(keys) == 0 {
		return nil
	}
	return v.t.pipe.Del(ctx, v.t.s.keys(keys)...).Err()
}
