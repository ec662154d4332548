// Package memory is a process-local store. Nothing survives a restart, which
// makes it the driver for tests and for operators who want no disk state.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/nhatro/ownerportal/internal/portal/store"
)

var errNestedTx = errors.New("memory: nested transactions are not supported")

type Store struct {
	mu   sync.RWMutex
	data map[store.Key]string
}

func NewStore() *Store {
	return &Store{data: make(map[store.Key]string)}
}

func (s *Store) Values() store.Values { return &valuesRepo{s: s} }

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

// Tx stages writes and applies them under the write lock on Commit.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	return &txStore{s: s, staged: make(map[store.Key]*string)}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// Snapshot returns a copy of every stored value.
func (s *Store) Snapshot() map[store.Key]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

type valuesRepo struct {
	s *Store
}

func (r *valuesRepo) Get(ctx context.Context, key store.Key) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (r *valuesRepo) Put(ctx context.Context, key store.Key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data[key] = value
	return nil
}

func (r *valuesRepo) Delete(ctx context.Context, keys ...store.Key) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range keys {
		delete(r.s.data, k)
	}
	return nil
}

type txStore struct {
	s *Store

	mu     sync.Mutex
	staged map[store.Key]*string // nil value means delete
	done   bool
}

func (t *txStore) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for k, v := range t.staged {
		if v == nil {
			delete(t.s.data, k)
			continue
		}
		t.s.data[k] = *v
	}
	return nil
}

func (t *txStore) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.staged = nil
	return nil
}

func (t *txStore) Values() store.Values           { return &txValues{t: t} }
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

// Get sees the transaction's own staged writes.
func (v *txValues) Get(ctx context.Context, key store.Key) (string, error) {
	v.t.mu.Lock()
	staged, ok := v.t.staged[key]
	v.t.mu.Unlock()

	if ok {
		if staged == nil {
			return "", store.ErrNotFound
		}
		return *staged, nil
	}
	return (&valuesRepo{s: v.t.s}).Get(ctx, key)
}

func (v *txValues) Put(ctx context.Context, key store.Key, value string) error {
	v.t.mu.Lock()
	defer v.t.mu.Unlock()
	if v.t.done {
		return errors.New("memory: transaction already finished")
	}
	v.t.staged[key] = &value
	return nil
}

func (v *txValues) Delete(ctx context.Context, keys ...store.Key) error {
	v.t.mu.Lock()
	defer v.t.mu.Unlock()
	if v.t.done {
		return errors.New("memory: transaction already finished")
	}
	for _, k := range keys {
		v.t.staged[k] = nil
	}
	return nil
}
