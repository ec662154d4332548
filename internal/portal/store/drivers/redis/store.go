package redis

import (
	"context"
	"errors"

	"github.com/nhatro/ownerportal/internal/portal/store"
	"github.com/redis/go-redis/v9"
)

var errNestedTx = errors.New("redis: nested transactions are not supported")

// Store keeps session values under "<prefix>:<key>".
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	owned  bool
}

// Options configures NewStore.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewStore dials a redis server. Close closes the client.
func NewStore(opts Options) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := NewStoreWithClient(rdb, opts.Prefix)
	s.owned = true
	return s
}

// NewStoreWithClient wraps an existing client. Close leaves it open.
func NewStoreWithClient(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ownerportal"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k store.Key) string { return s.prefix + ":" + string(k) }

func (s *Store) Values() store.Values { return &valuesRepo{s: s} }

// ApplyMigrations is a no-op; redis has no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error {
	if s.owned {
		return s.rdb.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Tx queues writes in a MULTI/EXEC pipeline. Reads inside the transaction go
// straight to the server and do not see queued writes.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	return &txStore{s: s, ctx: ctx, pipe: s.rdb.TxPipeline()}, nil
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

type valuesRepo struct {
	s *Store
}

func (r *valuesRepo) Get(ctx context.Context, key store.Key) (string, error) {
	val, err := r.s.rdb.Get(ctx, r.s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	return val, err
}

func (r *valuesRepo) Put(ctx context.Context, key store.Key, value string) error {
	return r.s.rdb.Set(ctx, r.s.key(key), value, 0).Err()
}

// Delete removes all keys with a single DEL so the removal is atomic.
func (r *valuesRepo) Delete(ctx context.Context, keys ...store.Key) error {
	if len(keys) == 0 {
		return nil
	}
	return r.s.rdb.Del(ctx, r.s.keys(keys)...).Err()
}

func (s *Store) keys(keys []store.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s.key(k)
	}
	return out
}
