package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Key names a persisted session value.
type Key string

const (
	KeyAccessToken  Key = "accessToken"
	KeyRefreshToken Key = "refreshToken"
	KeyUserInfo     Key = "userInfo"
)

// SessionKeys are every key that makes up a persisted session. They are
// always cleared together.
var SessionKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyUserInfo}

// Store is the root persisted storage interface. Concrete drivers (sqlite,
// redis, memory) implement this. Values is a method rather than an embedded
// interface so a Tx-scoped Store can hand out repos bound to the transaction.
type Store interface {
	Values() Values

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is still reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Values is a string key-value repository.
type Values interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key Key) (string, error)

	// Put inserts or replaces a value.
	Put(ctx context.Context, key Key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...Key) error
}

// ClearSession removes every session key in one transaction, so a reader never
// sees a token without its identity or the other way round.
func ClearSession(ctx context.Context, s Store) error {
	return s.WithTx(ctx, func(tx Tx) error {
		return tx.Values().Delete(ctx, SessionKeys...)
	})
}
