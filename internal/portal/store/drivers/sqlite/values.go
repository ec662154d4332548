package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/nhatro/ownerportal/internal/portal/store"
)

type valuesRepo struct {
	q querier
}

func (r *valuesRepo) Get(ctx context.Context, key store.Key) (string, error) {
	var value string
	err := r.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, string(key)).Scan(&value)
	if err != nil {
		return "", mapNotFound(err)
	}
	return value, nil
}

func (r *valuesRepo) Put(ctx context.Context, key store.Key, value string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(key), value, time.Now().UTC(),
	)
	return err
}

func (r *valuesRepo) Delete(ctx context.Context, keys ...store.Key) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = string(k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	_, err := r.q.ExecContext(ctx, `DELETE FROM kv WHERE key IN (`+placeholders+`)`, args...)
	return err
}
