// Package kv implements the client's durable key-value store. It is the
// local-storage analogue: a small SQLite database surviving restarts, shared
// by the cart and the session under disjoint keys.
package kv

import "context"

// Store is a durable string-to-bytes map.
//
// Get returns (nil, nil) when the key is absent; callers distinguish
// "missing" from "empty" by the nil slice.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// SetMany writes all pairs in a single transaction: either every key is
	// updated or none is. Used where two keys must stay consistent with each
	// other (token + cached user).
	SetMany(ctx context.Context, pairs map[string][]byte) error

	// DeleteMany removes all keys in a single transaction.
	DeleteMany(ctx context.Context, keys ...string) error

	Clear(ctx context.Context) error
}
