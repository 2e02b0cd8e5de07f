package api

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// TokenSource yields the bearer token for outbound requests.
// An empty string means "no token": the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// KVTokenSource reads the token from the durable store on every request, so
// a logout (which deletes the key) is immediately visible to in-flight
// callers without any coordination.
type KVTokenSource struct {
	store kv.Store
}

func NewKVTokenSource(store kv.Store) *KVTokenSource {
	return &KVTokenSource{store: store}
}

func (s *KVTokenSource) Token(ctx context.Context) string {
	b, err := s.store.Get(ctx, common.KeyAuthToken)
	if err != nil {
		return ""
	}
	return string(b)
}

// StaticTokenSource returns a fixed token. Used in tests.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) string { return string(s) }
