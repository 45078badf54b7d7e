package persistence

import (
	"context"
	"errors"
	"time"

	"folio_server/core/port/out"
	"folio_server/pkg/cache"
)

// RedisOAuthStateStore keeps one-time sign-in state values with their return path.
type RedisOAuthStateStore struct {
	kv *cache.RedisCache
}

var _ out.StateStore = (*RedisOAuthStateStore)(nil)

func NewRedisOAuthStateStore(kv *cache.RedisCache) *RedisOAuthStateStore {
	return &RedisOAuthStateStore{kv: kv}
}

func (s *RedisOAuthStateStore) StoreState(ctx context.Context, state, callbackURL string, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	return mapErr("store oauth state", s.kv.SetString(ctx, OAuthStateKey+state, callbackURL, ttl))
}

// ConsumeState reads and deletes in one GETDEL so a state can be used once.
func (s *RedisOAuthStateStore) ConsumeState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", out.ErrNotFound
	}
	cb, err := s.kv.GetDel(ctx, OAuthStateKey+state)
	if err != nil {
		return "", mapErr("consume oauth state", err)
	}
	return cb, nil
}
