package persistence

import (
	"context"
	"time"

	"folio_server/core/port/out"
	"folio_server/pkg/cache"
)

// RedisTokenRevoker is the session blacklist. Entries expire with the token they revoke.
type RedisTokenRevoker struct {
	kv *cache.RedisCache
}

var _ out.TokenRevoker = (*RedisTokenRevoker)(nil)

func NewRedisTokenRevoker(kv *cache.RedisCache) *RedisTokenRevoker {
	return &RedisTokenRevoker{kv: kv}
}

func (r *RedisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return mapErr("revoke token", r.kv.SetString(ctx, RevokedKey+tokenID, "1", ttl))
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ok, err := r.kv.Exists(ctx, RevokedKey+tokenID)
	return ok, mapErr("check revoked token", err)
}
