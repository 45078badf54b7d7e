package persistence

import (
	"context"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/cache"
)

// RedisStore keeps users, portfolios and slug reservations in redis.
type RedisStore struct {
	kv *cache.RedisCache
}

var _ out.Store = (*RedisStore)(nil)

func NewRedisStore(kv *cache.RedisCache) *RedisStore {
	return &RedisStore{kv: kv}
}

func (s *RedisStore) GetUser(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := s.kv.GetJSON(ctx, userKey(email), &u); err != nil {
		return nil, mapErr("get user", err)
	}
	return &u, nil
}

func (s *RedisStore) CreateUserIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	ok, err := s.kv.SetJSONNX(ctx, userKey(user.Email), user, 0)
	return ok, mapErr("create user", err)
}

func (s *RedisStore) GetPortfolio(ctx context.Context, owner string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := s.kv.GetJSON(ctx, portfolioKey(owner), &p); err != nil {
		return nil, mapErr("get portfolio", err)
	}
	return &p, nil
}

func (s *RedisStore) SavePortfolio(ctx context.Context, owner string, p *domain.Portfolio) error {
	return mapErr("save portfolio", s.kv.SetJSON(ctx, portfolioKey(owner), p, 0))
}

func (s *RedisStore) CreatePortfolioIfAbsent(ctx context.Context, owner string, p *domain.Portfolio) (bool, error) {
	ok, err := s.kv.SetJSONNX(ctx, portfolioKey(owner), p, 0)
	return ok, mapErr("create portfolio", err)
}

func (s *RedisStore) ScanOwners(ctx context.Context, batchSize int, fn func(owners []string) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	err := s.kv.Scan(ctx, PortfolioKey+"*", int64(batchSize), func(keys []string) error {
		owners := make([]string, len(keys))
		for i, k := range keys {
			owners[i] = ownerFromPortfolioKey(k)
		}
		return fn(owners)
	})
	return mapErr("scan portfolios", err)
}

func (s *RedisStore) ReserveSlug(ctx context.Context, slug, owner string) (bool, error) {
	ok, err := s.kv.SetStringNX(ctx, slugKey(slug), owner, 0)
	return ok, mapErr("reserve slug", err)
}

func (s *RedisStore) PutSlug(ctx context.Context, slug, owner string) error {
	return mapErr("put slug", s.kv.SetString(ctx, slugKey(slug), owner, 0))
}

func (s *RedisStore) ResolveSlug(ctx context.Context, slug string) (string, error) {
	owner, err := s.kv.GetString(ctx, slugKey(slug))
	if err != nil {
		return "", mapErr("resolve slug", err)
	}
	return owner, nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, ok, err := s.kv.Lock(ctx, key, ttl)
	return token, ok, mapErr("lock", err)
}

func (s *RedisStore) Unlock(ctx context.Context, key, token string) error {
	return mapErr("unlock", s.kv.Unlock(ctx, key, token))
}
