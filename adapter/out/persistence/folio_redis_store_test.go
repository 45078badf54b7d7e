package persistence

import (
	"context"
	"sort"
	"testing"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, time.Second), mr
}

func TestRedisStore_KeyLayout(t *testing.T) {
	kv, mr := newTestKV(t)
	store := NewRedisStore(kv)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	user := domain.NewUser(domain.Identity{Subject: "g-1", Email: "a@x.com", Name: "Ann"}, now)
	created, err := store.CreateUserIfAbsent(ctx, user)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateUserIfAbsent(ctx, &domain.User{Email: "a@x.com", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.GetUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	p := domain.NewPortfolio(user, now)
	created, err = store.CreatePortfolioIfAbsent(ctx, "a@x.com", p)
	require.NoError(t, err)
	assert.True(t, created)

	ok, err := store.ReserveSlug(ctx, "abcdefgh1234", "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("user:a@x.com"))
	assert.True(t, mr.Exists("portfolio:a@x.com"))
	v, err := mr.Get("slug:abcdefgh1234")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v, "slug values are plain owner strings")

	raw, _ := mr.Get("portfolio:a@x.com")
	assert.Contains(t, raw, `"userId":"g-1"`)
	assert.Contains(t, raw, `"template":"minimal"`)
	assert.Contains(t, raw, `"published":false`)
	assert.NotContains(t, raw, `"slug"`)
}

func TestRedisStore_NotFound(t *testing.T) {
	kv, _ := newTestKV(t)
	store := NewRedisStore(kv)
	ctx := context.Background()

	_, err := store.GetPortfolio(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, out.ErrNotFound)

	_, err = store.GetUser(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, out.ErrNotFound)

	_, err = store.ResolveSlug(ctx, "missing")
	assert.ErrorIs(t, err, out.ErrNotFound)
}

func TestRedisStore_ReadsLegacyDocument(t *testing.T) {
	kv, mr := newTestKV(t)
	store := NewRedisStore(kv)

	legacy := `{"userId":"g-1","template":"creative","published":true,"slug":"old","data":{"name":"Ann","title":"","bio":"","skills":["Go"],"projects":[{"id":"p1","title":"T","description":"","imageUrl":"https://img/1.png"}],"social":{}},"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	require.NoError(t, mr.Set("portfolio:a@x.com", legacy))

	p, err := store.GetPortfolio(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.png", p.Data.Projects[0].ImageURL)
	assert.Nil(t, p.Data.Projects[0].Assets)
	assert.True(t, domain.NeedsAssetMigration(p))
}

func TestRedisStore_PutSlugOverwrites(t *testing.T) {
	kv, mr := newTestKV(t)
	store := NewRedisStore(kv)
	ctx := context.Background()

	require.NoError(t, mr.Set("slug:s", "stale@x.com"))
	require.NoError(t, store.PutSlug(ctx, "s", "a@x.com"))

	owner, err := store.ResolveSlug(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", owner)
}

func TestRedisStore_ScanOwners(t *testing.T) {
	kv, mr := newTestKV(t)
	store := NewRedisStore(kv)

	for _, k := range []string{"portfolio:a@x.com", "portfolio:b@x.com", "user:a@x.com", "slug:zz"} {
		require.NoError(t, mr.Set(k, "{}"))
	}

	var owners []string
	err := store.ScanOwners(context.Background(), 1, func(batch []string) error {
		owners = append(owners, batch...)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(owners)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, owners)
}

func TestRedisStore_Lock(t *testing.T) {
	kv, _ := newTestKV(t)
	store := NewRedisStore(kv)
	ctx := context.Background()

	token, ok, err := store.Lock(ctx, "lock:publish:a@x.com", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Lock(ctx, "lock:publish:a@x.com", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Unlock(ctx, "lock:publish:a@x.com", token))
	_, ok, err = store.Lock(ctx, "lock:publish:a@x.com", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_Unreachable(t *testing.T) {
	kv, mr := newTestKV(t)
	store := NewRedisStore(kv)
	mr.Close()

	_, err := store.GetPortfolio(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, out.ErrNotFound)
}

func TestOAuthStateStore_SingleUse(t *testing.T) {
	kv, mr := newTestKV(t)
	states := NewRedisOAuthStateStore(kv)
	ctx := context.Background()

	require.NoError(t, states.StoreState(ctx, "st", "/dashboard", time.Minute))
	assert.True(t, mr.Exists("oauth:state:st"))

	cb, err := states.ConsumeState(ctx, "st")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", cb)

	_, err = states.ConsumeState(ctx, "st")
	assert.ErrorIs(t, err, out.ErrNotFound)

	require.NoError(t, states.StoreState(ctx, "exp", "/", time.Second))
	mr.FastForward(2 * time.Second)
	_, err = states.ConsumeState(ctx, "exp")
	assert.ErrorIs(t, err, out.ErrNotFound)
}

func TestTokenRevoker(t *testing.T) {
	kv, mr := newTestKV(t)
	revoker := NewRedisTokenRevoker(kv)
	ctx := context.Background()

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
