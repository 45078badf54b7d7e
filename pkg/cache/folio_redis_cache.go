package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"folio_server/pkg/metrics"
	"folio_server/pkg/resilience"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key does not exist.
var ErrMiss = errors.New("cache: key not found")

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisCache is the key-value client used by the stores. Every call goes through a breaker.
type RedisCache struct {
	client  *redis.Client
	breaker *resilience.Breaker
}

// NewRedisCache wraps client with a breaker named "redis".
func NewRedisCache(client *redis.Client, breakerTimeout time.Duration) *RedisCache {
	cfg := resilience.DefaultBreakerConfig("redis")
	if breakerTimeout > 0 {
		cfg.Timeout = breakerTimeout
	}
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}
	return &RedisCache{
		client:  client,
		breaker: resilience.NewBreaker(cfg),
	}
}

func (c *RedisCache) do(op string, fn func() error) error {
	start := time.Now()
	err := c.breaker.Execute(fn)
	metrics.ObserveStore(op, time.Since(start))
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	return err
}

// GetString reads a plain string value.
func (c *RedisCache) GetString(ctx context.Context, key string) (string, error) {
	var val string
	err := c.do("get", func() error {
		var err error
		val, err = c.client.Get(ctx, key).Result()
		return err
	})
	return val, err
}

// SetString writes a plain string value. ttl 0 means no expiry.
func (c *RedisCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.do("set", func() error {
		return c.client.Set(ctx, key, value, ttl).Err()
	})
}

// SetStringNX writes value only if key is absent and reports whether it did.
func (c *RedisCache) SetStringNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	var ok bool
	err := c.do("setnx", func() error {
		var err error
		ok, err = c.client.SetNX(ctx, key, value, ttl).Result()
		return err
	})
	return ok, err
}

// GetDel atomically reads and removes a string value.
func (c *RedisCache) GetDel(ctx context.Context, key string) (string, error) {
	var val string
	err := c.do("getdel", func() error {
		var err error
		val, err = c.client.GetDel(ctx, key).Result()
		return err
	})
	return val, err
}

// GetJSON decodes the JSON value stored at key into dest.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := c.do("get", func() error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return err
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON stores value as JSON
func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.do("set", func() error {
		return c.client.Set(ctx, key, data, ttl).Err()
	})
}

// SetJSONNX stores value as JSON only if key is absent.
func (c *RedisCache) SetJSONNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	var ok bool
	err = c.do("setnx", func() error {
		var err error
		ok, err = c.client.SetNX(ctx, key, data, ttl).Result()
		return err
	})
	return ok, err
}

// Exists reports whether key is present
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := c.do("exists", func() error {
		var err error
		n, err = c.client.Exists(ctx, key).Result()
		return err
	})
	return n > 0, err
}

// Lock takes key for ttl if it is free. The returned token identifies
// this holder and must be passed back to Unlock.
func (c *RedisCache) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := newToken()
	if err != nil {
		return "", false, err
	}
	ok, err := c.SetStringNX(ctx, key, token, ttl)
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Unlock releases key only while it still holds token.
func (c *RedisCache) Unlock(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	return c.do("unlock", func() error {
		return unlockScript.Run(ctx, c.client, []string{key}, token).Err()
	})
}

// Scan walks keys matching pattern, handing each SCAN page to fn.
func (c *RedisCache) Scan(ctx context.Context, pattern string, count int64, fn func(keys []string) error) error {
	var cursor uint64
	for {
		var keys []string
		err := c.do("scan", func() error {
			var err error
			keys, cursor, err = c.client.Scan(ctx, cursor, pattern, count).Result()
			return err
		})
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks connectivity without going through the breaker.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
