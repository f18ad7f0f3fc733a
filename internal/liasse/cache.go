package liasse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
)

const (
	cacheVersionKey = "liasse:version"
	cacheKeyPrefix  = "liasse:mappings"
)

// Cache memoises liasse builds in Redis under versioned keys. A nil Cache or a
// Cache without client always calls the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key derives the memo key of a build from the SHA-256 of its inputs.
func (c *Cache) Key(ctx context.Context, dctx declarations.Context, overrides Overrides) (string, error) {
	raw, err := json.Marshal(struct {
		Context   declarations.Context `json:"context"`
		Overrides map[string]float64   `json:"overrides"`
	}{dctx, overrides.Effective()})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{cacheKeyPrefix, hex.EncodeToString(sum[:]), fmt.Sprint(ver)}, ":"), nil
}

// FetchJSON loads a cached value or populates it using the loader. Concurrent
// callers sharing a key wait for a single load.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("liasse: cache loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	res := c.group.DoChan(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out := <-res:
		if out.Err != nil {
			return out.Err
		}
		return json.Unmarshal(out.Val.([]byte), dest)
	}
}

// Bump invalidates every memoised build by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func roundTrip(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
