package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "stock:"
	genPrefix = "gen:"

	// generationTTL outlives any store read so an in-flight fill still sees
	// the bumped generation.
	generationTTL = time.Hour
)

// StockCache holds best-effort stock hints for the product-stock read path.
// Every error is swallowed and logged: a cache outage only costs a store read.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStockCache(rdb *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

// Key builds the cache key for a lookup. Name keys are case-sensitive because
// product names are matched exactly.
func Key(productID, name, category string) string {
	if productID != "" {
		return keyPrefix + "id:" + productID
	}
	k := keyPrefix + "name:" + strings.TrimSpace(name)
	if category != "" {
		k += ":" + category
	}
	return k
}

// Get returns the cached quantity. On a miss it also returns the key's
// generation, which the caller hands back to Set once it has read the store.
// A generation of -1 means the cache could not be read and Set will not fill.
func (c *StockCache) Get(ctx context.Context, key string) (quantity, gen int64, ok bool) {
	vals, err := c.rdb.MGet(ctx, key, genKey(key)).Result()
	if err != nil {
		slog.WarnContext(ctx, "stock cache get failed", slog.String("key", key), slog.Any("err", err))
		return 0, -1, false
	}
	gen, err = parseCount(vals[1])
	if err != nil {
		return 0, -1, false
	}
	if vals[0] == nil {
		return 0, gen, false
	}
	quantity, err = parseCount(vals[0])
	if err != nil {
		return 0, gen, false
	}
	return quantity, gen, true
}

// fillScript writes the quantity only while the key's generation still
// matches the one observed before the store read.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Set fills key if no Invalidate ran since Get reported gen. A stale fill
// racing an order is dropped instead of outliving the invalidation.
func (c *StockCache) Set(ctx context.Context, key string, gen, quantity int64) {
	if gen < 0 {
		return
	}
	filled, err := fillScript.Run(ctx, c.rdb, []string{key, genKey(key)},
		strconv.FormatInt(gen, 10), strconv.FormatInt(quantity, 10), c.ttl.Milliseconds()).Int()
	if err != nil {
		slog.WarnContext(ctx, "stock cache set failed", slog.String("key", key), slog.Any("err", err))
		return
	}
	if filled == 0 {
		slog.DebugContext(ctx, "stock cache fill skipped, key invalidated meanwhile", slog.String("key", key))
	}
}

// Invalidate drops the given keys and bumps their generations in one
// transaction.
func (c *StockCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, k := range keys {
			pipe.Incr(ctx, genKey(k))
			pipe.Expire(ctx, genKey(k), generationTTL)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "stock cache invalidate failed", slog.Int("keys", len(keys)), slog.Any("err", err))
	}
}

func genKey(key string) string {
	return genPrefix + key
}

func parseCount(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("unexpected cache value %T", v)
}

func (c *StockCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
