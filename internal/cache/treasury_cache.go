// Package cache provides the Treasury-yield cache: a 24h TTL per maturity,
// backed by Redis, with a single-flight guard so a cache-expiry moment
// doesn't trigger a thundering herd of probes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"valuationengine/internal/logging"
)

var log = logging.Tag("TREASURY_CACHE")

const defaultTTL = 24 * time.Hour

// RateFetcher is whatever knows how to reach the Treasury-yield probe on a
// cache miss. pkg/providers.Treasury implements this.
type RateFetcher func(ctx context.Context, maturityYears int) (rate float64, source string, err error)

// cachedRate is the JSON envelope stored in Redis.
type cachedRate struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// TreasuryCache fronts a RateFetcher with a shared, TTL'd cache.
type TreasuryCache struct {
	client *redis.Client
	group  singleflight.Group
	ttl    time.Duration
	fetch  RateFetcher

	// memFallback is the in-process cache used when no Redis address is
	// configured. When Redis is configured but unreachable, every call
	// probes upstream.
	memFallback map[string]cachedRate
}

// New builds a TreasuryCache. addr == "" runs in-memory only (useful for
// tests and for environments without Redis). The 24h TTL applies to Redis
// entries only; in-memory entries do not expire for the life of the process.
func New(addr string, fetch RateFetcher) *TreasuryCache {
	tc := &TreasuryCache{
		ttl:         defaultTTL,
		fetch:       fetch,
		memFallback: make(map[string]cachedRate),
	}
	if addr != "" {
		tc.client = redis.NewClient(&redis.Options{Addr: addr})
	}
	return tc
}

func key(maturityYears int) string {
	return fmt.Sprintf("treasury:yield:%dy", maturityYears)
}

// Rate returns the cached rate for a maturity, probing on a miss. Concurrent
// callers racing the same miss collapse into a single underlying fetch.
func (c *TreasuryCache) Rate(ctx context.Context, maturityYears int) (float64, string, error) {
	k := key(maturityYears)

	if c.client != nil {
		if raw, err := c.client.Get(ctx, k).Result(); err == nil {
			var cr cachedRate
			if jsonErr := json.Unmarshal([]byte(raw), &cr); jsonErr == nil {
				return cr.Rate, cr.Source, nil
			}
		}
	} else if cr, ok := c.memFallback[k]; ok {
		return cr.Rate, cr.Source, nil
	}

	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		rate, source, fetchErr := c.fetch(ctx, maturityYears)
		if fetchErr != nil {
			return nil, fetchErr
		}
		cr := cachedRate{Rate: rate, Source: source}
		c.store(ctx, k, cr)
		return cr, nil
	})
	if err != nil {
		log.Warnf("treasury probe failed for %dy: %v", maturityYears, err)
		return 0, "", err
	}
	cr := v.(cachedRate)
	return cr.Rate, cr.Source, nil
}

func (c *TreasuryCache) store(ctx context.Context, k string, cr cachedRate) {
	if c.client != nil {
		if raw, err := json.Marshal(cr); err == nil {
			if err := c.client.Set(ctx, k, raw, c.ttl).Err(); err != nil {
				log.Warnf("failed to write-through redis cache for %s: %v", k, err)
			}
		}
		return
	}
	c.memFallback[k] = cr
}
