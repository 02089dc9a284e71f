package billing

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/pkg/logctx"
)

const cacheKeyPrefix = "payrecon:bill:"

// CachedDirectory caches found bills in redis. Misses and redis failures go
// to the wrapped directory; unknown bills are never cached, since a bill may
// be created after a payment referencing it arrives.
type CachedDirectory struct {
	next   settlement.BillDirectory
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewCachedDirectory(next settlement.BillDirectory, client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *CachedDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(ref uuid.UUID) string { return cacheKeyPrefix + ref.String() }

func (d *CachedDirectory) Lookup(ctx context.Context, ref uuid.UUID) (*settlement.Bill, error) {
	log := logctx.FromCtx(ctx, d.log)

	raw, err := d.client.Get(ctx, cacheKey(ref)).Bytes()
	switch {
	case err == nil:
		var bill settlement.Bill
		if err := json.Unmarshal(raw, &bill); err == nil {
			return &bill, nil
		}
		log.Warnw("bill_cache_decode_failed", "reference", ref, "err", err)
	case !errors.Is(err, redis.Nil):
		log.Warnw("bill_cache_get_failed", "reference", ref, "err", err)
	}

	bill, err := d.next.Lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(bill); err == nil {
		if err := d.client.Set(ctx, cacheKey(ref), b, d.ttl).Err(); err != nil {
			log.Warnw("bill_cache_set_failed", "reference", ref, "err", err)
		}
	}
	return bill, nil
}

// Invalidate drops a cached bill, e.g. after the billing service changed it.
func (d *CachedDirectory) Invalidate(ctx context.Context, ref uuid.UUID) error {
	return d.client.Del(ctx, cacheKey(ref)).Err()
}
