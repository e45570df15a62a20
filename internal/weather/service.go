package weather

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda un unico reporte de clima con TTL fijo.
type Cache interface {
	Get(ctx context.Context) (Report, bool, error)
	Set(ctx context.Context, report Report, ttl time.Duration) error
}

// Service responde con el reporte cacheado y consulta el upstream solo
// en miss. Un miss concurrente puede disparar mas de una llamada; para
// este lookup de bajo trafico es aceptable.
type Service struct {
	client Client
	cache  Cache
	ttl    time.Duration
}

func NewService(client Client, cache Cache, ttl time.Duration) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &Service{client: client, cache: cache, ttl: ttl}
}

func (s *Service) Current(ctx context.Context) (Report, error) {
	report, ok, err := s.cache.Get(ctx)
	if err == nil && ok {
		return report, nil
	}

	report, err = s.client.Current(ctx)
	if err != nil {
		return Report{}, err
	}
	_ = s.cache.Set(ctx, report, s.ttl)
	return report, nil
}

type memoryCache struct {
	mu        sync.Mutex
	report    Report
	expiresAt time.Time
	now       func() time.Time
}

func NewMemoryCache() Cache {
	return &memoryCache{now: func() time.Time { return time.Now().UTC() }}
}

func (c *memoryCache) Get(_ context.Context) (Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expiresAt.IsZero() || c.now().After(c.expiresAt) {
		return Report{}, false, nil
	}
	return c.report, true, nil
}

func (c *memoryCache) Set(_ context.Context, report Report, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	c.expiresAt = c.now().Add(ttl)
	return nil
}

const redisCacheKey = "weather:current"

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	if client == nil {
		return nil
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context) (Report, bool, error) {
	raw, err := c.client.Get(ctx, redisCacheKey).Result()
	if err == redis.Nil {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, err
	}
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return Report{}, false, err
	}
	return report, true, nil
}

func (c *redisCache) Set(ctx context.Context, report Report, ttl time.Duration) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisCacheKey, raw, ttl).Err()
}
