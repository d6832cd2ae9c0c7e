package cache

import (
	"context"
	"log"
	"time"

	"billing-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	CompanySettingsKey = "settings:company"
	idempotencyPrefix  = "idem:"
)

var client *redis.Client

// Init connects to Redis. On failure the client stays nil and every helper
// below becomes a no-op, so the server keeps working without a cache.
func Init(cfg config.RedisConfig) error {
	if !cfg.Enabled {
		return nil
	}
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	log.Printf("[Cache] Connected to Redis at %s", cfg.Addr)
	return nil
}

// Enabled reports whether a Redis connection is live.
func Enabled() bool {
	return client != nil
}

// Ping checks the connection for the health endpoint.
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// GetCached returns cached data if available
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// Responses keeps idempotent request outcomes in Redis. It satisfies
// middleware.ResponseStore.
type Responses struct{}

func (Responses) Get(ctx context.Context, key string) ([]byte, bool) {
	return GetCached(ctx, idempotencyPrefix+key)
}

// Reserve claims a key for an in-flight request. It returns false when the
// key already exists. Without Redis every request is allowed through.
func (Responses) Reserve(ctx context.Context, key string, pending []byte, ttl time.Duration) bool {
	if client == nil {
		return true
	}
	ok, err := client.SetNX(ctx, idempotencyPrefix+key, pending, ttl).Result()
	if err != nil {
		log.Printf("[Cache] Idempotency reserve failed: %v", err)
		return true
	}
	return ok
}

func (Responses) Put(ctx context.Context, key string, data []byte, ttl time.Duration) {
	SetCached(ctx, idempotencyPrefix+key, data, ttl)
}

func (Responses) Release(ctx context.Context, key string) {
	InvalidateKeys(ctx, idempotencyPrefix+key)
}
