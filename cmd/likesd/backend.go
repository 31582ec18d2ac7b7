package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ryhazerus/likes/cache"
	"github.com/ryhazerus/likes/internal/config"
	"github.com/ryhazerus/likes/store"
)

// openStore opens the configured store. SQL stores are migrated on open.
func openStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreSQLite:
		return store.NewSQLiteStore(c.DSN)
	case config.StorePostgres:
		return store.NewPostgresStore(ctx, c.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// openCache builds the configured cache. For the redis and tiered drivers
// the server is pinged first so a bad address fails at startup.
func openCache(ctx context.Context, c config.CacheConfig, r config.RedisConfig) (cache.Cache, error) {
	if c.Driver == config.CacheMemory {
		return cache.NewMemoryCache(c.Size)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", r.Addr, err)
	}
	shared := cache.NewRedisCache(client, r.Prefix)

	switch c.Driver {
	case config.CacheRedis:
		return shared, nil
	case config.CacheTiered:
		tiered, err := cache.NewTieredCache(shared, c.Size, c.LocalTTL)
		if err != nil {
			shared.Close()
			return nil, err
		}
		return tiered, nil
	default:
		shared.Close()
		return nil, fmt.Errorf("unknown cache driver %q", c.Driver)
	}
}
