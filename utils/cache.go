// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"servihub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds booking snapshots for the payment watcher diff.
	CacheClient *redis.Client
	// PrefsClient is the dedicated client for dashboard preference storage.
	PrefsClient *redis.Client
)

// InitRedis initializes both Redis clients and verifies connectivity.
func InitRedis() {
	InitCache()
	InitPrefs()
}

// InitCache initializes the snapshot cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the snapshot cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitPrefs initializes the Redis client for preference storage.
func InitPrefs() {
	PrefsClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPrefsDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := PrefsClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Prefs): %v", err)
	}
}

// GetPrefsClient returns the Redis client for preference storage.
func GetPrefsClient() *redis.Client {
	if PrefsClient == nil {
		InitPrefs()
	}
	return PrefsClient
}
