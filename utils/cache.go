// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"sajilosewa/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds in-progress booking sessions.
	SessionCacheClient *redis.Client
	// PendingCacheClient holds pending redirect-payment records.
	PendingCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client for booking-session storage.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the booking-session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitPendingCache initializes the Redis client for pending redirect payments.
func InitPendingCache() {
	PendingCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPendingDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := PendingCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Pending Cache): %v", err)
	}
}

// GetPendingCacheClient returns the Redis client for pending redirect payments.
func GetPendingCacheClient() *redis.Client {
	if PendingCacheClient == nil {
		InitPendingCache()
	}
	return PendingCacheClient
}

// InitRedis initializes all Redis clients.
func InitRedis() {
	InitSessionCache()
	InitPendingCache()
}
