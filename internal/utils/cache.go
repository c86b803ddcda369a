package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Building user-scoped keys
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// CreditsKey is the cache key for a user's karma balance
func CreditsKey(userID uint) string {
	return "credits:user:" + strconv.Itoa(int(userID))
}

// HistoryKey is the cache key for one page of a user's credit history
func HistoryKey(userID uint, page, pageSize int) string {
	return "credithistory:user:" + strconv.Itoa(int(userID)) +
		":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// InvalidateUserCache drops the balance key and the first few history pages
// for a user after a credit is applied (simple version: delete first 5 pages)
func InvalidateUserCache(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = DeleteCache(ctx, rdb, CreditsKey(userID)) // Invalidate balance cache
	for i := 1; i <= 5; i++ {
		// Delete cache entries for the default page size
		_ = DeleteCache(ctx, rdb, HistoryKey(userID, i, 20))
	}
}
