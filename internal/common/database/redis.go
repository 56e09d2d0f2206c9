// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"lex-build-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client used for repair transcripts.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// TranscriptTTL converts the configured TTL (milliseconds) to a duration.
func TranscriptTTL(cfg config.RedisConfig) time.Duration {
	return time.Duration(cfg.TranscriptTTL) * time.Millisecond
}
