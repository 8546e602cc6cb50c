// Package redis builds the shared Redis client.
package redis

import (
	"context"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"
)

// Config holds the connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
}

// NewRedisClient connects and pings the server once so misconfiguration fails at startup.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("redis connection successful", "address", addr)
	return rdb, nil
}
