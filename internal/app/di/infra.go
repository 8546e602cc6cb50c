package di

import (
	"context"
	"fmt"
	"log/slog"

	"myblog/internal/config"
	authadapters "myblog/internal/feature/auth/adapters"
	authentity "myblog/internal/feature/auth/domain/entity"
	postentity "myblog/internal/feature/posts/domain/entity"
	"myblog/internal/platform/db"
	platformredis "myblog/internal/platform/redis"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Models lists every table the application owns, in dependency order.
func Models() []any {
	return []any{
		&authentity.User{},
		&postentity.Post{},
		&authadapters.SessionModel{},
	}
}

// NewDatabase opens the configured database and, unless disabled, migrates the schema.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.OpenDB(db.Config{
		Driver:     cfg.Database.Driver,
		SQLitePath: cfg.Database.SQLitePath,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SSLMode:    cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.RunMigrations {
		if err := db.Migrate(gdb, Models()...); err != nil {
			return nil, err
		}
		slog.Info("database migrated", "driver", cfg.Database.Driver)
	}
	return gdb, nil
}

// NewRedis connects to Redis when a host is configured. It returns nil, nil otherwise.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rdb, nil
}
