package cache

import (
	"context"
	"fmt"
	"time"

	"wallet/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis connects and pings once so a bad address fails at startup.
func InitRedis(cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", client.Options().Addr, err)
	}

	log.Info("redis connected", zap.String("addr", client.Options().Addr))
	return client, nil
}
