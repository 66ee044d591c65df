package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/assetpm-backend/internal/clients/redis"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
	"github.com/yungbote/assetpm-backend/internal/services"
)

type Clients struct {
	RowCache services.RowCache

	redisCache *redis.RowCache
}

// wireClients picks the redis row cache when REDIS_ADDR is set and the
// in-process cache otherwise.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; using in-memory row cache")
		return Clients{RowCache: services.NewMemoryRowCache()}, nil
	}
	rc, err := redis.NewRowCache(log, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis row cache: %w", err)
	}
	return Clients{RowCache: rc, redisCache: rc}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redisCache != nil {
		_ = c.redisCache.Close()
	}
}
