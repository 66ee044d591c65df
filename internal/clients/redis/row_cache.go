package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type RowCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRowCache connects to redis and pings it before returning.
func NewRowCache(log *logger.Logger, opts Options) (*RowCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "assetpm:rows"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRowCache(log, rdb, prefix), nil
}

func newRowCache(log *logger.Logger, rdb *goredis.Client, prefix string) *RowCache {
	return &RowCache{log: log.With("service", "RedisRowCache"), rdb: rdb, prefix: prefix}
}

func (c *RowCache) key(customerID, branch string) string {
	return c.prefix + ":" + strings.TrimSpace(customerID) + ":" + strings.TrimSpace(branch)
}

func (c *RowCache) Get(ctx context.Context, customerID, branch string) ([]maintenance.Row, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("redis row cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.key(customerID, branch)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rows, dropped, err := maintenance.DecodeRows(raw)
	if err != nil {
		c.log.Warn("Discarding unreadable cache entry", "customer_id", customerID, "branch", branch, "error", err)
		return nil, false, nil
	}
	if dropped > 0 {
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *RowCache) Set(ctx context.Context, customerID, branch string, rows []maintenance.Row, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis row cache not initialized")
	}
	if rows == nil {
		rows = []maintenance.Row{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(customerID, branch), raw, ttl).Err()
}

func (c *RowCache) Invalidate(ctx context.Context, customerID, branch string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis row cache not initialized")
	}
	return c.rdb.Del(ctx, c.key(customerID, branch)).Err()
}

func (c *RowCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
