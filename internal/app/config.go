package app

import (
	"strings"
	"time"

	"github.com/yungbote/assetpm-backend/internal/data/db"
	"github.com/yungbote/assetpm-backend/internal/platform/envutil"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string
	CORSOrigins []string

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RowCacheTTL   time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	var origins []string
	for _, o := range strings.Split(envutil.String("CORS_ORIGINS", "", log), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Port:          envutil.String("PORT", "8080", log),
		Environment:   envutil.String("APP_ENV", "development", log),
		Version:       envutil.String("APP_VERSION", "dev", log),
		CORSOrigins:   origins,
		DB:            db.ConfigFromEnv(log),
		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),
		RowCacheTTL:   envutil.Seconds("ROW_CACHE_TTL_SECONDS", 60*time.Second, log),
	}
}
