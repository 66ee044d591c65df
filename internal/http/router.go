package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/assetpm-backend/internal/http/handlers"
	httpMW "github.com/yungbote/assetpm-backend/internal/http/middleware"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	MaintenanceHandler *httpH.MaintenanceHandler
	ExportHandler      *httpH.ExportHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Rows, checklist definitions, submissions
		if cfg.MaintenanceHandler != nil {
			api.GET("/maintenance/rows", cfg.MaintenanceHandler.ListRows)
			api.GET("/categories/:id/checklist", cfg.MaintenanceHandler.ListChecklist)
			api.POST("/maintenance/events", cfg.MaintenanceHandler.SubmitEvent)
		}

		// Export
		if cfg.ExportHandler != nil {
			api.POST("/maintenance/export", cfg.ExportHandler.Export)
			api.GET("/maintenance/exports", cfg.ExportHandler.ListRuns)
		}
	}

	return r
}
