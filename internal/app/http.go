package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/assetpm-backend/internal/http"
	httpH "github.com/yungbote/assetpm-backend/internal/http/handlers"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

const serviceName = "assetpm-api"

type Handlers struct {
	Health      *httpH.HealthHandler
	Maintenance *httpH.MaintenanceHandler
	Export      *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, ping httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(cfg.Version, ping),
		Maintenance: httpH.NewMaintenanceHandler(log, services.Rows, services.Events),
		Export:      httpH.NewExportHandler(log, services.Exports),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics, tracing bool) *gin.Engine {
	rc := http.RouterConfig{
		Log:                log,
		CORSOrigins:        cfg.CORSOrigins,
		Metrics:            metrics,
		HealthHandler:      handlers.Health,
		MaintenanceHandler: handlers.Maintenance,
		ExportHandler:      handlers.Export,
	}
	if tracing {
		rc.ServiceName = serviceName
	}
	return http.NewRouter(rc)
}
