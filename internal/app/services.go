package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
	"github.com/yungbote/assetpm-backend/internal/services"
)

type Services struct {
	Rows    services.RowService
	Events  services.EventService
	Exports services.ExportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	rows := services.NewRowService(db, log, repos.Asset, repos.PMEvent, repos.Checklist, clients.RowCache, cfg.RowCacheTTL, metrics)
	events := services.NewEventService(db, log, repos.Asset, repos.PMEvent, repos.Checklist, rows, metrics)
	exports := services.NewExportService(db, log, repos.Asset, repos.PMEvent, repos.Checklist, repos.ExportRun, metrics)

	return Services{
		Rows:    rows,
		Events:  events,
		Exports: exports,
	}
}
