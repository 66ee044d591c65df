package maintenance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type ExportRunRepo interface {
	Create(dbc dbctx.Context, row *types.ExportRun) (*types.ExportRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.ExportRun, error)
}

type exportRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExportRunRepo(db *gorm.DB, baseLog *logger.Logger) ExportRunRepo {
	return &exportRunRepo{db: db, log: baseLog.With("repo", "ExportRunRepo")}
}

func (r *exportRunRepo) Create(dbc dbctx.Context, row *types.ExportRun) (*types.ExportRun, error) {
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *exportRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.ExportRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.ExportRun
	if err := dbc.Conn(r.db).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
