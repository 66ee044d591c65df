package maintenance

import (
	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type PMEventRepo interface {
	Create(dbc dbctx.Context, rows []*types.PMEvent) ([]*types.PMEvent, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.PMEvent, error)
	ListByAssetIDs(dbc dbctx.Context, assetIDs []int64) ([]*types.PMEvent, error)
}

type pmEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPMEventRepo(db *gorm.DB, baseLog *logger.Logger) PMEventRepo {
	return &pmEventRepo{db: db, log: baseLog.With("repo", "PMEventRepo")}
}

func (r *pmEventRepo) Create(dbc dbctx.Context, rows []*types.PMEvent) ([]*types.PMEvent, error) {
	if len(rows) == 0 {
		return []*types.PMEvent{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByIDs returns the events in id order. Missing ids are simply absent.
func (r *pmEventRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.PMEvent, error) {
	var out []*types.PMEvent
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pmEventRepo) ListByAssetIDs(dbc dbctx.Context, assetIDs []int64) ([]*types.PMEvent, error) {
	var out []*types.PMEvent
	if len(assetIDs) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("asset_id IN ?", assetIDs).
		Order("asset_id ASC, pm_date ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
