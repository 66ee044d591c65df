package inventory

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Asset, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Asset, error)
	ListByCustomerBranch(dbc dbctx.Context, customerID int64, branch string) ([]*types.Asset, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	if len(rows) == 0 {
		return []*types.Asset{}, nil
	}
	if err := dbc.Conn(r.db).Omit("Category").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Asset, error) {
	var out []*types.Asset
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Preload("Category").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id int64) (*types.Asset, error) {
	if id <= 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByCustomerBranch returns the branch's assets grouped by category name,
// then by tag id. Uncategorized assets sort first.
func (r *assetRepo) ListByCustomerBranch(dbc dbctx.Context, customerID int64, branch string) ([]*types.Asset, error) {
	var out []*types.Asset
	branch = strings.TrimSpace(branch)
	if customerID <= 0 || branch == "" {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Preload("Category").
		Joins("LEFT JOIN category ON category.id = asset.category_id").
		Where("asset.customer_id = ? AND asset.branch = ?", customerID, branch).
		Order("COALESCE(category.name, '') ASC, asset.tag_id ASC, asset.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
