package inventory

import (
	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type ChecklistDefinitionRepo interface {
	Create(dbc dbctx.Context, rows []*types.ChecklistDefinition) ([]*types.ChecklistDefinition, error)
	ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.ChecklistDefinition, error)
	ListByCategories(dbc dbctx.Context, categoryIDs []int64) ([]*types.ChecklistDefinition, error)
}

type checklistDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChecklistDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistDefinitionRepo {
	return &checklistDefinitionRepo{db: db, log: baseLog.With("repo", "ChecklistDefinitionRepo")}
}

func (r *checklistDefinitionRepo) Create(dbc dbctx.Context, rows []*types.ChecklistDefinition) ([]*types.ChecklistDefinition, error) {
	if len(rows) == 0 {
		return []*types.ChecklistDefinition{}, nil
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *checklistDefinitionRepo) ListByCategory(dbc dbctx.Context, categoryID int64) ([]*types.ChecklistDefinition, error) {
	return r.ListByCategories(dbc, []int64{categoryID})
}

func (r *checklistDefinitionRepo) ListByCategories(dbc dbctx.Context, categoryIDs []int64) ([]*types.ChecklistDefinition, error) {
	var out []*types.ChecklistDefinition
	if len(categoryIDs) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("category_id IN ?", categoryIDs).
		Order("category_id ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
