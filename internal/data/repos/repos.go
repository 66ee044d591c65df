package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos/inventory"
	"github.com/yungbote/assetpm-backend/internal/data/repos/maintenance"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type CategoryRepo = inventory.CategoryRepo
type AssetRepo = inventory.AssetRepo
type ChecklistDefinitionRepo = inventory.ChecklistDefinitionRepo

type PMEventRepo = maintenance.PMEventRepo
type ExportRunRepo = maintenance.ExportRunRepo

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return inventory.NewCategoryRepo(db, baseLog)
}
func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return inventory.NewAssetRepo(db, baseLog)
}
func NewChecklistDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistDefinitionRepo {
	return inventory.NewChecklistDefinitionRepo(db, baseLog)
}

func NewPMEventRepo(db *gorm.DB, baseLog *logger.Logger) PMEventRepo {
	return maintenance.NewPMEventRepo(db, baseLog)
}
func NewExportRunRepo(db *gorm.DB, baseLog *logger.Logger) ExportRunRepo {
	return maintenance.NewExportRunRepo(db, baseLog)
}
