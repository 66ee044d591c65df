package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type Repos struct {
	Category  repos.CategoryRepo
	Asset     repos.AssetRepo
	Checklist repos.ChecklistDefinitionRepo
	PMEvent   repos.PMEventRepo
	ExportRun repos.ExportRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Category:  repos.NewCategoryRepo(db, log),
		Asset:     repos.NewAssetRepo(db, log),
		Checklist: repos.NewChecklistDefinitionRepo(db, log),
		PMEvent:   repos.NewPMEventRepo(db, log),
		ExportRun: repos.NewExportRunRepo(db, log),
	}
}
