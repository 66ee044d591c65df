package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureMaintenanceIndexes adds the composite indexes the row listing relies
// on. Both drivers accept the statements.
func EnsureMaintenanceIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_pm_event_asset_date ON pm_event(asset_id, pm_date);`).Error; err != nil {
		return fmt.Errorf("create idx_pm_event_asset_date: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_checklist_definition_category_item
		ON checklist_definition(category_id, check_item);
	`).Error; err != nil {
		return fmt.Errorf("create idx_checklist_definition_category_item: %w", err)
	}
	return nil
}
