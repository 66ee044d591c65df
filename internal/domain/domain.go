package domain

import (
	"github.com/yungbote/assetpm-backend/internal/domain/inventory"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
)

type Category = inventory.Category
type Asset = inventory.Asset
type ChecklistDefinition = inventory.ChecklistDefinition

type PMEvent = maintenance.PMEvent
type ExportRun = maintenance.ExportRun

// Models lists every persisted model, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Category{},
		&Asset{},
		&ChecklistDefinition{},
		&PMEvent{},
		&ExportRun{},
	}
}
