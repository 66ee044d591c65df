package maintenance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PMEvent is a stored maintenance inspection. ChecklistResults holds the
// event's checklist snapshot as a JSON array of StoredCheck.
type PMEvent struct {
	ID               int64          `gorm:"primaryKey;autoIncrement" json:"PM_ID"`
	AssetID          int64          `gorm:"column:asset_id;not null;index" json:"Asset_ID"`
	PMDate           time.Time      `gorm:"column:pm_date;not null;index" json:"PM_Date"`
	Remarks          string         `gorm:"column:remarks" json:"Remarks"`
	ChecklistResults datatypes.JSON `gorm:"column:checklist_results;type:jsonb" json:"checklist_results"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PMEvent) TableName() string { return "pm_event" }

type StoredCheck struct {
	ChecklistID int64  `json:"Checklist_ID"`
	IsOK        bool   `json:"Is_OK_bool"`
	Remarks     string `json:"Remarks"`
}

// Checks decodes the stored snapshot. A malformed column yields no checks.
func (e *PMEvent) Checks() []StoredCheck {
	if e == nil || len(e.ChecklistResults) == 0 {
		return nil
	}
	var out []StoredCheck
	if err := json.Unmarshal(e.ChecklistResults, &out); err != nil {
		return nil
	}
	return out
}

func EncodeChecks(checks []StoredCheck) (datatypes.JSON, error) {
	if checks == nil {
		checks = []StoredCheck{}
	}
	raw, err := json.Marshal(checks)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ExportRun records one rendered export document.
type ExportRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PMIDs      datatypes.JSON `gorm:"column:pm_ids;type:jsonb" json:"pm_ids"`
	EventCount int            `gorm:"column:event_count;not null;default:0" json:"event_count"`
	Filename   string         `gorm:"column:filename;not null" json:"filename"`
	CustomerID int64          `gorm:"column:customer_id;index" json:"customer_id"`
	Branch     string         `gorm:"column:branch" json:"branch"`
	CreatedAt  time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (ExportRun) TableName() string { return "export_run" }
