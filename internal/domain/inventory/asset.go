package inventory

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"Category_ID"`
	Name string `gorm:"column:name;not null;uniqueIndex" json:"Category"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

// Asset is owned by the asset registry; this service only reads it.
type Asset struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"Asset_ID"`
	TagID         string    `gorm:"column:tag_id;not null;index" json:"Asset_Tag_ID"`
	ItemName      string    `gorm:"column:item_name" json:"Item_Name"`
	SerialNumber  string    `gorm:"column:serial_number" json:"Asset_Serial_Number"`
	CategoryID    *int64    `gorm:"column:category_id;index" json:"Category_ID"`
	Category      *Category `gorm:"foreignKey:CategoryID;references:ID" json:"-"`
	RecipientName string    `gorm:"column:recipient_name" json:"Recipient_Name"`
	Department    string    `gorm:"column:department" json:"Department"`
	CustomerID    int64     `gorm:"column:customer_id;not null;index:idx_asset_customer_branch" json:"customer_id"`
	Branch        string    `gorm:"column:branch;index:idx_asset_customer_branch" json:"branch"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Asset) TableName() string { return "asset" }

func (a *Asset) CategoryName() string {
	if a == nil || a.Category == nil {
		return ""
	}
	return a.Category.Name
}

type ChecklistDefinition struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"Checklist_ID"`
	CategoryID    int64  `gorm:"column:category_id;not null;index" json:"Category_ID"`
	CheckItem     string `gorm:"column:check_item;not null" json:"Check_Item"`
	CheckItemLong string `gorm:"column:check_item_long" json:"Check_item_Long"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ChecklistDefinition) TableName() string { return "checklist_definition" }
