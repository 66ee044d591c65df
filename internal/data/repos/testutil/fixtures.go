package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{Name: name}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedChecklist(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID int64, item string) *types.ChecklistDefinition {
	tb.Helper()
	d := &types.ChecklistDefinition{CategoryID: categoryID, CheckItem: item, CheckItemLong: item + " (long)"}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed checklist definition: %v", err)
	}
	return d
}

func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, customerID int64, branch, tag string, category *types.Category) *types.Asset {
	tb.Helper()
	a := &types.Asset{
		TagID:         tag,
		ItemName:      "item " + tag,
		SerialNumber:  "SN-" + tag,
		RecipientName: "recipient",
		Department:    "IT",
		CustomerID:    customerID,
		Branch:        branch,
	}
	if category != nil {
		id := category.ID
		a.CategoryID = &id
	}
	if err := tx.WithContext(ctx).Omit("Category").Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	a.Category = category
	return a
}

func SeedPMEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, assetID int64, date time.Time, checks ...maintenance.StoredCheck) *types.PMEvent {
	tb.Helper()
	raw, err := maintenance.EncodeChecks(checks)
	if err != nil {
		tb.Fatalf("encode checks: %v", err)
	}
	e := &types.PMEvent{AssetID: assetID, PMDate: date, ChecklistResults: raw}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed pm event: %v", err)
	}
	return e
}
