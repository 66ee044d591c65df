package inventory

import (
	"context"
	"testing"

	"github.com/yungbote/assetpm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
)

func TestAssetRepoListByCustomerBranch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAssetRepo(db, testutil.Logger(t))

	printer := testutil.SeedCategory(t, ctx, tx, "Printer")
	laptop := testutil.SeedCategory(t, ctx, tx, "Laptop")

	p2 := testutil.SeedAsset(t, ctx, tx, 1, "North", "PRN-2", printer)
	p1 := testutil.SeedAsset(t, ctx, tx, 1, "North", "PRN-1", printer)
	l1 := testutil.SeedAsset(t, ctx, tx, 1, "North", "LAP-1", laptop)
	loose := testutil.SeedAsset(t, ctx, tx, 1, "North", "ZZZ", nil)
	testutil.SeedAsset(t, ctx, tx, 1, "South", "PRN-9", printer)
	testutil.SeedAsset(t, ctx, tx, 2, "North", "PRN-8", printer)

	got, err := repo.ListByCustomerBranch(dbc, 1, "North")
	if err != nil {
		t.Fatalf("ListByCustomerBranch: %v", err)
	}
	want := []int64{loose.ID, l1.ID, p1.ID, p2.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d assets want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("asset[%d]=%d (%s) want %d", i, got[i].ID, got[i].TagID, id)
		}
	}
	if got[1].CategoryName() != "Laptop" || got[0].CategoryName() != "" {
		t.Fatalf("category not preloaded: %q %q", got[1].CategoryName(), got[0].CategoryName())
	}

	none, err := repo.ListByCustomerBranch(dbc, 1, "  ")
	if err != nil || len(none) != 0 {
		t.Fatalf("blank branch: %v %d", err, len(none))
	}
}

func TestAssetRepoGetByID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAssetRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Asset{{TagID: "T-1", CustomerID: 3, Branch: "B"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil || got.TagID != "T-1" {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	missing, err := repo.GetByID(dbc, created[0].ID+100)
	if err != nil || missing != nil {
		t.Fatalf("missing asset: %+v %v", missing, err)
	}
}

func TestCategoryAndChecklistRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	cats := NewCategoryRepo(db, log)
	defs := NewChecklistDefinitionRepo(db, log)

	created, err := cats.Create(dbc, []*types.Category{{Name: "Printer"}, {Name: "Laptop"}})
	if err != nil {
		t.Fatalf("Create categories: %v", err)
	}
	byName, err := cats.GetByName(dbc, " Printer ")
	if err != nil || byName == nil || byName.ID != created[0].ID {
		t.Fatalf("GetByName: %+v %v", byName, err)
	}
	if none, _ := cats.GetByName(dbc, "Scanner"); none != nil {
		t.Fatalf("unexpected category %+v", none)
	}

	if _, err := defs.Create(dbc, []*types.ChecklistDefinition{
		{CategoryID: created[0].ID, CheckItem: "Toner"},
		{CategoryID: created[0].ID, CheckItem: "Rollers"},
		{CategoryID: created[1].ID, CheckItem: "Battery"},
	}); err != nil {
		t.Fatalf("Create definitions: %v", err)
	}
	printerDefs, err := defs.ListByCategory(dbc, created[0].ID)
	if err != nil || len(printerDefs) != 2 || printerDefs[0].CheckItem != "Toner" {
		t.Fatalf("ListByCategory: %+v %v", printerDefs, err)
	}
	all, err := defs.ListByCategories(dbc, []int64{created[0].ID, created[1].ID})
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByCategories: %d %v", len(all), err)
	}
}
