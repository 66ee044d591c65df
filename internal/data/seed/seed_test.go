package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/assetpm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/assetpm-backend/internal/domain"
)

func loadFixture(t *testing.T) *Fixture {
	t.Helper()
	fh, err := os.Open("testdata/fixture.yaml")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fh.Close()
	f, err := Decode(fh)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return f
}

func TestLoadFixture(t *testing.T) {
	db := testutil.DB(t)
	l := NewLoader(db, testutil.Logger(t))
	ctx := context.Background()

	sum, err := l.Load(ctx, loadFixture(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Summary{Categories: 2, Checklist: 3, Assets: 2, Events: 2}
	if sum != want {
		t.Fatalf("summary=%+v want %+v", sum, want)
	}

	var events []*types.PMEvent
	if err := db.Order("pm_date").Find(&events).Error; err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events=%d", len(events))
	}
	checks := events[1].Checks()
	if len(checks) != 1 || checks[0].IsOK || checks[0].Remarks != "replace cartridge" {
		t.Fatalf("latest checks=%+v", checks)
	}

	// categories and checklist items are reused on a second run
	sum, err = l.Load(ctx, &Fixture{Categories: []CategoryFixture{{Name: "Printer", Checklist: []ChecklistFixture{{Item: "Toner"}, {Item: "Fuser"}}}}})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sum.Categories != 0 || sum.Checklist != 1 {
		t.Fatalf("reload summary=%+v", sum)
	}
}

func TestLoadRollsBackOnError(t *testing.T) {
	db := testutil.DB(t)
	l := NewLoader(db, testutil.Logger(t))

	f := &Fixture{
		Categories: []CategoryFixture{{Name: "Printer", Checklist: []ChecklistFixture{{Item: "Toner"}}}},
		Assets: []AssetFixture{{
			Tag: "PRN-1", Category: "Printer", CustomerID: 7, Branch: "North",
			Events: []EventFixture{{Date: "2024-01-01", Checks: []CheckFixture{{Item: "Drum", OK: true}}}},
		}},
	}
	_, err := l.Load(context.Background(), f)
	if err == nil || !strings.Contains(err.Error(), `unknown checklist item "Drum"`) {
		t.Fatalf("err=%v", err)
	}
	var n int64
	if err := db.Model(&types.Category{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("categories after rollback=%d err=%v", n, err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("assets:\n  - tag: X\n    colour: red\n"))
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
