package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
)

type call struct {
	started chan struct{}
	release chan struct{}
	rows    []maintenance.Row
	err     error
}

// gatedSource answers each branch only once the test releases it.
type gatedSource struct {
	calls map[string]*call
}

func (g *gatedSource) ListRows(ctx context.Context, _ string, branch string) ([]maintenance.Row, error) {
	c := g.calls[branch]
	if c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		<-c.release
	}
	return c.rows, c.err
}

func row(id int64, category, tag string) maintenance.Row {
	return maintenance.Row{Asset: maintenance.Asset{ID: id, Category: category, TagID: tag}}
}

func TestLoadDropsStaleResponse(t *testing.T) {
	src := &gatedSource{calls: map[string]*call{
		"old": {started: make(chan struct{}), release: make(chan struct{}), rows: []maintenance.Row{row(1, "Old", "A")}},
		"new": {rows: []maintenance.Row{row(2, "New", "B")}},
	}}
	b := NewBoard(src, nil, aggregate.Options{})

	done := make(chan error, 1)
	go func() { done <- b.Load(context.Background(), Filter{CustomerID: "c", Branch: "old"}) }()

	<-src.calls["old"].started
	if err := b.Load(context.Background(), Filter{CustomerID: "c", Branch: "new"}); err != nil {
		t.Fatalf("Load new: %v", err)
	}
	close(src.calls["old"].release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("old load err=%v", err)
	}
	if got := b.Result().Categories(); len(got) != 1 || got[0] != "New" {
		t.Fatalf("categories=%v", got)
	}
	if b.Filter().Branch != "new" {
		t.Fatalf("filter=%+v", b.Filter())
	}
}

func TestLoadFailureSetsError(t *testing.T) {
	src := &gatedSource{calls: map[string]*call{
		"ok":   {rows: []maintenance.Row{row(1, "A", "x")}},
		"down": {err: errors.New("boom")},
	}}
	b := NewBoard(src, nil, aggregate.Options{})
	if err := b.Load(context.Background(), Filter{CustomerID: "c", Branch: "ok"}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := b.Load(context.Background(), Filter{CustomerID: "c", Branch: "down"}); err == nil {
		t.Fatalf("expected error")
	}
	if b.Err() == nil {
		t.Fatalf("page error not set")
	}
	if len(b.Result().Groups()) != 0 {
		t.Fatalf("data kept after failed load")
	}
	if err := b.Load(context.Background(), Filter{CustomerID: "c", Branch: "ok"}); err != nil || b.Err() != nil {
		t.Fatalf("recovery failed: %v %v", err, b.Err())
	}
}

func TestLoadRequiresFilter(t *testing.T) {
	b := NewBoard(&gatedSource{}, nil, aggregate.Options{})
	if err := b.Load(context.Background(), Filter{Branch: "x"}); err == nil {
		t.Fatalf("expected error for missing customer")
	}
}

func TestSearchAndAppend(t *testing.T) {
	src := &gatedSource{calls: map[string]*call{
		"b": {rows: []maintenance.Row{row(1, "Printer", "PRN-1"), row(2, "Laptop", "LAP-1")}},
	}}
	b := NewBoard(src, nil, aggregate.Options{})
	if err := b.Load(context.Background(), Filter{CustomerID: "c", Branch: "b"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	b.SetSearch("prn")
	if got := b.Result().Categories(); len(got) != 1 || got[0] != "Printer" {
		t.Fatalf("search categories=%v", got)
	}
	b.SetSearch("")

	b.Selection().AddAsset(maintenance.Asset{ID: 2}, nil)
	b.AppendRow(maintenance.Row{
		Asset:            maintenance.Asset{ID: 2, Category: "Laptop", TagID: "LAP-1"},
		Event:            &maintenance.PMRecord{PMID: 77, PMDate: time.Now()},
		ChecklistResults: []maintenance.ChecklistResult{{ChecklistID: 3, IsOK: true}},
	})
	s := b.Result().Group("Laptop").Asset(2)
	if s.PMCount != 1 || len(b.Result().Group("Laptop").ChecklistColumns) != 1 {
		t.Fatalf("appended row not aggregated: %+v", s)
	}
	if !b.Selection().Has(2) {
		t.Fatalf("selection lost on rebuild")
	}
	if len(b.Tables()) != 2 || len(b.Candidates()) != 2 {
		t.Fatalf("tables=%d candidates=%d", len(b.Tables()), len(b.Candidates()))
	}
}
