package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assetpm-backend/internal/clients/pmapi"
	"github.com/yungbote/assetpm-backend/internal/data/repos"
	"github.com/yungbote/assetpm-backend/internal/data/repos/testutil"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	httpH "github.com/yungbote/assetpm-backend/internal/http/handlers"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
	"github.com/yungbote/assetpm-backend/internal/maintenance/dashboard"
	"github.com/yungbote/assetpm-backend/internal/maintenance/export"
	"github.com/yungbote/assetpm-backend/internal/maintenance/pivot"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/services"
)

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

// newStack serves the full API over an in-memory database and returns a
// client pointed at it.
func newStack(t *testing.T) (*pmapi.Client, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	printer := testutil.SeedCategory(t, ctx, db, "Printer")
	toner := testutil.SeedChecklist(t, ctx, db, printer.ID, "Toner")
	rollers := testutil.SeedChecklist(t, ctx, db, printer.ID, "Rollers")
	laptop := testutil.SeedCategory(t, ctx, db, "Laptop")
	battery := testutil.SeedChecklist(t, ctx, db, laptop.ID, "Battery")

	prn := testutil.SeedAsset(t, ctx, db, 7, "North", "PRN-1", printer)
	testutil.SeedAsset(t, ctx, db, 7, "North", "LAP-1", laptop)
	lap2 := testutil.SeedAsset(t, ctx, db, 7, "North", "LAP-2", laptop)
	testutil.SeedAsset(t, ctx, db, 7, "South", "PRN-9", printer)

	testutil.SeedPMEvent(t, ctx, db, prn.ID, day(1), maintenance.StoredCheck{ChecklistID: toner.ID, IsOK: true})
	testutil.SeedPMEvent(t, ctx, db, prn.ID, day(5),
		maintenance.StoredCheck{ChecklistID: toner.ID, IsOK: false},
		maintenance.StoredCheck{ChecklistID: rollers.ID, IsOK: true},
	)
	testutil.SeedPMEvent(t, ctx, db, lap2.ID, day(2), maintenance.StoredCheck{ChecklistID: battery.ID, IsOK: true})

	assets := repos.NewAssetRepo(db, log)
	events := repos.NewPMEventRepo(db, log)
	checklist := repos.NewChecklistDefinitionRepo(db, log)
	runs := repos.NewExportRunRepo(db, log)
	metrics := observability.NewMetrics()

	rowSvc := services.NewRowService(db, log, assets, events, checklist, services.NewMemoryRowCache(), time.Minute, metrics)
	eventSvc := services.NewEventService(db, log, assets, events, checklist, rowSvc, metrics)
	exportSvc := services.NewExportService(db, log, assets, events, checklist, runs, metrics)

	router := NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		MaintenanceHandler: httpH.NewMaintenanceHandler(log, rowSvc, eventSvc),
		ExportHandler:      httpH.NewExportHandler(log, exportSvc),
		HealthHandler:      httpH.NewHealthHandler("test", nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := pmapi.New(pmapi.Options{BaseURL: srv.URL, Logger: log, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client, metrics
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := NewRouter(RouterConfig{HealthHandler: httpH.NewHealthHandler("test", nil), Metrics: m})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "assetpm_api_requests_total") {
		t.Fatalf("metrics: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDashboardOverHTTP(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	board := dashboard.NewBoard(client, nil, aggregate.Options{})
	if err := board.Load(ctx, dashboard.Filter{CustomerID: "7", Branch: "North"}); err != nil {
		t.Fatalf("load: %v", err)
	}

	tables := map[string]pivot.Table{}
	for _, tbl := range board.Tables() {
		tables[tbl.Category] = tbl
	}
	printers, ok := tables["Printer"]
	if !ok || len(printers.Rows) != 1 {
		t.Fatalf("printer table=%+v", printers)
	}
	prn := printers.Rows[0]
	if prn.PMCount != 2 || len(prn.Cells) != 2 {
		t.Fatalf("printer row=%+v", prn)
	}
	// latest event: toner failed, rollers passed
	if prn.Cells[0] != pivot.Fail || prn.Cells[1] != pivot.Pass {
		t.Fatalf("cells=%v", prn.Cells)
	}

	laptops := tables["Laptop"]
	if len(laptops.Rows) != 2 {
		t.Fatalf("laptop rows=%+v", laptops.Rows)
	}
	var never *pivot.Row
	for i := range laptops.Rows {
		if laptops.Rows[i].Asset.TagID == "LAP-1" {
			never = &laptops.Rows[i]
		}
	}
	if never == nil || never.PMCount != 0 || never.LatestPMDate != nil || never.Cells[0] != pivot.NotApplicable {
		t.Fatalf("never-maintained row=%+v", never)
	}

	board.SetSearch("lap-2")
	if got := board.Tables(); len(got) != 1 || got[0].Category != "Laptop" {
		t.Fatalf("search tables=%+v", got)
	}
}

func TestSubmitThenReload(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	rows, err := client.ListRows(ctx, "7", "North")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	var lap1 maintenance.Asset
	for _, r := range rows {
		if r.TagID == "LAP-1" {
			lap1 = r.Asset
		}
	}
	defs, err := client.ListChecklist(ctx, lap1.CategoryID)
	if err != nil || len(defs) != 1 {
		t.Fatalf("checklist=%+v err=%v", defs, err)
	}

	res, err := client.SubmitEvent(ctx, maintenance.SubmitEventInput{
		AssetID:          lap1.ID,
		PMDate:           day(20),
		ChecklistResults: []maintenance.SubmitCheck{{ChecklistID: defs[0].ChecklistID, IsOK: false, Remarks: "swollen"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.PMID == 0 || res.Row.Event == nil {
		t.Fatalf("result=%+v", res)
	}

	board := dashboard.NewBoard(client, nil, aggregate.Options{})
	if err := board.Load(ctx, dashboard.Filter{CustomerID: "7", Branch: "North"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	s := board.Result().Group("Laptop").Asset(lap1.ID)
	if s == nil || s.PMCount != 1 || !s.LatestPMDate.Equal(day(20)) {
		t.Fatalf("summary after submit=%+v", s)
	}

	_, err = client.SubmitEvent(ctx, maintenance.SubmitEventInput{AssetID: lap1.ID, PMDate: day(21),
		ChecklistResults: []maintenance.SubmitCheck{{ChecklistID: 9999, IsOK: true}}})
	var httpErr *pmapi.HTTPError
	if err == nil || !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("foreign checklist err=%v", err)
	}
}

func TestExportOverHTTP(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	board := dashboard.NewBoard(client, nil, aggregate.Options{})
	if err := board.Load(ctx, dashboard.Filter{CustomerID: "7", Branch: "North"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	sel := board.Selection()
	for _, c := range board.Candidates() {
		if c.Asset.TagID == "PRN-1" {
			sel.AddAsset(c.Asset, c.Records)
			for _, r := range c.Records {
				sel.TogglePMEvent(c.Asset.ID, r.PMID)
			}
		}
	}
	if sel.TotalSelectedEvents() != 2 {
		t.Fatalf("selected=%d", sel.TotalSelectedEvents())
	}

	dir := t.TempDir()
	req := export.NewRequester(client, export.FileSaver{Dir: dir}, nil)
	path, err := req.Export(ctx, sel)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "PM_Report_7_North_") {
		t.Fatalf("path=%q", path)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(body), "PM_ID,PM_Date") || !strings.Contains(string(body), "PRN-1") {
		t.Fatalf("document=%s", body)
	}
	if sel.TotalSelectedEvents() != 0 {
		t.Fatalf("selection not cleared after export")
	}

	// empty selection never reaches the server
	if _, err := req.Export(ctx, sel); !errors.Is(err, export.ErrNoSelection) {
		t.Fatalf("empty export err=%v", err)
	}
}
