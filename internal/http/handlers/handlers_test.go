package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/http/response"
	"github.com/yungbote/assetpm-backend/internal/platform/apierr"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
	"github.com/yungbote/assetpm-backend/internal/services"
)

type stubRows struct {
	rows     []maintenance.Row
	defs     []maintenance.ChecklistDefinition
	err      error
	customer int64
	branch   string
}

func (s *stubRows) ListRows(_ context.Context, customerID int64, branch string) ([]maintenance.Row, error) {
	s.customer, s.branch = customerID, branch
	return s.rows, s.err
}

func (s *stubRows) ListChecklist(_ context.Context, _ int64) ([]maintenance.ChecklistDefinition, error) {
	return s.defs, s.err
}

func (s *stubRows) Invalidate(context.Context, int64, string) {}

type stubEvents struct {
	got maintenance.SubmitEventInput
	err error
}

func (s *stubEvents) Submit(_ context.Context, in maintenance.SubmitEventInput) (*maintenance.SubmitEventResult, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &maintenance.SubmitEventResult{PMID: 99}, nil
}

type stubExports struct {
	doc   *services.RenderedExport
	err   error
	ids   []int64
	limit int
}

func (s *stubExports) Render(_ context.Context, ids []int64) (*services.RenderedExport, error) {
	s.ids = ids
	return s.doc, s.err
}

func (s *stubExports) ListRecent(_ context.Context, limit int) ([]*types.ExportRun, error) {
	s.limit = limit
	return []*types.ExportRun{}, s.err
}

func newRouter(rows services.RowService, events services.EventService, exports services.ExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	mh := NewMaintenanceHandler(log, rows, events)
	eh := NewExportHandler(log, exports)
	r := gin.New()
	r.GET("/api/maintenance/rows", mh.ListRows)
	r.GET("/api/categories/:id/checklist", mh.ListChecklist)
	r.POST("/api/maintenance/events", mh.SubmitEvent)
	r.POST("/api/maintenance/export", eh.Export)
	r.GET("/api/maintenance/exports", eh.ListRuns)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error
}

func TestListRowsValidatesFilter(t *testing.T) {
	rows := &stubRows{}
	r := newRouter(rows, &stubEvents{}, &stubExports{})

	cases := []struct {
		target string
		code   string
	}{
		{"/api/maintenance/rows?branch=North", "invalid_customer_id"},
		{"/api/maintenance/rows?customer_id=abc&branch=North", "invalid_customer_id"},
		{"/api/maintenance/rows?customer_id=0&branch=North", "invalid_customer_id"},
		{"/api/maintenance/rows?customer_id=7&branch=%20", "invalid_branch"},
	}
	for _, tc := range cases {
		rec := do(r, http.MethodGet, tc.target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.target, rec.Code)
		}
		if got := errorCode(t, rec).Code; got != tc.code {
			t.Fatalf("%s: code=%q want %q", tc.target, got, tc.code)
		}
	}
}

func TestListRowsReturnsArray(t *testing.T) {
	rows := &stubRows{}
	r := newRouter(rows, &stubEvents{}, &stubExports{})

	rec := do(r, http.MethodGet, "/api/maintenance/rows?customer_id=7&branch=North", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("body=%s", rec.Body.String())
	}
	if rows.customer != 7 || rows.branch != "North" {
		t.Fatalf("filter=%d %q", rows.customer, rows.branch)
	}
}

func TestListRowsHidesInternalErrors(t *testing.T) {
	r := newRouter(&stubRows{err: errors.New("dial tcp 10.0.0.1:5432")}, &stubEvents{}, &stubExports{})
	rec := do(r, http.MethodGet, "/api/maintenance/rows?customer_id=7&branch=North", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if e := errorCode(t, rec); strings.Contains(e.Message, "10.0.0.1") || e.Code != "list_rows_failed" {
		t.Fatalf("envelope=%+v", e)
	}
}

func TestListChecklist(t *testing.T) {
	rows := &stubRows{defs: []maintenance.ChecklistDefinition{{ChecklistID: 1, CategoryID: 3, CheckItem: "Toner"}}}
	r := newRouter(rows, &stubEvents{}, &stubExports{})

	if rec := do(r, http.MethodGet, "/api/categories/x/checklist", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	rec := do(r, http.MethodGet, "/api/categories/3/checklist", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Check_Item":"Toner"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSubmitEvent(t *testing.T) {
	events := &stubEvents{}
	r := newRouter(&stubRows{}, events, &stubExports{})

	body := `{"assetId":5,"pmDate":"2024-02-03","checklistResults":[{"Checklist_ID":1,"Is_OK_bool":true}]}`
	rec := do(r, http.MethodPost, "/api/maintenance/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if events.got.AssetID != 5 || !events.got.PMDate.Equal(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("input=%+v", events.got)
	}

	events.err = apierr.BadRequest("validation_failed", errors.New("checklist 4 does not belong to category Printer"))
	rec = do(r, http.MethodPost, "/api/maintenance/events", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	if e := errorCode(t, rec); e.Code != "validation_failed" || !strings.Contains(e.Message, "checklist 4") {
		t.Fatalf("envelope=%+v", e)
	}

	if rec := do(r, http.MethodPost, "/api/maintenance/events", "{"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status=%d", rec.Code)
	}
}

func TestExportWritesDocument(t *testing.T) {
	exports := &stubExports{doc: &services.RenderedExport{
		Body:        []byte("PM_ID\n1\n"),
		ContentType: "text/csv; charset=utf-8",
		Filename:    "PM_Report_7_North_20240506-070809.csv",
		Customer:    "7",
		Branch:      "North",
		Timestamp:   "20240506-070809",
	}}
	r := newRouter(&stubRows{}, &stubEvents{}, exports)

	rec := do(r, http.MethodPost, "/api/maintenance/export", `{"pmIds":[11,10]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "PM_Report_7_North_20240506-070809.csv") {
		t.Fatalf("disposition=%q", got)
	}
	if rec.Header().Get(maintenance.HeaderExportBranch) != "North" || rec.Header().Get(maintenance.HeaderExportTimestamp) != "20240506-070809" {
		t.Fatalf("headers=%v", rec.Header())
	}
	if rec.Body.String() != "PM_ID\n1\n" {
		t.Fatalf("body=%q", rec.Body.String())
	}
	if len(exports.ids) != 2 || exports.ids[0] != 11 {
		t.Fatalf("ids=%v", exports.ids)
	}
}

func TestExportErrors(t *testing.T) {
	exports := &stubExports{}
	r := newRouter(&stubRows{}, &stubEvents{}, exports)

	rec := do(r, http.MethodPost, "/api/maintenance/export", `{"pmIds":[]}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec).Code != "no_selection" {
		t.Fatalf("empty: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if exports.ids != nil {
		t.Fatalf("service called for empty selection")
	}

	exports.err = apierr.NotFound("pm_not_found", errors.New("pm event 12 not found"))
	rec = do(r, http.MethodPost, "/api/maintenance/export", `{"pmIds":[12]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
	if e := errorCode(t, rec); e.Message != "pm event 12 not found" {
		t.Fatalf("envelope=%+v", e)
	}
}

func TestListRunsLimit(t *testing.T) {
	exports := &stubExports{}
	r := newRouter(&stubRows{}, &stubEvents{}, exports)

	if rec := do(r, http.MethodGet, "/api/maintenance/exports?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	rec := do(r, http.MethodGet, "/api/maintenance/exports", "")
	if rec.Code != http.StatusOK || exports.limit != 20 {
		t.Fatalf("status=%d limit=%d", rec.Code, exports.limit)
	}
	if !strings.Contains(rec.Body.String(), `"exports":[]`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		ping   Pinger
		status int
		state  string
	}{
		{name: "no pinger", status: http.StatusOK, state: "ready"},
		{name: "db up", ping: func(context.Context) error { return nil }, status: http.StatusOK, state: "ready"},
		{name: "db down", ping: func(context.Context) error { return errors.New("refused") }, status: http.StatusServiceUnavailable, state: "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("1.2.3", tt.ping)
			r := gin.New()
			r.GET("/readyz", h.Ready)
			rec := do(r, http.MethodGet, "/readyz", "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != tt.state || body["version"] != "1.2.3" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}
