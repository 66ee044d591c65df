package pmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/export"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = http.Header{"Content-Type": []string{"application/json"}}
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(bytes.NewReader([]byte(body)))}
}

func newTestClient(t *testing.T, rt roundTripperFunc, retries int) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL:    "http://pm.local/",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestListRows(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/maintenance/rows" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("customer_id") != "42" || req.URL.Query().Get("branch") != "North" {
			t.Fatalf("query=%s", req.URL.RawQuery)
		}
		return respond(http.StatusOK, nil, `[
			{"Asset_ID": 1, "Category": "Printer", "PM_ID": 10, "PM_Date": "2024-01-01",
			 "checklist_results": [{"Checklist_ID": 1, "Is_OK_bool": 1}]},
			{"Asset_ID": "2", "Category": "Laptop", "PM_ID": null, "PM_Date": null, "checklist_results": null},
			"garbage"
		]`), nil
	}, 0)

	rows, err := c.ListRows(context.Background(), "42", "North")
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0].Event == nil || rows[0].Event.PMID != 10 || !rows[0].ChecklistResults[0].IsOK {
		t.Fatalf("row0=%+v", rows[0])
	}
	if rows[1].Asset.ID != 2 || rows[1].Event != nil {
		t.Fatalf("row1=%+v", rows[1])
	}
}

func TestListRowsRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return respond(http.StatusBadGateway, nil, `{}`), nil
		}
		return respond(http.StatusOK, nil, `{"data": []}`), nil
	}, 2)

	rows, err := c.ListRows(context.Background(), "1", "b")
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 0 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("rows=%d calls=%d", len(rows), calls)
	}
}

func TestSubmitEventNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		var in map[string]any
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if in["pmDate"] != "2024-02-03T00:00:00Z" {
			t.Fatalf("pmDate=%v", in["pmDate"])
		}
		return respond(http.StatusInternalServerError, nil, `{"error":{"message":"db down","code":"submit_failed"}}`), nil
	}, 3)

	_, err := c.SubmitEvent(context.Background(), maintenance.SubmitEventInput{
		AssetID: 1,
		PMDate:  time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.Code != "submit_failed" {
		t.Fatalf("err=%v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestExport(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		var in maintenance.ExportRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if len(in.PMIDs) != 2 {
			t.Fatalf("pmIds=%v", in.PMIDs)
		}
		h := http.Header{}
		h.Set("Content-Type", "text/csv")
		h.Set("Content-Disposition", `attachment; filename="PM_Report_ACME_North_20240101-120000.csv"`)
		h.Set(maintenance.HeaderExportCustomer, "ACME")
		h.Set(maintenance.HeaderExportBranch, "North")
		h.Set(maintenance.HeaderExportTimestamp, "20240101-120000")
		return respond(http.StatusOK, h, "a,b\n"), nil
	}, 0)

	doc, err := c.Export(context.Background(), maintenance.ExportRequest{PMIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Filename != "PM_Report_ACME_North_20240101-120000.csv" || doc.Customer != "ACME" || string(doc.Body) != "a,b\n" {
		t.Fatalf("doc=%+v", doc)
	}
}

func TestExportErrorMessageReachesRequester(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"envelope", `{"error":{"message":"Some PM records were not found","code":"not_found"}}`, "Some PM records were not found"},
		{"flat", `{"message":"No PM IDs provided"}`, "No PM IDs provided"},
		{"none", `oops`, export.GenericFailureMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return respond(http.StatusNotFound, nil, tc.body), nil
			}, 0)
			_, err := c.Export(context.Background(), maintenance.ExportRequest{PMIDs: []int64{1}})
			if err == nil {
				t.Fatalf("expected error")
			}

			// the requester surfaces the same message
			state := selectionWith(1)
			_, err = export.NewRequester(c, export.FileSaver{Dir: t.TempDir()}, nil).Export(context.Background(), state)
			var ee *export.Error
			if !errors.As(err, &ee) || ee.Message != tc.want {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestParseHTTPErrorWithoutMessage(t *testing.T) {
	err := parseHTTPError(http.StatusServiceUnavailable, []byte(""))
	herr, ok := err.(*HTTPError)
	if !ok || herr.UserMessage() != "" || herr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err=%#v", err)
	}
}

func TestListRowsEnvelopeShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		rows    int
		wantErr bool
	}{
		{name: "bare array", body: `[{"Asset_ID": 1}]`, rows: 1},
		{name: "rows key", body: `{"rows": [{"Asset_ID": 1}, {"Asset_ID": 2}]}`, rows: 2},
		{name: "data key", body: `{"data": []}`, rows: 0},
		{name: "unknown object", body: `{"items": [{"Asset_ID": 1}]}`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return respond(http.StatusOK, nil, tt.body), nil
			}, 0)
			rows, err := c.ListRows(context.Background(), "1", "b")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d rows", len(rows))
				}
				return
			}
			if err != nil || len(rows) != tt.rows {
				t.Fatalf("rows=%d err=%v", len(rows), err)
			}
		})
	}
}

func TestResponseTooLarge(t *testing.T) {
	body := `[{"Asset_ID": 1}, {"Asset_ID": 2}, {"Asset_ID": 3}]`
	c, err := New(Options{
		BaseURL:          "http://pm.local",
		MaxResponseBytes: int64(len(body) - 1),
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method == http.MethodPost {
				return respond(http.StatusOK, http.Header{}, body), nil
			}
			return respond(http.StatusOK, nil, body), nil
		})},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.ListRows(context.Background(), "1", "b"); !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("ListRows err=%v", err)
	}
	if _, err := c.Export(context.Background(), maintenance.ExportRequest{PMIDs: []int64{1}}); !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("Export err=%v", err)
	}

	c.maxBody = int64(len(body))
	rows, err := c.ListRows(context.Background(), "1", "b")
	if err != nil || len(rows) != 3 {
		t.Fatalf("at the limit: rows=%d err=%v", len(rows), err)
	}
}
