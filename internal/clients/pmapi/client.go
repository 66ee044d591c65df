package pmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/dashboard"
	"github.com/yungbote/assetpm-backend/internal/maintenance/export"
	"github.com/yungbote/assetpm-backend/internal/platform/ctxutil"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Logger     *logger.Logger

	// MaxResponseBytes caps a response body; larger bodies fail with
	// ErrResponseTooLarge. Zero means 64 MiB.
	MaxResponseBytes int64
}

const defaultMaxResponseBytes = 64 << 20

var (
	_ dashboard.RowSource  = (*Client)(nil)
	_ export.Collaborator = (*Client)(nil)
)

// Client talks to the row source service.
type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	log        *logger.Logger
	maxBody    int64
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	maxBody := opts.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = defaultMaxResponseBytes
	}
	return &Client{
		maxBody:    maxBody,
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		httpClient: hc,
		log:        log.With("client", "PMAPIClient"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListRows returns the maintenance rows of one customer branch. Elements that
// are not JSON objects are dropped and logged.
func (c *Client) ListRows(ctx context.Context, customerID, branch string) ([]maintenance.Row, error) {
	q := url.Values{}
	q.Set("customer_id", strings.TrimSpace(customerID))
	q.Set("branch", strings.TrimSpace(branch))

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/maintenance/rows?"+q.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	data, err := unwrapData(raw, "rows")
	if err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	rows, dropped, err := maintenance.DecodeRows(data)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.log.Warn("Dropped malformed rows", "dropped", dropped)
	}
	return rows, nil
}

func (c *Client) ListChecklist(ctx context.Context, categoryID int64) ([]maintenance.ChecklistDefinition, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d/checklist", categoryID), nil, &raw); err != nil {
		return nil, err
	}
	data, err := unwrapData(raw, "checklist")
	if err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	var defs []maintenance.ChecklistDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	return defs, nil
}

// SubmitEvent stores a new PM event. It is never retried.
func (c *Client) SubmitEvent(ctx context.Context, in maintenance.SubmitEventInput) (*maintenance.SubmitEventResult, error) {
	body := map[string]any{
		"assetId":          in.AssetID,
		"pmDate":           in.PMDate.UTC().Format(time.RFC3339),
		"remarks":          in.Remarks,
		"checklistResults": in.ChecklistResults,
	}
	var out maintenance.SubmitEventResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/maintenance/events", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export asks the service to render the given events and returns the document
// with the naming hints from the response headers.
func (c *Client) Export(ctx context.Context, req maintenance.ExportRequest) (*export.Document, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+"/api/maintenance/export", &buf)
	if err != nil {
		return nil, err
	}
	c.setHeaders(ctx, httpReq, "application/json", "*/*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, parseHTTPError(resp.StatusCode, raw)
	}
	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	return &export.Document{
		Body:      body,
		Filename:  filenameFrom(resp.Header.Get("Content-Disposition")),
		Customer:  resp.Header.Get(maintenance.HeaderExportCustomer),
		Branch:    resp.Header.Get(maintenance.HeaderExportBranch),
		Timestamp: resp.Header.Get(maintenance.HeaderExportTimestamp),
	}, nil
}

func filenameFrom(disposition string) string {
	if strings.TrimSpace(disposition) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}

// unwrapData accepts either a bare array or an object holding it under key
// or "data". An object with neither is an error, never an empty list.
func unwrapData(raw json.RawMessage, key string) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for _, k := range []string{key, "data"} {
		if v, ok := obj[k]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("response object has no %q or \"data\" field", key)
}

// readBody reads at most maxBody bytes and reports a longer body instead of
// truncating it.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return raw, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request, contentType string, accept string) {
	if strings.TrimSpace(contentType) != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.TrimSpace(accept) != "" {
		req.Header.Set("Accept", accept)
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-Id", td.RequestID)
	}
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= retries; attempt++ {
		if ctx2.Err() != nil {
			return ctx2.Err()
		}

		req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		c.setHeaders(ctx, req, "application/json", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			raw, readErr := c.readBody(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return readErr
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = parseHTTPError(resp.StatusCode, raw)
				if !retryable(resp.StatusCode) {
					return lastErr
				}
			} else {
				if out == nil {
					return nil
				}
				return json.Unmarshal(raw, out)
			}
		}

		if attempt < retries {
			c.log.Debug("Retrying request", "path", path, "attempt", attempt+1, "error", lastErr)
			select {
			case <-ctx2.Done():
				return ctx2.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
