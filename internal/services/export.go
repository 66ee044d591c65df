package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos"
	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/apierr"
	"github.com/yungbote/assetpm-backend/internal/platform/ctxutil"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

const exportTimestampLayout = "20060102-150405"

// RenderedExport is a finished report document.
type RenderedExport struct {
	Body        []byte
	ContentType string
	Filename    string
	Customer    string
	Branch      string
	Timestamp   string
}

type ExportService interface {
	Render(ctx context.Context, pmIDs []int64) (*RenderedExport, error)
	ListRecent(ctx context.Context, limit int) ([]*types.ExportRun, error)
}

type exportService struct {
	db        *gorm.DB
	log       *logger.Logger
	assets    repos.AssetRepo
	events    repos.PMEventRepo
	checklist repos.ChecklistDefinitionRepo
	runs      repos.ExportRunRepo
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewExportService(
	db *gorm.DB,
	log *logger.Logger,
	assets repos.AssetRepo,
	events repos.PMEventRepo,
	checklist repos.ChecklistDefinitionRepo,
	runs repos.ExportRunRepo,
	metrics *observability.Metrics,
) ExportService {
	return &exportService{
		db:        db,
		log:       log.With("service", "ExportService"),
		assets:    assets,
		events:    events,
		checklist: checklist,
		runs:      runs,
		metrics:   metrics,
		now:       time.Now,
	}
}

var csvHeader = []string{
	"PM_ID", "PM_Date", "Asset_Tag_ID", "Item_Name", "Asset_Serial_Number", "Category",
	"Recipient_Name", "Department", "Checklist_ID", "Check_Item", "Status", "Remarks",
}

// Render builds a CSV report with one line per checklist result, in the order
// the PM ids were given. Events without results get a single line.
func (s *exportService) Render(ctx context.Context, pmIDs []int64) (out *RenderedExport, err error) {
	ctx, span := observability.StartSpan(ctx, "ExportService.Render", attribute.Int("pm_ids", len(pmIDs)))
	defer func() {
		observability.EndSpan(span, err)
		if err != nil {
			s.metrics.ObserveExport("failed", 0)
		}
	}()

	ids := uniqueIDs(pmIDs)
	if len(ids) == 0 {
		return nil, apierr.BadRequest("no_selection", fmt.Errorf("%w", ErrNoSelection))
	}

	dbc := dbctx.Of(ctx)
	events, err := s.events.GetByIDs(dbc, ids)
	if err != nil {
		return nil, repos.MapError("load pm events", err)
	}
	if len(events) != len(ids) {
		return nil, notFoundError("pm_not_found", "some PM records were not found")
	}
	byID := make(map[int64]*types.PMEvent, len(events))
	assetIDs := make([]int64, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		assetIDs = append(assetIDs, e.AssetID)
	}

	assets, err := s.assets.GetByIDs(dbc, assetIDs)
	if err != nil {
		return nil, repos.MapError("load assets", err)
	}
	assetByID := make(map[int64]*types.Asset, len(assets))
	var categoryIDs []int64
	for _, a := range assets {
		assetByID[a.ID] = a
		if a.CategoryID != nil {
			categoryIDs = append(categoryIDs, *a.CategoryID)
		}
	}
	defs, err := s.checklist.ListByCategories(dbc, categoryIDs)
	if err != nil {
		return nil, repos.MapError("load checklist", err)
	}
	labels := checklistLabels(defs)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, id := range ids {
		e := byID[id]
		a := assetByID[e.AssetID]
		if a == nil {
			return nil, notFoundError("asset_not_found", fmt.Sprintf("asset %d of PM %d not found", e.AssetID, e.ID))
		}
		for _, line := range exportLines(a, e, labels) {
			if err := w.Write(line); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	first := assetByID[byID[ids[0]].AssetID]
	customer := strconv.FormatInt(first.CustomerID, 10)
	branch := first.Branch
	ts := s.now().UTC().Format(exportTimestampLayout)
	filename := fmt.Sprintf("PM_Report_%s_%s_%s.csv", safeNamePart(customer), safeNamePart(branch), ts)

	rawIDs, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if _, err := s.runs.Create(dbc, &types.ExportRun{
		PMIDs:      datatypes.JSON(rawIDs),
		EventCount: len(ids),
		Filename:   filename,
		CustomerID: first.CustomerID,
		Branch:     branch,
	}); err != nil {
		return nil, repos.MapError("record export run", err)
	}

	s.metrics.ObserveExport("ok", len(ids))
	s.log.Info("Export rendered", append(ctxutil.LogFields(ctx), "filename", filename, "events", len(ids))...)
	return &RenderedExport{
		Body:        buf.Bytes(),
		ContentType: "text/csv; charset=utf-8",
		Filename:    filename,
		Customer:    customer,
		Branch:      branch,
		Timestamp:   ts,
	}, nil
}

func (s *exportService) ListRecent(ctx context.Context, limit int) ([]*types.ExportRun, error) {
	runs, err := s.runs.ListRecent(dbctx.Of(ctx), limit)
	if err != nil {
		return nil, repos.MapError("list export runs", err)
	}
	return runs, nil
}

func exportLines(a *types.Asset, e *types.PMEvent, labels map[int64]map[int64]string) [][]string {
	base := []string{
		strconv.FormatInt(e.ID, 10),
		e.PMDate.UTC().Format("2006-01-02"),
		a.TagID,
		a.ItemName,
		a.SerialNumber,
		a.CategoryName(),
		a.RecipientName,
		a.Department,
	}
	checks := e.Checks()
	if len(checks) == 0 {
		return [][]string{append(append([]string{}, base...), "", "", "", e.Remarks)}
	}
	var catLabels map[int64]string
	if a.CategoryID != nil {
		catLabels = labels[*a.CategoryID]
	}
	out := make([][]string, 0, len(checks))
	for _, c := range checks {
		status := "Fail"
		if c.IsOK {
			status = "Pass"
		}
		line := append(append([]string{}, base...),
			strconv.FormatInt(c.ChecklistID, 10),
			catLabels[c.ChecklistID],
			status,
			c.Remarks,
		)
		out = append(out, line)
	}
	return out
}

func uniqueIDs(in []int64) []int64 {
	seen := make(map[int64]bool, len(in))
	out := make([]int64, 0, len(in))
	for _, id := range in {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeNamePart(s string) string {
	s = unsafeName.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "unknown"
	}
	return s
}
