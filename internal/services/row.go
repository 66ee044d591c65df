package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos"
	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/ctxutil"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type RowService interface {
	ListRows(ctx context.Context, customerID int64, branch string) ([]maintenance.Row, error)
	ListChecklist(ctx context.Context, categoryID int64) ([]maintenance.ChecklistDefinition, error)
	// Invalidate drops the cached rows of one customer branch.
	Invalidate(ctx context.Context, customerID int64, branch string)
}

type rowService struct {
	db        *gorm.DB
	log       *logger.Logger
	assets    repos.AssetRepo
	events    repos.PMEventRepo
	checklist repos.ChecklistDefinitionRepo
	cache     RowCache
	cacheTTL  time.Duration
	metrics   *observability.Metrics

	// gens counts invalidations per cache key. A load that saw an older
	// generation must not leave its rows in the cache.
	genMu sync.Mutex
	gens  map[string]uint64
}

func NewRowService(
	db *gorm.DB,
	log *logger.Logger,
	assets repos.AssetRepo,
	events repos.PMEventRepo,
	checklist repos.ChecklistDefinitionRepo,
	cache RowCache,
	cacheTTL time.Duration,
	metrics *observability.Metrics,
) RowService {
	return &rowService{
		db:        db,
		log:       log.With("service", "RowService"),
		assets:    assets,
		events:    events,
		checklist: checklist,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		gens:      map[string]uint64{},
	}
}

// ListRows emits one row per (asset, event) pair and a single event-less row
// for assets that were never maintained.
func (s *rowService) ListRows(ctx context.Context, customerID int64, branch string) (rows []maintenance.Row, err error) {
	branch = strings.TrimSpace(branch)
	if customerID <= 0 {
		return nil, validationError("customer_id is required")
	}
	if branch == "" {
		return nil, validationError("branch is required")
	}

	ctx, span := observability.StartSpan(ctx, "RowService.ListRows",
		attribute.Int64("customer_id", customerID), attribute.String("branch", branch))
	defer func() { observability.EndSpan(span, err) }()

	cid := strconv.FormatInt(customerID, 10)
	if s.cache != nil {
		cached, ok, cerr := s.cache.Get(ctx, cid, branch)
		if cerr != nil {
			s.metrics.IncRowCacheError("get")
			s.log.Warn("Row cache read failed", append(ctxutil.LogFields(ctx), "error", cerr)...)
		} else if ok {
			s.metrics.AddRowsServed("cache", len(cached))
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	gen := s.generation(cid, branch)
	rows, err = s.load(ctx, customerID, branch)
	if err != nil {
		return nil, err
	}
	s.metrics.AddRowsServed("db", len(rows))

	if s.cache != nil {
		s.store(ctx, cid, branch, gen, rows)
	}
	return rows, nil
}

// store caches rows loaded under generation gen. An invalidation that landed
// during the load or the write removes the entry again.
func (s *rowService) store(ctx context.Context, cid, branch string, gen uint64, rows []maintenance.Row) {
	if s.generation(cid, branch) != gen {
		return
	}
	if cerr := s.cache.Set(ctx, cid, branch, rows, s.cacheTTL); cerr != nil {
		s.metrics.IncRowCacheError("set")
		s.log.Warn("Row cache write failed", append(ctxutil.LogFields(ctx), "error", cerr)...)
		return
	}
	if s.generation(cid, branch) == gen {
		return
	}
	if cerr := s.cache.Invalidate(ctx, cid, branch); cerr != nil {
		s.metrics.IncRowCacheError("invalidate")
		s.log.Warn("Row cache invalidate failed", append(ctxutil.LogFields(ctx), "error", cerr)...)
	}
}

func (s *rowService) generation(cid, branch string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[cid+"\x00"+branch]
}

func (s *rowService) bump(cid, branch string) {
	s.genMu.Lock()
	s.gens[cid+"\x00"+branch]++
	s.genMu.Unlock()
}

func (s *rowService) load(ctx context.Context, customerID int64, branch string) ([]maintenance.Row, error) {
	dbc := dbctx.Of(ctx)
	assets, err := s.assets.ListByCustomerBranch(dbc, customerID, branch)
	if err != nil {
		return nil, repos.MapError("list assets", err)
	}
	if len(assets) == 0 {
		return []maintenance.Row{}, nil
	}

	assetIDs := make([]int64, 0, len(assets))
	categoryIDs := make([]int64, 0, len(assets))
	seenCat := map[int64]bool{}
	for _, a := range assets {
		assetIDs = append(assetIDs, a.ID)
		if a.CategoryID != nil && !seenCat[*a.CategoryID] {
			seenCat[*a.CategoryID] = true
			categoryIDs = append(categoryIDs, *a.CategoryID)
		}
	}

	var (
		events []*types.PMEvent
		defs   []*types.ChecklistDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.events.ListByAssetIDs(dbctx.Of(gctx), assetIDs)
		return repos.MapError("list pm events", err)
	})
	g.Go(func() error {
		var err error
		defs, err = s.checklist.ListByCategories(dbctx.Of(gctx), categoryIDs)
		return repos.MapError("list checklist definitions", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	labels := checklistLabels(defs)
	byAsset := map[int64][]*types.PMEvent{}
	for _, e := range events {
		byAsset[e.AssetID] = append(byAsset[e.AssetID], e)
	}

	out := make([]maintenance.Row, 0, len(events)+len(assets))
	for _, a := range assets {
		evs := byAsset[a.ID]
		if len(evs) == 0 {
			out = append(out, buildRow(a, nil, labels))
			continue
		}
		for _, e := range evs {
			out = append(out, buildRow(a, e, labels))
		}
	}
	return out, nil
}

func (s *rowService) ListChecklist(ctx context.Context, categoryID int64) ([]maintenance.ChecklistDefinition, error) {
	if categoryID <= 0 {
		return nil, validationError("category id is required")
	}
	defs, err := s.checklist.ListByCategory(dbctx.Of(ctx), categoryID)
	if err != nil {
		return nil, repos.MapError("list checklist definitions", err)
	}
	out := make([]maintenance.ChecklistDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, maintenance.ChecklistDefinition{
			ChecklistID:   d.ID,
			CategoryID:    d.CategoryID,
			CheckItem:     d.CheckItem,
			CheckItemLong: d.CheckItemLong,
		})
	}
	return out, nil
}

func (s *rowService) Invalidate(ctx context.Context, customerID int64, branch string) {
	if s.cache == nil {
		return
	}
	cid, branch := strconv.FormatInt(customerID, 10), strings.TrimSpace(branch)
	s.bump(cid, branch)
	if err := s.cache.Invalidate(ctx, cid, branch); err != nil {
		s.metrics.IncRowCacheError("invalidate")
		s.log.Warn("Row cache invalidate failed", "customer_id", customerID, "branch", branch, "error", err)
	}
}

// checklistLabels maps category -> checklist id -> short label.
func checklistLabels(defs []*types.ChecklistDefinition) map[int64]map[int64]string {
	out := map[int64]map[int64]string{}
	for _, d := range defs {
		if out[d.CategoryID] == nil {
			out[d.CategoryID] = map[int64]string{}
		}
		out[d.CategoryID][d.ID] = d.CheckItem
	}
	return out
}

func wireAsset(a *types.Asset) maintenance.Asset {
	out := maintenance.Asset{
		ID:            a.ID,
		TagID:         a.TagID,
		ItemName:      a.ItemName,
		SerialNumber:  a.SerialNumber,
		Category:      a.CategoryName(),
		RecipientName: a.RecipientName,
		Department:    a.Department,
	}
	if a.CategoryID != nil {
		out.CategoryID = *a.CategoryID
	}
	return out
}

func buildRow(a *types.Asset, e *types.PMEvent, labels map[int64]map[int64]string) maintenance.Row {
	row := maintenance.Row{Asset: wireAsset(a), ChecklistResults: []maintenance.ChecklistResult{}}
	if e == nil {
		return row
	}
	row.Event = &maintenance.PMRecord{PMID: e.ID, PMDate: e.PMDate.UTC()}
	var catLabels map[int64]string
	if a.CategoryID != nil {
		catLabels = labels[*a.CategoryID]
	}
	for _, c := range e.Checks() {
		row.ChecklistResults = append(row.ChecklistResults, maintenance.ChecklistResult{
			ChecklistID: c.ChecklistID,
			CheckItem:   catLabels[c.ChecklistID],
			IsOK:        c.IsOK,
			Remarks:     c.Remarks,
		})
	}
	return row
}
