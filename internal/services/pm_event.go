package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos"
	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/observability"
	"github.com/yungbote/assetpm-backend/internal/platform/ctxutil"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type EventService interface {
	// Submit stores a new PM event and returns its id together with the row
	// a client can append without refetching.
	Submit(ctx context.Context, in maintenance.SubmitEventInput) (*maintenance.SubmitEventResult, error)
}

type eventService struct {
	db        *gorm.DB
	tx        dbctx.TxRunner
	log       *logger.Logger
	assets    repos.AssetRepo
	events    repos.PMEventRepo
	checklist repos.ChecklistDefinitionRepo
	rows      RowService
	metrics   *observability.Metrics
}

func NewEventService(
	db *gorm.DB,
	log *logger.Logger,
	assets repos.AssetRepo,
	events repos.PMEventRepo,
	checklist repos.ChecklistDefinitionRepo,
	rows RowService,
	metrics *observability.Metrics,
) EventService {
	return &eventService{
		db:        db,
		tx:        dbctx.NewTxRunner(db),
		log:       log.With("service", "EventService"),
		assets:    assets,
		events:    events,
		checklist: checklist,
		rows:      rows,
		metrics:   metrics,
	}
}

func (s *eventService) Submit(ctx context.Context, in maintenance.SubmitEventInput) (res *maintenance.SubmitEventResult, err error) {
	ctx, span := observability.StartSpan(ctx, "EventService.Submit", attribute.Int64("asset_id", in.AssetID))
	defer func() {
		observability.EndSpan(span, err)
		status := "ok"
		if err != nil {
			status = "failed"
		}
		s.metrics.IncEventSubmitted(status)
	}()

	if in.AssetID <= 0 {
		return nil, validationError("assetId is required")
	}
	if in.PMDate.IsZero() {
		return nil, validationError("pmDate is required")
	}

	var (
		asset  *types.Asset
		labels map[int64]map[int64]string
		event  *types.PMEvent
	)
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		a, err := s.assets.GetByID(dbc, in.AssetID)
		if err != nil {
			return repos.MapError("load asset", err)
		}
		if a == nil {
			return notFoundError("asset_not_found", "asset does not exist")
		}
		asset = a

		var defs []*types.ChecklistDefinition
		if a.CategoryID != nil {
			defs, err = s.checklist.ListByCategory(dbc, *a.CategoryID)
			if err != nil {
				return repos.MapError("load checklist", err)
			}
		}
		labels = checklistLabels(defs)

		checks, verr := s.validateChecks(a, labels, in.ChecklistResults)
		if verr != nil {
			return verr
		}
		raw, err := maintenance.EncodeChecks(checks)
		if err != nil {
			return err
		}

		created, err := s.events.Create(dbc, []*types.PMEvent{{
			AssetID:          a.ID,
			PMDate:           in.PMDate.UTC(),
			Remarks:          strings.TrimSpace(in.Remarks),
			ChecklistResults: raw,
		}})
		if err != nil {
			return repos.MapError("create pm event", err)
		}
		event = created[0]
		return nil
	})
	if err != nil {
		s.log.Warn("Submit PM event failed", append(ctxutil.LogFields(ctx), "asset_id", in.AssetID, "error", err)...)
		return nil, err
	}

	if s.rows != nil {
		s.rows.Invalidate(ctx, asset.CustomerID, asset.Branch)
	}
	s.log.Info("PM event stored", append(ctxutil.LogFields(ctx), "pm_id", event.ID, "asset_id", asset.ID)...)
	return &maintenance.SubmitEventResult{PMID: event.ID, Row: buildRow(asset, event, labels)}, nil
}

// validateChecks keeps submission order and rejects ids outside the asset's
// category or listed twice.
func (s *eventService) validateChecks(a *types.Asset, labels map[int64]map[int64]string, in []maintenance.SubmitCheck) ([]maintenance.StoredCheck, error) {
	var allowed map[int64]string
	if a.CategoryID != nil {
		allowed = labels[*a.CategoryID]
	}
	seen := map[int64]bool{}
	out := make([]maintenance.StoredCheck, 0, len(in))
	for _, c := range in {
		if _, ok := allowed[c.ChecklistID]; !ok {
			return nil, validationError("checklist item %d does not belong to the asset's category", c.ChecklistID)
		}
		if seen[c.ChecklistID] {
			return nil, validationError("checklist item %d listed twice", c.ChecklistID)
		}
		seen[c.ChecklistID] = true
		out = append(out, maintenance.StoredCheck{
			ChecklistID: c.ChecklistID,
			IsOK:        c.IsOK,
			Remarks:     strings.TrimSpace(c.Remarks),
		})
	}
	return out, nil
}
