// Package dashboard holds the state behind the maintenance dashboard: the
// rows last fetched for a customer and branch, their aggregation, the search
// text and the export selection.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
	"github.com/yungbote/assetpm-backend/internal/maintenance/pivot"
	"github.com/yungbote/assetpm-backend/internal/maintenance/selection"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

// ErrStale is returned by Load when a newer Load superseded it. The board
// keeps showing the newer data.
var ErrStale = errors.New("stale row response discarded")

type RowSource interface {
	ListRows(ctx context.Context, customerID, branch string) ([]maintenance.Row, error)
}

type Filter struct {
	CustomerID string
	Branch     string
}

func (f Filter) Valid() bool {
	return strings.TrimSpace(f.CustomerID) != "" && strings.TrimSpace(f.Branch) != ""
}

type Board struct {
	src  RowSource
	log  *logger.Logger
	opts aggregate.Options

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	filter Filter
	rows   []maintenance.Row
	search string
	result *aggregate.Result
	err    error
	sel    *selection.State
}

func NewBoard(src RowSource, baseLog *logger.Logger, opts aggregate.Options) *Board {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Board{
		src:    src,
		log:    baseLog.With("component", "DashboardBoard"),
		opts:   opts,
		result: aggregate.Aggregate(nil, opts),
		sel:    selection.New(),
	}
}

// Load fetches rows for f and replaces the displayed data. A Load started
// later cancels this one; if this response still arrives after that, it is
// dropped and ErrStale is returned.
func (b *Board) Load(ctx context.Context, f Filter) error {
	if !f.Valid() {
		return fmt.Errorf("customer and branch are required")
	}

	b.mu.Lock()
	b.token++
	tok := b.token
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	rows, err := b.src.ListRows(fetchCtx, f.CustomerID, f.Branch)

	b.mu.Lock()
	defer b.mu.Unlock()
	if tok != b.token {
		b.log.Debug("Dropping stale rows", "customer_id", f.CustomerID, "branch", f.Branch)
		return ErrStale
	}
	b.cancel = nil
	b.filter = f
	if err != nil {
		b.err = err
		b.rows = nil
		b.result = aggregate.Aggregate(nil, b.opts)
		b.log.Warn("Fetching rows failed", "customer_id", f.CustomerID, "branch", f.Branch, "error", err)
		return fmt.Errorf("fetch rows: %w", err)
	}
	b.err = nil
	b.rows = rows
	b.rebuildLocked()
	return nil
}

// SetSearch narrows the aggregation to assets matching text.
func (b *Board) SetSearch(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = text
	b.rebuildLocked()
}

// AppendRow adds a freshly submitted event to the current rows without a
// refetch.
func (b *Board) AppendRow(row maintenance.Row) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, row)
	b.rebuildLocked()
}

func (b *Board) rebuildLocked() {
	rows := b.rows
	if strings.TrimSpace(b.search) != "" {
		rows = make([]maintenance.Row, 0, len(b.rows))
		for _, r := range b.rows {
			if r.Asset.Matches(b.search) {
				rows = append(rows, r)
			}
		}
	}
	b.result = aggregate.Aggregate(rows, b.opts)
	if rep := b.result.Report; rep.Skipped > 0 {
		b.log.Warn("Skipped rows without asset id", "skipped", rep.Skipped, "rows", rep.Rows)
	}
	if n := len(b.result.Report.AmbiguousAssets); n > 0 {
		b.log.Warn("Assets with ambiguous current snapshot", "count", n)
	}
}

// Err is the page-level error of the last applied Load, or nil.
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Board) Filter() Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

func (b *Board) Result() *aggregate.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

func (b *Board) Tables() []pivot.Table {
	return pivot.BuildTables(b.Result())
}

func (b *Board) Candidates() []selection.Candidate {
	return selection.CandidatesFrom(b.Result())
}

// Selection returns the board's selection. It survives reloads and must only
// be used from the goroutine driving the board.
func (b *Board) Selection() *selection.State {
	return b.sel
}
