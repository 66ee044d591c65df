// Package aggregate reduces a flat stream of (asset, PM event) rows into
// per-category asset summaries with a single current checklist snapshot, and
// resolves each category's checklist columns from the data itself.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
)

// UncategorizedName groups rows that carry no category.
const UncategorizedName = "Uncategorized"

// TieBreak decides which of two events with the same PM_Date supplies the
// current checklist snapshot.
type TieBreak int

const (
	// TieFirstWins keeps the first-processed event (strict greater-than).
	TieFirstWins TieBreak = iota
	// TieLastWins lets a later-processed event with an equal date replace it.
	TieLastWins
	// TieFlagAmbiguous keeps the first-processed event and marks the summary.
	TieFlagAmbiguous
)

func (t TieBreak) String() string {
	switch t {
	case TieLastWins:
		return "last"
	case TieFlagAmbiguous:
		return "flag"
	default:
		return "first"
	}
}

func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first-wins":
		return TieFirstWins, nil
	case "last", "last-wins":
		return TieLastWins, nil
	case "flag", "ambiguous", "reject":
		return TieFlagAmbiguous, nil
	}
	return TieFirstWins, fmt.Errorf("unknown tie-break policy %q", s)
}

type Options struct {
	TieBreak TieBreak
}

type AssetSummary struct {
	maintenance.Asset
	PMCount      int
	LatestPMDate *time.Time
	// PMRecords lists every real event in the order encountered.
	PMRecords               []maintenance.PMRecord
	CurrentChecklistResults []maintenance.ChecklistResult
	// SnapshotAmbiguous is set under TieFlagAmbiguous when another event shares
	// LatestPMDate.
	SnapshotAmbiguous bool
}

type CategoryGroup struct {
	Category         string
	ChecklistColumns []maintenance.ChecklistColumn

	assets  map[int64]*AssetSummary
	order   []int64
	columns map[int64]struct{}
}

func newCategoryGroup(name string) *CategoryGroup {
	return &CategoryGroup{
		Category:         name,
		ChecklistColumns: []maintenance.ChecklistColumn{},
		assets:           map[int64]*AssetSummary{},
		columns:          map[int64]struct{}{},
	}
}

// Asset returns the summary for id, or nil.
func (g *CategoryGroup) Asset(id int64) *AssetSummary {
	if g == nil {
		return nil
	}
	return g.assets[id]
}

// Summaries returns the group's assets in first-encounter order.
func (g *CategoryGroup) Summaries() []*AssetSummary {
	if g == nil {
		return nil
	}
	out := make([]*AssetSummary, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.assets[id])
	}
	return out
}

func (g *CategoryGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

type Report struct {
	Rows            int
	Skipped         int
	AmbiguousAssets []int64
}

type Result struct {
	Report Report

	groups map[string]*CategoryGroup
	order  []string
}

func (r *Result) Group(category string) *CategoryGroup {
	if r == nil {
		return nil
	}
	return r.groups[category]
}

// Categories returns category names in first-encounter order.
func (r *Result) Categories() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

func (r *Result) Groups() []*CategoryGroup {
	if r == nil {
		return nil
	}
	out := make([]*CategoryGroup, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.groups[name])
	}
	return out
}

// Aggregate processes rows in input order. It never fails: rows without an
// asset id (Asset.ID == 0, which includes a literal Asset_ID of 0) are
// skipped and counted, missing categories fall back to UncategorizedName.
func Aggregate(rows []maintenance.Row, opts Options) *Result {
	res := &Result{groups: map[string]*CategoryGroup{}}

	for i := range rows {
		row := &rows[i]
		res.Report.Rows++
		if row.Asset.ID == 0 {
			res.Report.Skipped++
			continue
		}

		name := strings.TrimSpace(row.Category)
		if name == "" {
			name = UncategorizedName
		}
		group, ok := res.groups[name]
		if !ok {
			group = newCategoryGroup(name)
			res.groups[name] = group
			res.order = append(res.order, name)
		}

		summary, seen := group.assets[row.Asset.ID]
		switch {
		case !seen:
			group.assets[row.Asset.ID] = seed(row)
			group.order = append(group.order, row.Asset.ID)
		case row.Event != nil:
			apply(summary, row, opts.TieBreak)
		}

		for _, cr := range row.ChecklistResults {
			if _, dup := group.columns[cr.ChecklistID]; dup {
				continue
			}
			group.columns[cr.ChecklistID] = struct{}{}
			group.ChecklistColumns = append(group.ChecklistColumns, maintenance.ChecklistColumn{
				ChecklistID: cr.ChecklistID,
				CheckItem:   cr.CheckItem,
			})
		}
	}

	for _, name := range res.order {
		group := res.groups[name]
		sort.SliceStable(group.ChecklistColumns, func(a, b int) bool {
			return group.ChecklistColumns[a].ChecklistID < group.ChecklistColumns[b].ChecklistID
		})
		for _, id := range group.order {
			if group.assets[id].SnapshotAmbiguous {
				res.Report.AmbiguousAssets = append(res.Report.AmbiguousAssets, id)
			}
		}
	}
	return res
}

func seed(row *maintenance.Row) *AssetSummary {
	s := &AssetSummary{
		Asset:                   row.Asset,
		PMRecords:               []maintenance.PMRecord{},
		CurrentChecklistResults: []maintenance.ChecklistResult{},
	}
	if row.Event == nil {
		return s
	}
	date := row.Event.PMDate
	s.PMCount = 1
	s.PMRecords = append(s.PMRecords, *row.Event)
	s.LatestPMDate = &date
	s.CurrentChecklistResults = copyResults(row.ChecklistResults)
	return s
}

// apply folds a real event into an existing summary. Only a strictly newer
// date replaces the snapshot unless the tie-break policy says otherwise.
func apply(s *AssetSummary, row *maintenance.Row, tie TieBreak) {
	s.PMCount++
	s.PMRecords = append(s.PMRecords, *row.Event)

	date := row.Event.PMDate
	newer := s.LatestPMDate == nil || date.After(*s.LatestPMDate)
	equal := s.LatestPMDate != nil && date.Equal(*s.LatestPMDate)
	if equal && tie == TieLastWins {
		newer = true
	}
	if newer {
		s.LatestPMDate = &date
		s.CurrentChecklistResults = copyResults(row.ChecklistResults)
		s.SnapshotAmbiguous = false
		return
	}
	if equal && tie == TieFlagAmbiguous {
		s.SnapshotAmbiguous = true
	}
}

func copyResults(in []maintenance.ChecklistResult) []maintenance.ChecklistResult {
	out := make([]maintenance.ChecklistResult, len(in))
	copy(out, in)
	return out
}
