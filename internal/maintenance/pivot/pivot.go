// Package pivot projects aggregated asset summaries onto their category's
// checklist columns.
package pivot

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
)

// Cell is the state of one checklist column for one asset under its current
// snapshot.
type Cell int

const (
	// NotApplicable means the item was not checked in the current snapshot.
	NotApplicable Cell = iota
	Pass
	Fail
)

func (c Cell) String() string {
	switch c {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "-"
	}
}

func (c Cell) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// EventRef is one historical event of an asset with its 1-based position in
// chronological order.
type EventRef struct {
	Ordinal int       `json:"ordinal"`
	PMID    int64     `json:"PM_ID"`
	PMDate  time.Time `json:"PM_Date"`
}

type Row struct {
	Asset        maintenance.Asset `json:"asset"`
	PMCount      int               `json:"pmCount"`
	LatestPMDate *time.Time        `json:"latestPMDate"`
	Ambiguous    bool              `json:"ambiguous,omitempty"`
	Cells        []Cell            `json:"cells"`
	PMRecords    []EventRef        `json:"pmRecords"`
}

type Table struct {
	Category string                        `json:"category"`
	Columns  []maintenance.ChecklistColumn `json:"columns"`
	Rows     []Row                         `json:"rows"`
}

// BuildRows returns one row per asset of the group, in the group's stable
// asset order.
func BuildRows(group *aggregate.CategoryGroup) []Row {
	if group == nil {
		return []Row{}
	}
	summaries := group.Summaries()
	out := make([]Row, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, buildRow(s, group.ChecklistColumns))
	}
	return out
}

// BuildTables builds a table per category in result order.
func BuildTables(res *aggregate.Result) []Table {
	groups := res.Groups()
	out := make([]Table, 0, len(groups))
	for _, g := range groups {
		out = append(out, Table{
			Category: g.Category,
			Columns:  g.ChecklistColumns,
			Rows:     BuildRows(g),
		})
	}
	return out
}

func buildRow(s *aggregate.AssetSummary, columns []maintenance.ChecklistColumn) Row {
	lookup := make(map[int64]bool, len(s.CurrentChecklistResults))
	for _, cr := range s.CurrentChecklistResults {
		lookup[cr.ChecklistID] = cr.IsOK
	}
	cells := make([]Cell, len(columns))
	for i, col := range columns {
		ok, present := lookup[col.ChecklistID]
		switch {
		case !present:
			cells[i] = NotApplicable
		case ok:
			cells[i] = Pass
		default:
			cells[i] = Fail
		}
	}
	return Row{
		Asset:        s.Asset,
		PMCount:      s.PMCount,
		LatestPMDate: s.LatestPMDate,
		Ambiguous:    s.SnapshotAmbiguous,
		Cells:        cells,
		PMRecords:    chronological(s.PMRecords),
	}
}

func chronological(records []maintenance.PMRecord) []EventRef {
	sorted := make([]maintenance.PMRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].PMDate.Before(sorted[b].PMDate)
	})
	out := make([]EventRef, len(sorted))
	for i, r := range sorted {
		out[i] = EventRef{Ordinal: i + 1, PMID: r.PMID, PMDate: r.PMDate}
	}
	return out
}
