// Package selection tracks which assets, and which of their historical PM
// events, are chosen for export.
package selection

import (
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/aggregate"
)

// Candidate is an asset offered for selection together with every event known
// for it. The event list bounds what TogglePMEvent will accept.
type Candidate struct {
	Asset   maintenance.Asset
	Records []maintenance.PMRecord
}

// CandidatesFrom lists every aggregated asset in category then asset order.
func CandidatesFrom(res *aggregate.Result) []Candidate {
	var out []Candidate
	for _, g := range res.Groups() {
		for _, s := range g.Summaries() {
			out = append(out, Candidate{Asset: s.Asset, Records: s.PMRecords})
		}
	}
	return out
}

// FilterAvailable returns the candidates whose tag id, item name or serial
// number contains search, ignoring case.
func FilterAvailable(search string, candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Asset.Matches(search) {
			out = append(out, c)
		}
	}
	return out
}

// AssetEvents is one selected asset and its chosen PM ids in the order they
// were toggled on.
type AssetEvents struct {
	Asset maintenance.Asset
	PMIDs []int64
}

type entry struct {
	asset   maintenance.Asset
	allowed map[int64]struct{}
	chosen  []int64
}

func (e *entry) index(pmID int64) int {
	for i, id := range e.chosen {
		if id == pmID {
			return i
		}
	}
	return -1
}

// State is the selection of one session. The zero value is ready to use.
// It is not safe for concurrent use.
type State struct {
	entries []*entry
}

func New() *State { return &State{} }

func (s *State) find(assetID int64) (int, *entry) {
	for i, e := range s.entries {
		if e.asset.ID == assetID {
			return i, e
		}
	}
	return -1, nil
}

// AddAsset appends asset unless it is already selected. records are the
// asset's known events; only those may later be toggled.
func (s *State) AddAsset(asset maintenance.Asset, records []maintenance.PMRecord) bool {
	if _, e := s.find(asset.ID); e != nil {
		return false
	}
	allowed := make(map[int64]struct{}, len(records))
	for _, r := range records {
		allowed[r.PMID] = struct{}{}
	}
	s.entries = append(s.entries, &entry{asset: asset, allowed: allowed})
	return true
}

// RemoveAsset drops the asset together with its chosen events.
func (s *State) RemoveAsset(assetID int64) bool {
	i, e := s.find(assetID)
	if e == nil {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// TogglePMEvent adds pmID to the asset's chosen events, or removes it when
// already chosen. It reports whether anything changed.
func (s *State) TogglePMEvent(assetID, pmID int64) bool {
	_, e := s.find(assetID)
	if e == nil {
		return false
	}
	if _, ok := e.allowed[pmID]; !ok {
		return false
	}
	if i := e.index(pmID); i >= 0 {
		e.chosen = append(e.chosen[:i], e.chosen[i+1:]...)
		return true
	}
	e.chosen = append(e.chosen, pmID)
	return true
}

func (s *State) TotalSelectedEvents() int {
	n := 0
	for _, e := range s.entries {
		n += len(e.chosen)
	}
	return n
}

func (s *State) Has(assetID int64) bool {
	_, e := s.find(assetID)
	return e != nil
}

// Assets returns the selected assets in insertion order.
func (s *State) Assets() []maintenance.Asset {
	out := make([]maintenance.Asset, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.asset)
	}
	return out
}

// SelectedEvents returns a copy of the asset's chosen PM ids, or nil when the
// asset is not selected.
func (s *State) SelectedEvents(assetID int64) []int64 {
	_, e := s.find(assetID)
	if e == nil {
		return nil
	}
	return append([]int64{}, e.chosen...)
}

func (s *State) Events() []AssetEvents {
	out := make([]AssetEvents, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, AssetEvents{Asset: e.asset, PMIDs: append([]int64{}, e.chosen...)})
	}
	return out
}

func (s *State) Clear() { s.entries = nil }
