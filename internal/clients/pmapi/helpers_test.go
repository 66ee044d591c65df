package pmapi

import (
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/maintenance/selection"
)

func selectionWith(pmID int64) *selection.State {
	s := selection.New()
	s.AddAsset(maintenance.Asset{ID: 1}, []maintenance.PMRecord{{PMID: pmID}})
	s.TogglePMEvent(1, pmID)
	return s
}
