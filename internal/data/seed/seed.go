// Package seed loads YAML fixtures of categories, checklist definitions,
// assets and PM events for local development.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/data/repos"
	types "github.com/yungbote/assetpm-backend/internal/domain"
	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/platform/dbctx"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

type Fixture struct {
	Categories []CategoryFixture `yaml:"categories"`
	Assets     []AssetFixture    `yaml:"assets"`
}

type CategoryFixture struct {
	Name      string             `yaml:"name"`
	Checklist []ChecklistFixture `yaml:"checklist"`
}

type ChecklistFixture struct {
	Item string `yaml:"item"`
	Long string `yaml:"long"`
}

type AssetFixture struct {
	Tag        string         `yaml:"tag"`
	Item       string         `yaml:"item"`
	Serial     string         `yaml:"serial"`
	Category   string         `yaml:"category"`
	CustomerID int64          `yaml:"customer_id"`
	Branch     string         `yaml:"branch"`
	Recipient  string         `yaml:"recipient"`
	Department string         `yaml:"department"`
	Events     []EventFixture `yaml:"events"`
}

type EventFixture struct {
	Date    string         `yaml:"date"`
	Remarks string         `yaml:"remarks"`
	Checks  []CheckFixture `yaml:"checks"`
}

// CheckFixture refers to a checklist definition by its item name within the
// asset's category.
type CheckFixture struct {
	Item    string `yaml:"item"`
	OK      bool   `yaml:"ok"`
	Remarks string `yaml:"remarks"`
}

func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

type Summary struct {
	Categories int
	Checklist  int
	Assets     int
	Events     int
}

type Loader struct {
	tx         dbctx.TxRunner
	log        *logger.Logger
	categories repos.CategoryRepo
	checklist  repos.ChecklistDefinitionRepo
	assets     repos.AssetRepo
	events     repos.PMEventRepo
}

func NewLoader(db *gorm.DB, baseLog *logger.Logger) *Loader {
	return &Loader{
		tx:         dbctx.NewTxRunner(db),
		log:        baseLog.With("component", "SeedLoader"),
		categories: repos.NewCategoryRepo(db, baseLog),
		checklist:  repos.NewChecklistDefinitionRepo(db, baseLog),
		assets:     repos.NewAssetRepo(db, baseLog),
		events:     repos.NewPMEventRepo(db, baseLog),
	}
}

// Load writes f in one transaction. Categories and checklist items that
// already exist by name are reused; assets and events are always inserted.
func (l *Loader) Load(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary
	err := l.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cats := map[string]*types.Category{}
		items := map[string]map[string]int64{}

		for _, cf := range f.Categories {
			cat, created, err := l.ensureCategory(dbc, cf.Name)
			if err != nil {
				return err
			}
			if created {
				sum.Categories++
			}
			cats[cat.Name] = cat
			known, n, err := l.ensureChecklist(dbc, cat.ID, cf.Checklist)
			if err != nil {
				return err
			}
			sum.Checklist += n
			items[cat.Name] = known
		}

		for _, af := range f.Assets {
			asset := &types.Asset{
				TagID:         strings.TrimSpace(af.Tag),
				ItemName:      af.Item,
				SerialNumber:  af.Serial,
				RecipientName: af.Recipient,
				Department:    af.Department,
				CustomerID:    af.CustomerID,
				Branch:        strings.TrimSpace(af.Branch),
			}
			if asset.TagID == "" || asset.CustomerID <= 0 || asset.Branch == "" {
				return fmt.Errorf("asset %q: tag, customer_id and branch are required", af.Tag)
			}
			catName := strings.TrimSpace(af.Category)
			if catName != "" {
				cat, ok := cats[catName]
				if !ok {
					return fmt.Errorf("asset %q: unknown category %q", af.Tag, catName)
				}
				id := cat.ID
				asset.CategoryID = &id
			}
			created, err := l.assets.Create(dbc, []*types.Asset{asset})
			if err != nil {
				return fmt.Errorf("create asset %q: %w", af.Tag, err)
			}
			sum.Assets++

			for _, ef := range af.Events {
				ev, err := buildEvent(created[0].ID, ef, items[catName])
				if err != nil {
					return fmt.Errorf("asset %q: %w", af.Tag, err)
				}
				if _, err := l.events.Create(dbc, []*types.PMEvent{ev}); err != nil {
					return fmt.Errorf("create pm event for %q: %w", af.Tag, err)
				}
				sum.Events++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	l.log.Info("Fixture loaded", "categories", sum.Categories, "checklist", sum.Checklist, "assets", sum.Assets, "events", sum.Events)
	return sum, nil
}

func (l *Loader) ensureCategory(dbc dbctx.Context, name string) (*types.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("category name required")
	}
	existing, err := l.categories.GetByName(dbc, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	created, err := l.categories.Create(dbc, []*types.Category{{Name: name}})
	if err != nil {
		return nil, false, fmt.Errorf("create category %q: %w", name, err)
	}
	return created[0], true, nil
}

func (l *Loader) ensureChecklist(dbc dbctx.Context, categoryID int64, fixtures []ChecklistFixture) (map[string]int64, int, error) {
	defs, err := l.checklist.ListByCategory(dbc, categoryID)
	if err != nil {
		return nil, 0, err
	}
	known := make(map[string]int64, len(defs)+len(fixtures))
	for _, d := range defs {
		known[d.CheckItem] = d.ID
	}
	var missing []*types.ChecklistDefinition
	for _, cf := range fixtures {
		item := strings.TrimSpace(cf.Item)
		if item == "" {
			return nil, 0, fmt.Errorf("checklist item name required")
		}
		if _, ok := known[item]; ok {
			continue
		}
		known[item] = 0
		missing = append(missing, &types.ChecklistDefinition{CategoryID: categoryID, CheckItem: item, CheckItemLong: cf.Long})
	}
	if len(missing) == 0 {
		return known, 0, nil
	}
	created, err := l.checklist.Create(dbc, missing)
	if err != nil {
		return nil, 0, fmt.Errorf("create checklist: %w", err)
	}
	for _, d := range created {
		known[d.CheckItem] = d.ID
	}
	return known, len(created), nil
}

func buildEvent(assetID int64, ef EventFixture, items map[string]int64) (*types.PMEvent, error) {
	date := maintenance.ParseDate(ef.Date)
	if date.IsZero() {
		return nil, fmt.Errorf("invalid event date %q", ef.Date)
	}
	checks := make([]maintenance.StoredCheck, 0, len(ef.Checks))
	for _, c := range ef.Checks {
		id, ok := items[strings.TrimSpace(c.Item)]
		if !ok || id == 0 {
			return nil, fmt.Errorf("unknown checklist item %q", c.Item)
		}
		checks = append(checks, maintenance.StoredCheck{ChecklistID: id, IsOK: c.OK, Remarks: c.Remarks})
	}
	raw, err := maintenance.EncodeChecks(checks)
	if err != nil {
		return nil, err
	}
	return &types.PMEvent{AssetID: assetID, PMDate: date, Remarks: ef.Remarks, ChecklistResults: raw}, nil
}
