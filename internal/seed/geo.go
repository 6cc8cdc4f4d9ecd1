package seed

import (
	"context"
	_ "embed"
	"fmt"

	"travelcore/internal/models"
	"travelcore/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed data/geo.yaml
var defaultGeoYAML []byte

// GeoEntry is one node of the seed tree. Children sit one level below.
type GeoEntry struct {
	Code     string     `yaml:"code"`
	Name     string     `yaml:"name"`
	Children []GeoEntry `yaml:"children"`
}

// GeoTree is the continent-rooted seed hierarchy.
type GeoTree struct {
	Continents []GeoEntry `yaml:"continents"`
}

// GeoFromYAML parses and checks a seed tree. Every code must be well formed and no
// branch may go below ward level.
func GeoFromYAML(data []byte) (*GeoTree, error) {
	var tree GeoTree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse geo seed: %w", err)
	}
	if len(tree.Continents) == 0 {
		return nil, fmt.Errorf("geo seed has no continents")
	}
	for _, c := range tree.Continents {
		if err := checkEntry(models.LevelContinent, c); err != nil {
			return nil, err
		}
	}
	return &tree, nil
}

// DefaultGeo returns the embedded seed tree.
func DefaultGeo() (*GeoTree, error) {
	return GeoFromYAML(defaultGeoYAML)
}

func checkEntry(level models.GeoLevel, e GeoEntry) error {
	if err := validation.ValidateGeoCode(e.Code); err != nil {
		return fmt.Errorf("%s %q: %w", level, e.Code, err)
	}
	if err := validation.ValidateName("name", e.Name); err != nil {
		return fmt.Errorf("%s %q: %w", level, e.Code, err)
	}
	if len(e.Children) == 0 {
		return nil
	}
	child, ok := level.Child()
	if !ok {
		return fmt.Errorf("%s %q has children below ward level", level, e.Code)
	}
	for _, c := range e.Children {
		if err := checkEntry(child, c); err != nil {
			return err
		}
	}
	return nil
}

// GeoIndex is what SeedGeo created or found, for placing seeded records.
type GeoIndex struct {
	Nodes map[models.GeoLevel]int
	// Leaves holds the full reference set of every ward.
	Leaves []models.GeoRefs
}

// SeedGeo inserts tree, reusing rows that already exist with the same code under the
// same parent. Running it twice leaves the table contents unchanged.
func SeedGeo(ctx context.Context, db *gorm.DB, tree *GeoTree) (*GeoIndex, error) {
	idx := &GeoIndex{Nodes: make(map[models.GeoLevel]int)}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range tree.Continents {
			if err := seedEntry(tx, idx, models.LevelContinent, 0, models.GeoRefs{}, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func seedEntry(tx *gorm.DB, idx *GeoIndex, level models.GeoLevel, parentID uint, refs models.GeoRefs, e GeoEntry) error {
	id, err := firstOrCreateGeo(tx, level, parentID, e)
	if err != nil {
		return fmt.Errorf("seed %s %s: %w", level, e.Code, err)
	}
	idx.Nodes[level]++

	switch level {
	case models.LevelCountry:
		refs.CountryID = &id
	case models.LevelRegion:
		refs.RegionID = &id
	case models.LevelDistrict:
		refs.DistrictID = &id
	case models.LevelWard:
		refs.WardID = &id
		idx.Leaves = append(idx.Leaves, refs)
		return nil
	}

	child, _ := level.Child()
	for _, c := range e.Children {
		if err := seedEntry(tx, idx, child, id, refs, c); err != nil {
			return err
		}
	}
	return nil
}

func firstOrCreateGeo(tx *gorm.DB, level models.GeoLevel, parentID uint, e GeoEntry) (uint, error) {
	switch level {
	case models.LevelContinent:
		row := models.Continent{}
		err := tx.Where(models.Continent{Code: e.Code}).Attrs(models.Continent{Name: e.Name}).FirstOrCreate(&row).Error
		return row.ID, err
	case models.LevelCountry:
		row := models.Country{}
		err := tx.Where(models.Country{Code: e.Code}).Attrs(models.Country{Name: e.Name, ContinentID: parentID}).FirstOrCreate(&row).Error
		return row.ID, err
	case models.LevelRegion:
		row := models.Region{}
		err := tx.Where(models.Region{Code: e.Code, CountryID: parentID}).Attrs(models.Region{Name: e.Name}).FirstOrCreate(&row).Error
		return row.ID, err
	case models.LevelDistrict:
		row := models.District{}
		err := tx.Where(models.District{Code: e.Code, RegionID: parentID}).Attrs(models.District{Name: e.Name}).FirstOrCreate(&row).Error
		return row.ID, err
	case models.LevelWard:
		row := models.Ward{}
		err := tx.Where(models.Ward{Code: e.Code, DistrictID: parentID}).Attrs(models.Ward{Name: e.Name}).FirstOrCreate(&row).Error
		return row.ID, err
	}
	return 0, fmt.Errorf("unknown geo level %q", level)
}
