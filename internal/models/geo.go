package models

import "fmt"

// Continent is the root of the geographic tree.
type Continent struct {
	Base
	Code   string `gorm:"size:16;not null;uniqueIndex" json:"code"`
	Name   string `gorm:"size:128;not null;index" json:"name"`
	Status bool   `gorm:"not null;index" json:"status"`
}

// TableName pins the table for the owner dispatch and migrations.
func (Continent) TableName() string { return "continents" }

// Country belongs to a continent. Codes are globally unique.
type Country struct {
	Base
	Code        string `gorm:"size:16;not null;uniqueIndex" json:"code"`
	Name        string `gorm:"size:128;not null;index" json:"name"`
	ContinentID uint   `gorm:"not null;index" json:"continent_id"`
	Status      bool   `gorm:"not null;index" json:"status"`
}

func (Country) TableName() string { return "countries" }

// Region belongs to a country. Codes are unique within the country.
type Region struct {
	Base
	Code      string `gorm:"size:32;not null;uniqueIndex:idx_region_country_code,priority:2" json:"code"`
	Name      string `gorm:"size:128;not null;index" json:"name"`
	CountryID uint   `gorm:"not null;index;uniqueIndex:idx_region_country_code,priority:1" json:"country_id"`
	Status    bool   `gorm:"not null;index" json:"status"`
}

func (Region) TableName() string { return "regions" }

// District belongs to a region. Codes are unique within the region.
type District struct {
	Base
	Code     string `gorm:"size:32;not null;uniqueIndex:idx_district_region_code,priority:2" json:"code"`
	Name     string `gorm:"size:128;not null;index" json:"name"`
	RegionID uint   `gorm:"not null;index;uniqueIndex:idx_district_region_code,priority:1" json:"region_id"`
	Status   bool   `gorm:"not null;index" json:"status"`
}

func (District) TableName() string { return "districts" }

// Ward belongs to a district. Codes are unique within the district.
type Ward struct {
	Base
	Code       string `gorm:"size:32;not null;uniqueIndex:idx_ward_district_code,priority:2" json:"code"`
	Name       string `gorm:"size:128;not null;index" json:"name"`
	DistrictID uint   `gorm:"not null;index;uniqueIndex:idx_ward_district_code,priority:1" json:"district_id"`
	Status     bool   `gorm:"not null;index" json:"status"`
}

func (Ward) TableName() string { return "wards" }

// GeoLevel names one tier of the hierarchy.
type GeoLevel string

// Geo levels, root first.
const (
	LevelContinent GeoLevel = "continent"
	LevelCountry   GeoLevel = "country"
	LevelRegion    GeoLevel = "region"
	LevelDistrict  GeoLevel = "district"
	LevelWard      GeoLevel = "ward"
)

// GeoLevels is ordered from the root down.
var GeoLevels = []GeoLevel{LevelContinent, LevelCountry, LevelRegion, LevelDistrict, LevelWard}

type geoLevelMeta struct {
	table        string
	parentColumn string
	parent       GeoLevel
	depth        int
}

var geoMeta = map[GeoLevel]geoLevelMeta{
	LevelContinent: {table: "continents", depth: 0},
	LevelCountry:   {table: "countries", parentColumn: "continent_id", parent: LevelContinent, depth: 1},
	LevelRegion:    {table: "regions", parentColumn: "country_id", parent: LevelCountry, depth: 2},
	LevelDistrict:  {table: "districts", parentColumn: "region_id", parent: LevelRegion, depth: 3},
	LevelWard:      {table: "wards", parentColumn: "district_id", parent: LevelDistrict, depth: 4},
}

// ParseGeoLevel validates a level name.
func ParseGeoLevel(s string) (GeoLevel, error) {
	level := GeoLevel(s)
	if _, ok := geoMeta[level]; !ok {
		return "", NewValidationError(fmt.Sprintf("unknown geo level %q", s))
	}
	return level, nil
}

// Table returns the level's table name.
func (l GeoLevel) Table() string { return geoMeta[l].table }

// ParentColumn returns the foreign key column pointing at the parent level; empty for continents.
func (l GeoLevel) ParentColumn() string { return geoMeta[l].parentColumn }

// Parent returns the parent level and false for the root.
func (l GeoLevel) Parent() (GeoLevel, bool) {
	m := geoMeta[l]
	return m.parent, m.parent != ""
}

// Child returns the level directly below l and false for wards.
func (l GeoLevel) Child() (GeoLevel, bool) {
	d := geoMeta[l].depth
	if d+1 >= len(GeoLevels) {
		return "", false
	}
	return GeoLevels[d+1], true
}

// Depth is 0 for continents and 4 for wards.
func (l GeoLevel) Depth() int { return geoMeta[l].depth }

// IsAncestorOf reports whether l sits strictly above other.
func (l GeoLevel) IsAncestorOf(other GeoLevel) bool {
	return l.Depth() < other.Depth()
}

// GeoNode is the level-agnostic projection of a hierarchy row.
type GeoNode struct {
	ID       uint     `json:"id"`
	Level    GeoLevel `json:"level"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	ParentID *uint    `json:"parent_id,omitempty"`
	Status   bool     `json:"status"`
}

// GeoPath is the ancestor chain of a node, nearest first and ending at the continent.
type GeoPath struct {
	Nodes []GeoNode `json:"nodes"`
}

// At returns the node of the given level on the path.
func (p GeoPath) At(level GeoLevel) (GeoNode, bool) {
	for _, n := range p.Nodes {
		if n.Level == level {
			return n, true
		}
	}
	return GeoNode{}, false
}

// GeoScope restricts a search to descendants of one ancestor.
type GeoScope struct {
	Level GeoLevel
	ID    uint
}
