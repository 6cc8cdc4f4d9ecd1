package models

import (
	"fmt"
	"reflect"
	"time"
)

// GeoRefs are denormalized shortcuts into the hierarchy. Writes through the catalog
// and content services require the deepest ref to be live and every shallower ref to
// be its ancestor.
type GeoRefs struct {
	CountryID  *uint `gorm:"index" json:"country_id,omitempty"`
	RegionID   *uint `gorm:"index" json:"region_id,omitempty"`
	DistrictID *uint `gorm:"index" json:"district_id,omitempty"`
	WardID     *uint `gorm:"index" json:"ward_id,omitempty"`
}

// GeoLocation exposes the embedded refs of any record that carries them.
func (g GeoRefs) GeoLocation() GeoRefs { return g }

// GeoRefColumns are the columns of GeoRefs, shallowest first.
var GeoRefColumns = []string{"country_id", "region_id", "district_id", "ward_id"}

func (g *GeoRefs) column(col string) **uint {
	switch col {
	case "country_id":
		return &g.CountryID
	case "region_id":
		return &g.RegionID
	case "district_id":
		return &g.DistrictID
	case "ward_id":
		return &g.WardID
	}
	return nil
}

// Merge returns g with the geo columns present in fields applied. Values may be nil or
// any integer kind, directly or behind a pointer; anything else, or a negative id, is a
// field validation error. touched is false when fields holds no geo column.
func (g GeoRefs) Merge(fields map[string]interface{}) (merged GeoRefs, touched bool, err error) {
	merged = g
	for _, col := range GeoRefColumns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		touched = true
		id, err := refID(v)
		if err != nil {
			return g, true, NewValidationError(fmt.Sprintf("%s: %v", col, err))
		}
		*merged.column(col) = id
	}
	return merged, touched, nil
}

// Apply writes the refs of g back into fields for every geo column fields already holds,
// so the stored values match what Merge validated.
func (g GeoRefs) Apply(fields map[string]interface{}) {
	for _, col := range GeoRefColumns {
		if _, ok := fields[col]; ok {
			fields[col] = *g.column(col)
		}
	}
}

func refID(v interface{}) (*uint, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	var id uint
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return nil, fmt.Errorf("id %d is negative", rv.Int())
		}
		id = uint(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		id = uint(rv.Uint())
	default:
		return nil, fmt.Errorf("unsupported id type %T", v)
	}
	return &id, nil
}

// Accommodation is a bookable place to stay.
type Accommodation struct {
	Base
	GeoRefs
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Address     string  `gorm:"size:512" json:"address"`
	StarRating  int     `json:"star_rating"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      bool    `gorm:"not null;index" json:"status"`
}

func (Accommodation) TableName() string { return "accommodations" }

// Room belongs to an accommodation.
type Room struct {
	Base
	AccommodationID uint    `gorm:"not null;index" json:"accommodation_id"`
	Name            string  `gorm:"size:255;not null" json:"name"`
	Capacity        int     `json:"capacity"`
	PricePerNight   float64 `json:"price_per_night"`
	Status          bool    `gorm:"not null;index" json:"status"`
}

func (Room) TableName() string { return "rooms" }

// Location is a sight or point of interest.
type Location struct {
	Base
	GeoRefs
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Address     string  `gorm:"size:512" json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      bool    `gorm:"not null;index" json:"status"`
}

func (Location) TableName() string { return "locations" }

// Food is a dish or eatery.
type Food struct {
	Base
	GeoRefs
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	PriceFrom   float64 `json:"price_from"`
	PriceTo     float64 `json:"price_to"`
	Status      bool    `gorm:"not null;index" json:"status"`
}

func (Food) TableName() string { return "foods" }

// Organizer runs events.
type Organizer struct {
	Base
	Name    string `gorm:"size:255;not null;index" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:64" json:"phone"`
	Website string `gorm:"size:512" json:"website"`
	Status  bool   `gorm:"not null;index" json:"status"`
}

func (Organizer) TableName() string { return "organizers" }

// Event is a dated happening, optionally run by an organizer.
type Event struct {
	Base
	GeoRefs
	Name        string     `gorm:"size:255;not null;index" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	OrganizerID *uint      `gorm:"index" json:"organizer_id,omitempty"`
	StartsAt    time.Time  `gorm:"index" json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Status      bool       `gorm:"not null;index" json:"status"`
}

func (Event) TableName() string { return "events" }
