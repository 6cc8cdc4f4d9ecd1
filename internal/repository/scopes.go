package repository

import (
	"strings"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// Scope narrows a query; nil-valued filter fields produce no-op scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Live restricts a query to rows whose status is active.
func Live(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", models.StatusActive)
	}
}

// EqUint adds column = v when v is set.
func EqUint(column string, v *uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(column+" = ?", *v)
	}
}

// EqBool adds column = v when v is set.
func EqBool(column string, v *bool) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(column+" = ?", *v)
	}
}

// EqString adds column = v when v is set.
func EqString(column string, v *string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil {
			return db
		}
		return db.Where(column+" = ?", *v)
	}
}

// Contains adds a case-insensitive partial match on column when v is set.
func Contains(column string, v *string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if v == nil || strings.TrimSpace(*v) == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?"+likeEscape, likePattern(*v))
	}
}

// likeEscape pairs with likePattern so user input never acts as a wildcard.
const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func likePattern(part string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(part))) + "%"
}

// POIScopes applies a POIFilter to a point-of-interest table.
func POIScopes(f models.POIFilter) []Scope {
	return []Scope{
		EqUint("country_id", f.CountryID),
		EqUint("region_id", f.RegionID),
		EqUint("district_id", f.DistrictID),
		EqUint("ward_id", f.WardID),
		Contains("name", f.Name),
		EqBool("status", f.Status),
	}
}
