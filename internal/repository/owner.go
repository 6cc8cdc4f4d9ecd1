package repository

import (
	"context"
	"fmt"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

type ownerTable struct {
	table       string
	labelColumn string
}

// ownerTables is the closed dispatch table behind every polymorphic reference.
var ownerTables = map[models.OwnerKind]ownerTable{
	models.OwnerLocation:      {table: "locations", labelColumn: "name"},
	models.OwnerAccommodation: {table: "accommodations", labelColumn: "name"},
	models.OwnerFood:          {table: "foods", labelColumn: "name"},
	models.OwnerArticle:       {table: "articles", labelColumn: "title"},
	models.OwnerOrganizer:     {table: "organizers", labelColumn: "name"},
	models.OwnerEvent:         {table: "events", labelColumn: "name"},
	models.OwnerCommunityPost: {table: "community_posts", labelColumn: "title"},
}

func ownerTableFor(kind models.OwnerKind) (ownerTable, error) {
	t, ok := ownerTables[kind]
	if !ok {
		return ownerTable{}, models.NewValidationErrorKind(models.KindDiscriminator, fmt.Sprintf("unknown reference type %q", kind))
	}
	return t, nil
}

// OwnerRepository looks up the rows named by polymorphic references.
type OwnerRepository interface {
	IsLive(ctx context.Context, ref models.OwnerRef) (bool, error)
	// Resolve returns the live owners among refs. Missing keys are orphans.
	Resolve(ctx context.Context, refs []models.OwnerRef) (map[models.OwnerRef]models.Owner, error)
}

type ownerRepository struct {
	db *gorm.DB
}

// NewOwnerRepository creates a new OwnerRepository
func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) IsLive(ctx context.Context, ref models.OwnerRef) (bool, error) {
	t, err := ownerTableFor(ref.Kind)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Table(t.table).
		Where("id = ? AND status = ?", ref.ID, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}

type ownerRow struct {
	ID    uint
	Label string
}

// Resolve issues one query per distinct kind in refs.
func (r *ownerRepository) Resolve(ctx context.Context, refs []models.OwnerRef) (map[models.OwnerRef]models.Owner, error) {
	byKind := make(map[models.OwnerKind][]uint)
	for _, ref := range refs {
		byKind[ref.Kind] = append(byKind[ref.Kind], ref.ID)
	}

	resolved := make(map[models.OwnerRef]models.Owner, len(refs))
	for kind, ids := range byKind {
		t, ok := ownerTables[kind]
		if !ok {
			// Unknown discriminators cannot resolve; they surface as orphans.
			continue
		}
		var rows []ownerRow
		err := r.db.WithContext(ctx).
			Table(t.table).
			Select("id, "+t.labelColumn+" AS label").
			Where("id IN ? AND status = ?", ids, models.StatusActive).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("resolve %s owners: %w", kind, err)
		}
		for _, row := range rows {
			ref := models.OwnerRef{Kind: kind, ID: row.ID}
			resolved[ref] = models.Owner{Ref: ref, Label: row.Label}
		}
	}
	return resolved, nil
}

// orphanScope keeps rows of table whose (reference_type, reference_id) has no live owner.
func orphanScope(table string, kinds []models.OwnerKind) Scope {
	return func(db *gorm.DB) *gorm.DB {
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, kind := range kinds {
			t := ownerTables[kind]
			clauseSQL := fmt.Sprintf(
				"(%[1]s.reference_type = ? AND NOT EXISTS (SELECT 1 FROM %[2]s o WHERE o.id = %[1]s.reference_id AND o.status = ?))",
				table, t.table)
			if i == 0 {
				cond = cond.Where(clauseSQL, kind, models.StatusActive)
			} else {
				cond = cond.Or(clauseSQL, kind, models.StatusActive)
			}
		}
		return db.Where(cond)
	}
}
