// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"fmt"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the CRUD and paged search shared by every soft-deletable entity.
type Store[T any] struct {
	db       *gorm.DB
	resource string
	sortable map[string]struct{}
	log      *observability.RepoLogger
}

// NewStore creates a Store for T. sortable whitelists the columns Find may order by;
// anything else falls back to id.
func NewStore[T any](db *gorm.DB, resource string, sortable ...string) *Store[T] {
	allowed := map[string]struct{}{"id": {}, "created_at": {}, "updated_at": {}}
	for _, col := range sortable {
		allowed[col] = struct{}{}
	}
	table := resource
	if stmt := (&gorm.Statement{DB: db}); stmt.Parse(new(T)) == nil {
		table = stmt.Schema.Table
	}
	return &Store[T]{
		db:       db,
		resource: resource,
		sortable: allowed,
		log:      observability.NewRepoLogger(table),
	}
}

// WithTx returns a copy of the store bound to tx.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	c := *s
	c.db = tx
	return &c
}

// DB returns a context-bound session on the entity's table.
func (s *Store[T]) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

// Create inserts entity as a live row.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		s.log.LogError(ctx, err, "create")
		return translate(err, s.resource, "new")
	}
	s.log.LogCreate(ctx, nil)
	return nil
}

// GetByID returns a live row or NOT_FOUND.
func (s *Store[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).Where("status = ?", models.StatusActive).First(&entity, id).Error
	if err != nil {
		return nil, translate(err, s.resource, id)
	}
	return &entity, nil
}

// GetAnyByID returns the row regardless of status.
func (s *Store[T]) GetAnyByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err, s.resource, id)
	}
	return &entity, nil
}

// Exists reports whether id names a live row.
func (s *Store[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.DB(ctx).Where("id = ? AND status = ?", id, models.StatusActive).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies fields to the row with id. Unknown ids yield NOT_FOUND.
func (s *Store[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.DB(ctx).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		s.log.LogError(ctx, res.Error, "update")
		return translate(res.Error, s.resource, id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(s.resource, id)
	}
	s.log.LogUpdate(ctx, map[string]any{"id": id, "fields": len(fields)})
	return nil
}

// SetStatus moves the row between live and soft-deleted.
func (s *Store[T]) SetStatus(ctx context.Context, id uint, status bool) error {
	res := s.DB(ctx).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		s.log.LogError(ctx, res.Error, "set_status")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(s.resource, id)
	}
	s.log.LogUpdate(ctx, map[string]any{"id": id, "status": status})
	return nil
}

// SoftDelete marks the row inactive. The row is never removed.
func (s *Store[T]) SoftDelete(ctx context.Context, id uint) error {
	if err := s.SetStatus(ctx, id, models.StatusInactive); err != nil {
		return err
	}
	s.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

// Find returns one page of rows matching scopes.
func (s *Store[T]) Find(ctx context.Context, p models.Pagination, scopes ...Scope) (models.PageResult[T], error) {
	p = p.Normalize()

	var total int64
	if err := s.DB(ctx).Scopes(scopes...).Count(&total).Error; err != nil {
		return models.PageResult[T]{}, fmt.Errorf("count %s: %w", s.resource, err)
	}

	var items []T
	err := s.DB(ctx).
		Scopes(scopes...).
		Order(s.orderBy(p)).
		Offset(p.Offset()).
		Limit(p.Size).
		Find(&items).Error
	if err != nil {
		return models.PageResult[T]{}, fmt.Errorf("find %s: %w", s.resource, err)
	}

	return models.NewPageResult(items, total, p), nil
}

func (s *Store[T]) orderBy(p models.Pagination) clause.OrderByColumn {
	column := "id"
	if _, ok := s.sortable[p.SortField]; ok {
		column = p.SortField
	}
	return clause.OrderByColumn{
		Column: clause.Column{Table: clause.CurrentTable, Name: column},
		Desc:   p.SortDirection == models.SortDesc,
	}
}
