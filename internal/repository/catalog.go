package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository is the CRUD surface of points of interest and named lookup entities.
type CatalogRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	GetAnyByID(ctx context.Context, id uint) (*T, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	Find(ctx context.Context, filter models.POIFilter, p models.Pagination) (models.PageResult[T], error)
}

type catalogRepository[T any] struct {
	*Store[T]
	scopes func(models.POIFilter) []Scope
}

func (r *catalogRepository[T]) Find(ctx context.Context, f models.POIFilter, p models.Pagination) (models.PageResult[T], error) {
	return r.Store.Find(ctx, p, r.scopes(f)...)
}

// namedScopes ignores the geo fields of a POIFilter for tables without geo columns.
func namedScopes(f models.POIFilter) []Scope {
	return []Scope{Contains("name", f.Name), EqBool("status", f.Status)}
}

func newCatalog[T any](db *gorm.DB, resource string, scopes func(models.POIFilter) []Scope, sortable ...string) *catalogRepository[T] {
	return &catalogRepository[T]{Store: NewStore[T](db, resource, sortable...), scopes: scopes}
}

func NewAccommodationRepository(db *gorm.DB) CatalogRepository[models.Accommodation] {
	return newCatalog[models.Accommodation](db, "accommodation", POIScopes, "name", "star_rating")
}

func NewLocationRepository(db *gorm.DB) CatalogRepository[models.Location] {
	return newCatalog[models.Location](db, "location", POIScopes, "name")
}

func NewFoodRepository(db *gorm.DB) CatalogRepository[models.Food] {
	return newCatalog[models.Food](db, "food", POIScopes, "name", "price_from")
}

func NewEventRepository(db *gorm.DB) CatalogRepository[models.Event] {
	return newCatalog[models.Event](db, "event", POIScopes, "name", "starts_at")
}

func NewOrganizerRepository(db *gorm.DB) CatalogRepository[models.Organizer] {
	return newCatalog[models.Organizer](db, "organizer", namedScopes, "name")
}

func NewMediaTypeRepository(db *gorm.DB) CatalogRepository[models.MediaType] {
	return newCatalog[models.MediaType](db, "media type", namedScopes, "name")
}

func NewMediaCategoryRepository(db *gorm.DB) CatalogRepository[models.MediaCategory] {
	return newCatalog[models.MediaCategory](db, "media category", namedScopes, "name")
}

func NewArticleCategoryStore(db *gorm.DB) CatalogRepository[models.ArticleCategory] {
	return newCatalog[models.ArticleCategory](db, "article category", namedScopes, "name")
}

func NewArticleTagStore(db *gorm.DB) CatalogRepository[models.ArticleTag] {
	return newCatalog[models.ArticleTag](db, "article tag", namedScopes, "name")
}

func NewPostCategoryStore(db *gorm.DB) CatalogRepository[models.CommunityPostCategory] {
	return newCatalog[models.CommunityPostCategory](db, "community post category", namedScopes, "name")
}

func NewPostTagStore(db *gorm.DB) CatalogRepository[models.CommunityPostTag] {
	return newCatalog[models.CommunityPostTag](db, "community post tag", namedScopes, "name")
}

// RoomRepository adds the per-accommodation listing to the catalog surface.
type RoomRepository interface {
	CatalogRepository[models.Room]
	ListByAccommodation(ctx context.Context, accommodationID uint) ([]models.Room, error)
}

type roomRepository struct {
	*catalogRepository[models.Room]
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{newCatalog[models.Room](db, "room", namedScopes, "name", "price_per_night", "capacity")}
}

func (r *roomRepository) ListByAccommodation(ctx context.Context, accommodationID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.DB(ctx).
		Where("accommodation_id = ? AND status = ?", accommodationID, models.StatusActive).
		Order("name ASC, id ASC").
		Find(&rooms).Error
	return rooms, err
}
