package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"travelcore/internal/models"
	"travelcore/internal/repository"
	"travelcore/internal/validation"
)

// GeoRefValidator checks the optional direct geo references of a record.
type GeoRefValidator interface {
	ValidateRefs(ctx context.Context, refs models.GeoRefs) error
}

type geoLocated interface {
	GeoLocation() models.GeoRefs
}

// POIService guards the geo references of one point-of-interest table.
type POIService[T geoLocated] struct {
	repo      repository.CatalogRepository[T]
	geo       GeoRefValidator
	validate  func(ctx context.Context, entity *T) error
	updatable map[string]bool
}

// NewPOIService builds a POIService; columns lists what Update may change besides the geo refs.
func NewPOIService[T geoLocated](repo repository.CatalogRepository[T], geo GeoRefValidator, validate func(context.Context, *T) error, columns ...string) *POIService[T] {
	updatable := make(map[string]bool, len(columns)+len(models.GeoRefColumns))
	for _, col := range append(columns, models.GeoRefColumns...) {
		updatable[col] = true
	}
	return &POIService[T]{repo: repo, geo: geo, validate: validate, updatable: updatable}
}

func (s *POIService[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if s.validate != nil {
		if err := s.validate(ctx, entity); err != nil {
			return nil, err
		}
	}
	if err := s.geo.ValidateRefs(ctx, (*entity).GeoLocation()); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *POIService[T]) Get(ctx context.Context, id uint) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies fields to a live row. The row as it would be stored is checked with
// the same rules as Create before anything is written.
func (s *POIService[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) (*T, error) {
	for col := range fields {
		if !s.updatable[col] {
			return nil, models.NewValidationError(fmt.Sprintf("%s cannot be updated", col))
		}
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, touched, err := (*current).GeoLocation().Merge(fields)
	if err != nil {
		return nil, err
	}
	if touched {
		merged.Apply(fields)
	}
	next, err := withFields(*current, fields)
	if err != nil {
		return nil, err
	}
	if s.validate != nil {
		if err := s.validate(ctx, next); err != nil {
			return nil, err
		}
	}
	if touched {
		if err := s.geo.ValidateRefs(ctx, merged); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// withFields returns a copy of row with fields decoded onto it by their json names,
// which match the column names of the catalog models.
func withFields[T any](row T, fields map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("invalid update: %v", err))
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("invalid update: %v", err))
	}
	return &row, nil
}

func (s *POIService[T]) SoftDelete(ctx context.Context, id uint) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *POIService[T]) Find(ctx context.Context, filter models.POIFilter, p models.Pagination) (models.PageResult[T], error) {
	return s.repo.Find(ctx, filter, p)
}

// checkInput applies the validate tags of an input struct.
func checkInput(in interface{}) error {
	if err := validation.Struct(in); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func requireName(field, name string) error {
	if err := validation.ValidateName(field, name); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// CatalogService groups the point-of-interest tables with their dependent rooms and organizers.
type CatalogService struct {
	Accommodations *POIService[models.Accommodation]
	Locations      *POIService[models.Location]
	Foods          *POIService[models.Food]
	Events         *POIService[models.Event]

	accommodations repository.CatalogRepository[models.Accommodation]
	rooms          repository.RoomRepository
	organizers     repository.CatalogRepository[models.Organizer]
}

func NewCatalogService(
	geo GeoRefValidator,
	accommodations repository.CatalogRepository[models.Accommodation],
	rooms repository.RoomRepository,
	locations repository.CatalogRepository[models.Location],
	foods repository.CatalogRepository[models.Food],
	organizers repository.CatalogRepository[models.Organizer],
	events repository.CatalogRepository[models.Event],
) *CatalogService {
	s := &CatalogService{
		accommodations: accommodations,
		rooms:          rooms,
		organizers:     organizers,
	}
	s.Accommodations = NewPOIService[models.Accommodation](accommodations, geo, func(_ context.Context, a *models.Accommodation) error {
		if a.StarRating < 0 || a.StarRating > 5 {
			return models.NewValidationError("star rating must be between 0 and 5")
		}
		return requireName("name", a.Name)
	}, "name", "description", "address", "star_rating", "latitude", "longitude")
	s.Locations = NewPOIService[models.Location](locations, geo, func(_ context.Context, l *models.Location) error {
		return requireName("name", l.Name)
	}, "name", "description", "address", "latitude", "longitude")
	s.Foods = NewPOIService[models.Food](foods, geo, func(_ context.Context, f *models.Food) error {
		if f.PriceTo > 0 && f.PriceTo < f.PriceFrom {
			return models.NewValidationError("price range is inverted")
		}
		return requireName("name", f.Name)
	}, "name", "description", "price_from", "price_to")
	s.Events = NewPOIService[models.Event](events, geo, s.validateEvent,
		"name", "description", "organizer_id", "starts_at", "ends_at")
	return s
}

func (s *CatalogService) validateEvent(ctx context.Context, e *models.Event) error {
	if err := requireName("name", e.Name); err != nil {
		return err
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return models.NewValidationError("event ends before it starts")
	}
	if e.OrganizerID != nil {
		return requireLive(ctx, s.organizers, "organizer", *e.OrganizerID)
	}
	return nil
}

func (s *CatalogService) CreateOrganizer(ctx context.Context, o *models.Organizer) (*models.Organizer, error) {
	o.Name = strings.TrimSpace(o.Name)
	if err := requireName("name", o.Name); err != nil {
		return nil, err
	}
	if o.Email != "" {
		if err := validation.ValidateEmail(o.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if err := s.organizers.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *CatalogService) GetOrganizer(ctx context.Context, id uint) (*models.Organizer, error) {
	return s.organizers.GetByID(ctx, id)
}

func (s *CatalogService) DeleteOrganizer(ctx context.Context, id uint) error {
	return s.organizers.SoftDelete(ctx, id)
}

// CreateRoom adds a room to a live accommodation.
func (s *CatalogService) CreateRoom(ctx context.Context, r *models.Room) (*models.Room, error) {
	if err := requireName("name", r.Name); err != nil {
		return nil, err
	}
	if r.Capacity < 0 || r.PricePerNight < 0 {
		return nil, models.NewValidationError("capacity and price cannot be negative")
	}
	if err := requireLive(ctx, s.accommodations, "accommodation", r.AccommodationID); err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) ListRooms(ctx context.Context, accommodationID uint) ([]models.Room, error) {
	if _, err := s.accommodations.GetByID(ctx, accommodationID); err != nil {
		return nil, err
	}
	return s.rooms.ListByAccommodation(ctx, accommodationID)
}

func (s *CatalogService) DeleteRoom(ctx context.Context, id uint) error {
	return s.rooms.SoftDelete(ctx, id)
}
