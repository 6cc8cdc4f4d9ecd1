// Package service holds the invariants the repositories do not enforce on their own.
package service

import (
	"context"
	"strings"

	"travelcore/internal/cache"
	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"
	"travelcore/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const defaultSearchLimit = 50

type GeoService struct {
	repo repository.GeoRepository
}

type CreateGeoNodeInput struct {
	Level    models.GeoLevel
	ParentID uint
	Code     string `validate:"required,max=16"`
	Name     string `validate:"notblank,max=255"`
}

func NewGeoService(repo repository.GeoRepository) *GeoService {
	return &GeoService{repo: repo}
}

// Create inserts a node under a live parent. Continents take no parent.
func (s *GeoService) Create(ctx context.Context, in CreateGeoNodeInput) (node *models.GeoNode, err error) {
	ctx, span := observability.StartSpan(ctx, "GeoService.Create", attribute.String("geo.level", string(in.Level)))
	defer func() { span.End(err) }()

	if _, err = models.ParseGeoLevel(string(in.Level)); err != nil {
		return nil, err
	}
	in.Code = strings.TrimSpace(in.Code)
	if err = checkInput(in); err != nil {
		return nil, err
	}
	if vErr := validation.ValidateGeoCode(in.Code); vErr != nil {
		return nil, models.NewValidationError(vErr.Error())
	}
	in.Name = strings.TrimSpace(in.Name)

	if parent, ok := in.Level.Parent(); ok {
		live, liveErr := s.repo.IsLive(ctx, parent, in.ParentID)
		if liveErr != nil {
			return nil, liveErr
		}
		if !live {
			return nil, models.NewReferentialError(string(parent), in.ParentID)
		}
	}

	var id uint
	switch in.Level {
	case models.LevelContinent:
		row := &models.Continent{Code: in.Code, Name: in.Name}
		err = s.repo.CreateContinent(ctx, row)
		id = row.ID
	case models.LevelCountry:
		row := &models.Country{Code: in.Code, Name: in.Name, ContinentID: in.ParentID}
		err = s.repo.CreateCountry(ctx, row)
		id = row.ID
	case models.LevelRegion:
		row := &models.Region{Code: in.Code, Name: in.Name, CountryID: in.ParentID}
		err = s.repo.CreateRegion(ctx, row)
		id = row.ID
	case models.LevelDistrict:
		row := &models.District{Code: in.Code, Name: in.Name, RegionID: in.ParentID}
		err = s.repo.CreateDistrict(ctx, row)
		id = row.ID
	case models.LevelWard:
		row := &models.Ward{Code: in.Code, Name: in.Name, DistrictID: in.ParentID}
		err = s.repo.CreateWard(ctx, row)
		id = row.ID
	}
	if err != nil {
		return nil, err
	}
	span.Set(observability.ID("geo.id", id))

	created := &models.GeoNode{ID: id, Level: in.Level, Code: in.Code, Name: in.Name, Status: models.StatusActive}
	if in.Level != models.LevelContinent {
		parentID := in.ParentID
		created.ParentID = &parentID
	}
	return created, nil
}

func (s *GeoService) Get(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	if _, err := models.ParseGeoLevel(string(level)); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, level, id)
}

// GetAny also returns soft-deleted nodes, for restoring them.
func (s *GeoService) GetAny(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	if _, err := models.ParseGeoLevel(string(level)); err != nil {
		return nil, err
	}
	return s.repo.GetAny(ctx, level, id)
}

// ResolvePath returns the ancestor chain of a node, served from cache when possible.
func (s *GeoService) ResolvePath(ctx context.Context, level models.GeoLevel, id uint) (path *models.GeoPath, err error) {
	ctx, span := observability.StartSpan(ctx, "GeoService.ResolvePath",
		attribute.String("geo.level", string(level)), observability.ID("geo.id", id))
	defer func() { span.End(err) }()

	if _, err = models.ParseGeoLevel(string(level)); err != nil {
		return nil, err
	}
	return cache.Aside(ctx, cache.GeoPathKey(string(level), id), cache.GeoPathTTL,
		func(ctx context.Context) (*models.GeoPath, error) {
			return s.repo.ResolvePath(ctx, level, id)
		})
}

// ListChildren returns the live children of a node ordered by name.
func (s *GeoService) ListChildren(ctx context.Context, parentLevel models.GeoLevel, parentID uint) ([]models.GeoNode, error) {
	if _, err := models.ParseGeoLevel(string(parentLevel)); err != nil {
		return nil, err
	}
	if _, ok := parentLevel.Child(); !ok {
		return nil, models.NewValidationErrorKind(models.KindHierarchy, "wards have no children")
	}
	return s.repo.ListChildren(ctx, parentLevel, parentID)
}

// Search matches names case-insensitively, optionally below one ancestor.
func (s *GeoService) Search(ctx context.Context, level models.GeoLevel, namePart string, scope *models.GeoScope) (nodes []models.GeoNode, err error) {
	ctx, span := observability.StartSpan(ctx, "GeoService.Search", attribute.String("geo.level", string(level)))
	defer func() { span.End(err) }()

	if _, err = models.ParseGeoLevel(string(level)); err != nil {
		return nil, err
	}
	namePart = strings.TrimSpace(namePart)
	if namePart == "" {
		return nil, models.NewValidationError("search term is required")
	}
	if scope != nil && !scope.Level.IsAncestorOf(level) {
		return nil, models.NewValidationErrorKind(models.KindHierarchy, "search scope must be an ancestor level")
	}
	return s.repo.Search(ctx, level, namePart, scope, defaultSearchLimit)
}

func (s *GeoService) Find(ctx context.Context, level models.GeoLevel, filter models.GeoFilter, p models.Pagination) (models.PageResult[models.GeoNode], error) {
	if _, err := models.ParseGeoLevel(string(level)); err != nil {
		return models.PageResult[models.GeoNode]{}, err
	}
	return s.repo.Find(ctx, level, filter, p)
}

func (s *GeoService) Rename(ctx context.Context, level models.GeoLevel, id uint, name string) error {
	if vErr := validation.ValidateName("name", name); vErr != nil {
		return models.NewValidationError(vErr.Error())
	}
	if err := s.repo.Rename(ctx, level, id, strings.TrimSpace(name)); err != nil {
		return err
	}
	cache.InvalidateGeoPaths(ctx)
	return nil
}

// SoftDelete marks a node inactive. Its children keep their rows; new children are refused.
func (s *GeoService) SoftDelete(ctx context.Context, level models.GeoLevel, id uint) error {
	if err := s.repo.SetStatus(ctx, level, id, models.StatusInactive); err != nil {
		return err
	}
	cache.InvalidateGeoPaths(ctx)
	return nil
}

func (s *GeoService) Restore(ctx context.Context, level models.GeoLevel, id uint) error {
	if err := s.repo.SetStatus(ctx, level, id, models.StatusActive); err != nil {
		return err
	}
	cache.InvalidateGeoPaths(ctx)
	return nil
}

// ValidateRefs checks the optional direct geo references of a record: the deepest one must be
// live and every shallower one must lie on its ancestor chain.
func (s *GeoService) ValidateRefs(ctx context.Context, refs models.GeoRefs) error {
	type ref struct {
		level models.GeoLevel
		id    *uint
	}
	given := []ref{
		{models.LevelWard, refs.WardID},
		{models.LevelDistrict, refs.DistrictID},
		{models.LevelRegion, refs.RegionID},
		{models.LevelCountry, refs.CountryID},
	}

	var deepest *ref
	for i := range given {
		if given[i].id != nil {
			deepest = &given[i]
			break
		}
	}
	if deepest == nil {
		return nil
	}

	live, err := s.repo.IsLive(ctx, deepest.level, *deepest.id)
	if err != nil {
		return err
	}
	if !live {
		return models.NewReferentialError(string(deepest.level), *deepest.id)
	}

	path, err := s.repo.ResolvePath(ctx, deepest.level, *deepest.id)
	if err != nil {
		return err
	}
	for _, r := range given {
		if r.id == nil || r.level == deepest.level {
			continue
		}
		node, ok := path.At(r.level)
		if !ok || node.ID != *r.id {
			return models.NewValidationErrorKind(models.KindHierarchy,
				string(r.level)+" does not contain "+string(deepest.level))
		}
	}
	return nil
}
