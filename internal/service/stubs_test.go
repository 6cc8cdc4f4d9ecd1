package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"travelcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveSet is a liveChecker over a fixed set of live ids.
type liveSet map[uint]bool

func (l liveSet) Exists(_ context.Context, id uint) (bool, error) {
	return l[id], nil
}

// geoRepoStub is a stub for repository.GeoRepository.
type geoRepoStub struct {
	createContinentFn func(context.Context, *models.Continent) error
	createCountryFn   func(context.Context, *models.Country) error
	createRegionFn    func(context.Context, *models.Region) error
	createDistrictFn  func(context.Context, *models.District) error
	createWardFn      func(context.Context, *models.Ward) error
	getFn             func(context.Context, models.GeoLevel, uint) (*models.GeoNode, error)
	getAnyFn          func(context.Context, models.GeoLevel, uint) (*models.GeoNode, error)
	isLiveFn          func(context.Context, models.GeoLevel, uint) (bool, error)
	resolvePathFn     func(context.Context, models.GeoLevel, uint) (*models.GeoPath, error)
	listChildrenFn    func(context.Context, models.GeoLevel, uint) ([]models.GeoNode, error)
	searchFn          func(context.Context, models.GeoLevel, string, *models.GeoScope, int) ([]models.GeoNode, error)
	findFn            func(context.Context, models.GeoLevel, models.GeoFilter, models.Pagination) (models.PageResult[models.GeoNode], error)
	renameFn          func(context.Context, models.GeoLevel, uint, string) error
	setStatusFn       func(context.Context, models.GeoLevel, uint, bool) error
}

func (s *geoRepoStub) CreateContinent(ctx context.Context, c *models.Continent) error {
	return s.createContinentFn(ctx, c)
}
func (s *geoRepoStub) CreateCountry(ctx context.Context, c *models.Country) error {
	return s.createCountryFn(ctx, c)
}
func (s *geoRepoStub) CreateRegion(ctx context.Context, r *models.Region) error {
	return s.createRegionFn(ctx, r)
}
func (s *geoRepoStub) CreateDistrict(ctx context.Context, d *models.District) error {
	return s.createDistrictFn(ctx, d)
}
func (s *geoRepoStub) CreateWard(ctx context.Context, w *models.Ward) error {
	return s.createWardFn(ctx, w)
}
func (s *geoRepoStub) Get(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	return s.getFn(ctx, level, id)
}
func (s *geoRepoStub) GetAny(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
	if s.getAnyFn == nil {
		return s.getFn(ctx, level, id)
	}
	return s.getAnyFn(ctx, level, id)
}
func (s *geoRepoStub) IsLive(ctx context.Context, level models.GeoLevel, id uint) (bool, error) {
	return s.isLiveFn(ctx, level, id)
}
func (s *geoRepoStub) ResolvePath(ctx context.Context, level models.GeoLevel, id uint) (*models.GeoPath, error) {
	return s.resolvePathFn(ctx, level, id)
}
func (s *geoRepoStub) ListChildren(ctx context.Context, level models.GeoLevel, parentID uint) ([]models.GeoNode, error) {
	return s.listChildrenFn(ctx, level, parentID)
}
func (s *geoRepoStub) Search(ctx context.Context, level models.GeoLevel, part string, scope *models.GeoScope, limit int) ([]models.GeoNode, error) {
	return s.searchFn(ctx, level, part, scope, limit)
}
func (s *geoRepoStub) Find(ctx context.Context, level models.GeoLevel, f models.GeoFilter, p models.Pagination) (models.PageResult[models.GeoNode], error) {
	return s.findFn(ctx, level, f, p)
}
func (s *geoRepoStub) Rename(ctx context.Context, level models.GeoLevel, id uint, name string) error {
	return s.renameFn(ctx, level, id, name)
}
func (s *geoRepoStub) SetStatus(ctx context.Context, level models.GeoLevel, id uint, status bool) error {
	return s.setStatusFn(ctx, level, id, status)
}

func noopGeoRepo() *geoRepoStub {
	return &geoRepoStub{
		createContinentFn: func(_ context.Context, c *models.Continent) error { c.ID = 1; return nil },
		createCountryFn:   func(_ context.Context, c *models.Country) error { c.ID = 1; return nil },
		createRegionFn:    func(_ context.Context, r *models.Region) error { r.ID = 1; return nil },
		createDistrictFn:  func(_ context.Context, d *models.District) error { d.ID = 1; return nil },
		createWardFn:      func(_ context.Context, w *models.Ward) error { w.ID = 1; return nil },
		getFn: func(_ context.Context, level models.GeoLevel, id uint) (*models.GeoNode, error) {
			return &models.GeoNode{ID: id, Level: level, Status: true}, nil
		},
		isLiveFn: func(_ context.Context, _ models.GeoLevel, _ uint) (bool, error) { return true, nil },
		resolvePathFn: func(_ context.Context, _ models.GeoLevel, _ uint) (*models.GeoPath, error) {
			return &models.GeoPath{}, nil
		},
		listChildrenFn: func(_ context.Context, _ models.GeoLevel, _ uint) ([]models.GeoNode, error) { return nil, nil },
		searchFn: func(_ context.Context, _ models.GeoLevel, _ string, _ *models.GeoScope, _ int) ([]models.GeoNode, error) {
			return nil, nil
		},
		findFn: func(_ context.Context, _ models.GeoLevel, _ models.GeoFilter, _ models.Pagination) (models.PageResult[models.GeoNode], error) {
			return models.PageResult[models.GeoNode]{}, nil
		},
		renameFn:    func(_ context.Context, _ models.GeoLevel, _ uint, _ string) error { return nil },
		setStatusFn: func(_ context.Context, _ models.GeoLevel, _ uint, _ bool) error { return nil },
	}
}

// ownerRepoStub is a stub for repository.OwnerRepository backed by a set of live owners.
type ownerRepoStub struct {
	live       map[models.OwnerRef]string
	resolveErr error
}

func (s *ownerRepoStub) IsLive(_ context.Context, ref models.OwnerRef) (bool, error) {
	_, ok := s.live[ref]
	return ok, nil
}

func (s *ownerRepoStub) Resolve(_ context.Context, refs []models.OwnerRef) (map[models.OwnerRef]models.Owner, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	out := make(map[models.OwnerRef]models.Owner)
	for _, ref := range refs {
		if label, ok := s.live[ref]; ok {
			out[ref] = models.Owner{Ref: ref, Label: label}
		}
	}
	return out, nil
}

// mediaRepoStub is a stub for repository.MediaRepository.
type mediaRepoStub struct {
	createFn     func(context.Context, *models.Media) error
	softDeleteFn func(context.Context, uint) error
	orphanedFn   func(context.Context, []models.OwnerKind) ([]models.Media, error)
}

func (s *mediaRepoStub) Create(ctx context.Context, m *models.Media) error { return s.createFn(ctx, m) }
func (s *mediaRepoStub) GetByID(_ context.Context, id uint) (*models.Media, error) {
	return &models.Media{Base: models.Base{ID: id}}, nil
}
func (s *mediaRepoStub) GetAnyByID(ctx context.Context, id uint) (*models.Media, error) {
	return s.GetByID(ctx, id)
}
func (s *mediaRepoStub) FindByReference(_ context.Context, _ models.OwnerRef) ([]models.Media, error) {
	return nil, nil
}
func (s *mediaRepoStub) FindOrphaned(ctx context.Context, kinds []models.OwnerKind) ([]models.Media, error) {
	return s.orphanedFn(ctx, kinds)
}
func (s *mediaRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *mediaRepoStub) TotalSize(_ context.Context, ref models.OwnerRef) (models.ReferenceSize, error) {
	return models.ReferenceSize{Ref: ref}, nil
}
func (s *mediaRepoStub) SizeByKind(_ context.Context, _ models.OwnerKind) ([]models.ReferenceSize, error) {
	return nil, nil
}

func noopMediaRepo() *mediaRepoStub {
	return &mediaRepoStub{
		createFn:     func(_ context.Context, m *models.Media) error { m.ID = 1; return nil },
		softDeleteFn: func(_ context.Context, _ uint) error { return nil },
		orphanedFn:   func(_ context.Context, _ []models.OwnerKind) ([]models.Media, error) { return nil, nil },
	}
}

// ratingRepoStub is a stub for repository.RatingRepository.
type ratingRepoStub struct {
	createFn     func(context.Context, *models.Rating) error
	getByIDFn    func(context.Context, uint) (*models.Rating, error)
	updateFn     func(context.Context, uint, map[string]interface{}) error
	softDeleteFn func(context.Context, uint) error
	averageFn    func(context.Context, models.OwnerRef) (models.ReferenceAverage, error)
}

func (s *ratingRepoStub) Create(ctx context.Context, r *models.Rating) error {
	return s.createFn(ctx, r)
}
func (s *ratingRepoStub) GetByID(ctx context.Context, id uint) (*models.Rating, error) {
	return s.getByIDFn(ctx, id)
}
func (s *ratingRepoStub) GetAnyByID(ctx context.Context, id uint) (*models.Rating, error) {
	return s.getByIDFn(ctx, id)
}
func (s *ratingRepoStub) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.updateFn(ctx, id, fields)
}
func (s *ratingRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *ratingRepoStub) FindByReference(_ context.Context, _ models.OwnerRef) ([]models.Rating, error) {
	return nil, nil
}
func (s *ratingRepoStub) FindByUser(_ context.Context, _ uint) ([]models.Rating, error) {
	return nil, nil
}
func (s *ratingRepoStub) FindOrphaned(_ context.Context, _ []models.OwnerKind) ([]models.Rating, error) {
	return nil, nil
}
func (s *ratingRepoStub) Average(ctx context.Context, ref models.OwnerRef) (models.ReferenceAverage, error) {
	return s.averageFn(ctx, ref)
}
func (s *ratingRepoStub) AveragesByKind(_ context.Context, _ models.OwnerKind) ([]models.ReferenceAverage, error) {
	return nil, nil
}

func noopRatingRepo() *ratingRepoStub {
	return &ratingRepoStub{
		createFn: func(_ context.Context, r *models.Rating) error { r.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Rating, error) {
			return &models.Rating{Base: models.Base{ID: id}}, nil
		},
		updateFn:     func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		softDeleteFn: func(_ context.Context, _ uint) error { return nil },
		averageFn: func(_ context.Context, ref models.OwnerRef) (models.ReferenceAverage, error) {
			return models.ReferenceAverage{Ref: ref}, nil
		},
	}
}

// postCommentRepoStub keeps comments in memory.
type postCommentRepoStub struct {
	comments  map[uint]*models.CommunityPostComment
	nextID    uint
	statusErr error
}

func newPostCommentRepoStub(seed ...models.CommunityPostComment) *postCommentRepoStub {
	s := &postCommentRepoStub{comments: map[uint]*models.CommunityPostComment{}}
	for i := range seed {
		c := seed[i]
		s.comments[c.ID] = &c
		if c.ID > s.nextID {
			s.nextID = c.ID
		}
	}
	return s
}

func (s *postCommentRepoStub) Create(_ context.Context, c *models.CommunityPostComment) error {
	s.nextID++
	c.ID = s.nextID
	c.Status = true
	c.CreatedAt = time.Now()
	stored := *c
	s.comments[c.ID] = &stored
	return nil
}

func (s *postCommentRepoStub) GetAnyByID(_ context.Context, id uint) (*models.CommunityPostComment, error) {
	c, ok := s.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("comment", id)
	}
	out := *c
	return &out, nil
}

// ListByPost returns comments in id order, which matches creation order here.
func (s *postCommentRepoStub) ListByPost(_ context.Context, postID uint) ([]models.CommunityPostComment, error) {
	var out []models.CommunityPostComment
	for id := uint(1); id <= s.nextID; id++ {
		if c, ok := s.comments[id]; ok && c.CommunityPostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *postCommentRepoStub) CountReplies(_ context.Context, commentID uint) (int64, error) {
	var n int64
	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == commentID && c.Status {
			n++
		}
	}
	return n, nil
}

func (s *postCommentRepoStub) SetStatus(_ context.Context, id uint, status bool) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	c, ok := s.comments[id]
	if !ok {
		return models.NewNotFoundError("comment", id)
	}
	c.Status = status
	return nil
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertValidationKind asserts a VALIDATION_ERROR of the given kind.
func assertValidationKind(t *testing.T, err error, kind models.ValidationKind) {
	t.Helper()
	assertValidationError(t, err)
	assert.Equal(t, kind, models.ValidationKindOf(err))
}

func uintPtr(v uint) *uint { return &v }
