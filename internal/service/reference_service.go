package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"travelcore/internal/cache"
	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// liveChecker is satisfied by every repository with an Exists(id) over live rows.
type liveChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// ReferenceService attaches media and ratings to polymorphic owners and resolves them back.
type ReferenceService struct {
	owners          repository.OwnerRepository
	media           repository.MediaRepository
	ratings         repository.RatingRepository
	users           liveChecker
	mediaTypes      liveChecker
	mediaCategories liveChecker
}

type AttachMediaInput struct {
	Ref             models.OwnerRef
	URL             string `validate:"notblank,max=2048"`
	FileName        string `validate:"max=255"`
	FileSize        int64  `validate:"min=0"`
	MediaTypeID     *uint
	MediaCategoryID *uint
}

type AttachRatingInput struct {
	Ref     models.OwnerRef
	UserID  uint
	Rating  float64 `validate:"min=0,max=5"`
	Comment string  `validate:"max=2000"`
}

type UpdateRatingInput struct {
	RatingID uint
	UserID   uint
	Rating   *float64 `validate:"omitnil,min=0,max=5"`
	Comment  *string  `validate:"omitnil,max=2000"`
}

func NewReferenceService(
	owners repository.OwnerRepository,
	media repository.MediaRepository,
	ratings repository.RatingRepository,
	users liveChecker,
	mediaTypes liveChecker,
	mediaCategories liveChecker,
) *ReferenceService {
	return &ReferenceService{
		owners:          owners,
		media:           media,
		ratings:         ratings,
		users:           users,
		mediaTypes:      mediaTypes,
		mediaCategories: mediaCategories,
	}
}

func checkKind(kind models.OwnerKind, allowed []models.OwnerKind, what string) error {
	if !kind.AllowedIn(allowed) {
		return models.NewValidationErrorKind(models.KindDiscriminator,
			fmt.Sprintf("%s cannot reference %q", what, kind))
	}
	return nil
}

func (s *ReferenceService) requireLiveOwner(ctx context.Context, ref models.OwnerRef) error {
	live, err := s.owners.IsLive(ctx, ref)
	if err != nil {
		return err
	}
	if !live {
		return models.NewReferentialError(string(ref.Kind), ref.ID)
	}
	return nil
}

func requireLive(ctx context.Context, checker liveChecker, resource string, id uint) error {
	live, err := checker.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !live {
		return models.NewReferentialError(resource, id)
	}
	return nil
}

// validateRatingValue rejects NaN, which slips through the range tags.
func validateRatingValue(v float64) error {
	if math.IsNaN(v) {
		return models.NewValidationError(fmt.Sprintf("rating must be between %.0f and %.0f", models.MinRating, models.MaxRating))
	}
	return nil
}

// AttachMedia records a media file against a live owner.
func (s *ReferenceService) AttachMedia(ctx context.Context, in AttachMediaInput) (media *models.Media, err error) {
	ctx, span := observability.StartSpan(ctx, "ReferenceService.AttachMedia",
		attribute.String("reference.type", string(in.Ref.Kind)), observability.ID("reference.id", in.Ref.ID))
	defer func() { span.End(err) }()

	if err = checkKind(in.Ref.Kind, models.MediaOwnerKinds, "media"); err != nil {
		return nil, err
	}
	in.URL = strings.TrimSpace(in.URL)
	if err = checkInput(in); err != nil {
		return nil, err
	}
	if err = s.requireLiveOwner(ctx, in.Ref); err != nil {
		return nil, err
	}
	if in.MediaTypeID != nil {
		if err = requireLive(ctx, s.mediaTypes, "media type", *in.MediaTypeID); err != nil {
			return nil, err
		}
	}
	if in.MediaCategoryID != nil {
		if err = requireLive(ctx, s.mediaCategories, "media category", *in.MediaCategoryID); err != nil {
			return nil, err
		}
	}

	media = &models.Media{
		ReferenceID:     in.Ref.ID,
		ReferenceType:   in.Ref.Kind,
		URL:             in.URL,
		FileName:        in.FileName,
		FileSize:        in.FileSize,
		MediaTypeID:     in.MediaTypeID,
		MediaCategoryID: in.MediaCategoryID,
	}
	if err = s.media.Create(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// DetachMedia soft-deletes a media record.
func (s *ReferenceService) DetachMedia(ctx context.Context, mediaID uint) error {
	return s.media.SoftDelete(ctx, mediaID)
}

// AttachRating records a live user's rating of a live location, accommodation or food.
func (s *ReferenceService) AttachRating(ctx context.Context, in AttachRatingInput) (rating *models.Rating, err error) {
	ctx, span := observability.StartSpan(ctx, "ReferenceService.AttachRating",
		attribute.String("reference.type", string(in.Ref.Kind)), observability.ID("reference.id", in.Ref.ID))
	defer func() { span.End(err) }()

	if err = checkKind(in.Ref.Kind, models.RatingOwnerKinds, "rating"); err != nil {
		return nil, err
	}
	if err = checkInput(in); err != nil {
		return nil, err
	}
	if err = validateRatingValue(in.Rating); err != nil {
		return nil, err
	}
	if err = requireLive(ctx, s.users, "user", in.UserID); err != nil {
		return nil, err
	}
	if err = s.requireLiveOwner(ctx, in.Ref); err != nil {
		return nil, err
	}

	rating = &models.Rating{
		ReferenceID:   in.Ref.ID,
		ReferenceType: in.Ref.Kind,
		Rating:        in.Rating,
		Comment:       in.Comment,
		UserID:        in.UserID,
	}
	if err = s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}
	cache.InvalidateRatingAverage(ctx, string(in.Ref.Kind), in.Ref.ID)
	return rating, nil
}

func (s *ReferenceService) ownRating(ctx context.Context, ratingID, userID uint) (*models.Rating, error) {
	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.UserID != userID {
		return nil, models.NewValidationError("only the author can change a rating")
	}
	return rating, nil
}

// UpdateRating lets the author change the value or comment of a live rating.
func (s *ReferenceService) UpdateRating(ctx context.Context, in UpdateRatingInput) (*models.Rating, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	rating, err := s.ownRating(ctx, in.RatingID, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Rating != nil {
		if err := validateRatingValue(*in.Rating); err != nil {
			return nil, err
		}
		fields["rating"] = *in.Rating
		rating.Rating = *in.Rating
	}
	if in.Comment != nil {
		fields["comment"] = *in.Comment
		rating.Comment = *in.Comment
	}
	if len(fields) == 0 {
		return rating, nil
	}
	if err := s.ratings.Update(ctx, rating.ID, fields); err != nil {
		return nil, err
	}
	cache.InvalidateRatingAverage(ctx, string(rating.ReferenceType), rating.ReferenceID)
	return rating, nil
}

// DeleteRating soft-deletes the author's rating.
func (s *ReferenceService) DeleteRating(ctx context.Context, ratingID, userID uint) error {
	rating, err := s.ownRating(ctx, ratingID, userID)
	if err != nil {
		return err
	}
	if err := s.ratings.SoftDelete(ctx, rating.ID); err != nil {
		return err
	}
	cache.InvalidateRatingAverage(ctx, string(rating.ReferenceType), rating.ReferenceID)
	return nil
}

// ResolveOwner resolves the owner of one media or rating record. An orphan is a
// successful Resolution, never an error.
func (s *ReferenceService) ResolveOwner(ctx context.Context, record models.Referencer) (models.Resolution, error) {
	out, err := s.ResolveOwners(ctx, []models.OwnerRef{record.Ref()})
	if err != nil {
		return models.Resolution{}, err
	}
	return out[0], nil
}

// ResolveOwners resolves refs in order; one lookup per distinct kind.
func (s *ReferenceService) ResolveOwners(ctx context.Context, refs []models.OwnerRef) (out []models.Resolution, err error) {
	ctx, span := observability.StartSpan(ctx, "ReferenceService.ResolveOwners", attribute.Int("reference.count", len(refs)))
	defer func() { span.End(err) }()

	if len(refs) == 0 {
		return []models.Resolution{}, nil
	}

	unique := make([]models.OwnerRef, 0, len(refs))
	seen := make(map[models.OwnerRef]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		unique = append(unique, ref)
	}

	owners, err := s.owners.Resolve(ctx, unique)
	if err != nil {
		return nil, err
	}

	out = make([]models.Resolution, 0, len(refs))
	for _, ref := range refs {
		owner, ok := owners[ref]
		if !ok {
			observability.OrphanReferences.WithLabelValues(string(ref.Kind)).Inc()
			out = append(out, models.Resolution{Ref: ref, Orphan: true})
			continue
		}
		resolved := owner
		out = append(out, models.Resolution{Ref: ref, Owner: &resolved})
	}
	return out, nil
}

func (s *ReferenceService) FindMediaByReference(ctx context.Context, ref models.OwnerRef) ([]models.Media, error) {
	if err := checkKind(ref.Kind, models.MediaOwnerKinds, "media"); err != nil {
		return nil, err
	}
	return s.media.FindByReference(ctx, ref)
}

func (s *ReferenceService) FindRatingsByReference(ctx context.Context, ref models.OwnerRef) ([]models.Rating, error) {
	if err := checkKind(ref.Kind, models.RatingOwnerKinds, "rating"); err != nil {
		return nil, err
	}
	return s.ratings.FindByReference(ctx, ref)
}

func orphanKinds(kind *models.OwnerKind, allowed []models.OwnerKind, what string) ([]models.OwnerKind, error) {
	if kind == nil {
		return allowed, nil
	}
	if err := checkKind(*kind, allowed, what); err != nil {
		return nil, err
	}
	return []models.OwnerKind{*kind}, nil
}

// FindOrphanedMedia lists live media whose owner is gone; kind narrows the scan.
func (s *ReferenceService) FindOrphanedMedia(ctx context.Context, kind *models.OwnerKind) ([]models.Media, error) {
	kinds, err := orphanKinds(kind, models.MediaOwnerKinds, "media")
	if err != nil {
		return nil, err
	}
	return s.media.FindOrphaned(ctx, kinds)
}

// FindOrphanedRatings lists live ratings whose owner is gone; kind narrows the scan.
func (s *ReferenceService) FindOrphanedRatings(ctx context.Context, kind *models.OwnerKind) ([]models.Rating, error) {
	kinds, err := orphanKinds(kind, models.RatingOwnerKinds, "rating")
	if err != nil {
		return nil, err
	}
	return s.ratings.FindOrphaned(ctx, kinds)
}

// AverageRating averages the live ratings of one owner. The owner itself may be gone.
func (s *ReferenceService) AverageRating(ctx context.Context, ref models.OwnerRef) (models.ReferenceAverage, error) {
	if err := checkKind(ref.Kind, models.RatingOwnerKinds, "rating"); err != nil {
		return models.ReferenceAverage{}, err
	}
	return cache.Aside(ctx, cache.RatingAvgKey(string(ref.Kind), ref.ID), cache.RatingAvgTTL,
		func(ctx context.Context) (models.ReferenceAverage, error) {
			return s.ratings.Average(ctx, ref)
		})
}

func (s *ReferenceService) AverageRatingsByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceAverage, error) {
	if err := checkKind(kind, models.RatingOwnerKinds, "rating"); err != nil {
		return nil, err
	}
	return s.ratings.AveragesByKind(ctx, kind)
}

func (s *ReferenceService) TotalMediaSize(ctx context.Context, ref models.OwnerRef) (models.ReferenceSize, error) {
	if err := checkKind(ref.Kind, models.MediaOwnerKinds, "media"); err != nil {
		return models.ReferenceSize{}, err
	}
	return s.media.TotalSize(ctx, ref)
}

func (s *ReferenceService) MediaSizeByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceSize, error) {
	if err := checkKind(kind, models.MediaOwnerKinds, "media"); err != nil {
		return nil, err
	}
	return s.media.SizeByKind(ctx, kind)
}
