package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// RatingRepository defines interface for rating operations
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id uint) (*models.Rating, error)
	GetAnyByID(ctx context.Context, id uint) (*models.Rating, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	FindByReference(ctx context.Context, ref models.OwnerRef) ([]models.Rating, error)
	FindByUser(ctx context.Context, userID uint) ([]models.Rating, error)
	FindOrphaned(ctx context.Context, kinds []models.OwnerKind) ([]models.Rating, error)
	Average(ctx context.Context, ref models.OwnerRef) (models.ReferenceAverage, error)
	AveragesByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceAverage, error)
}

type ratingRepository struct {
	*Store[models.Rating]
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{Store: NewStore[models.Rating](db, "rating", "rating")}
}

// FindByReference lists live ratings regardless of whether the owner still resolves.
func (r *ratingRepository) FindByReference(ctx context.Context, ref models.OwnerRef) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.DB(ctx).
		Where("reference_type = ? AND reference_id = ? AND status = ?", ref.Kind, ref.ID, models.StatusActive).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) FindByUser(ctx context.Context, userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.DB(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) FindOrphaned(ctx context.Context, kinds []models.OwnerKind) ([]models.Rating, error) {
	if len(kinds) == 0 {
		kinds = models.RatingOwnerKinds
	}
	var ratings []models.Rating
	err := r.DB(ctx).
		Where("ratings.status = ?", models.StatusActive).
		Scopes(orphanScope("ratings", kinds)).
		Order("ratings.id ASC").
		Find(&ratings).Error
	return ratings, err
}

type averageRow struct {
	ReferenceType models.OwnerKind
	ReferenceID   uint
	Average       float64
	Count         int64
}

func (a averageRow) average() models.ReferenceAverage {
	return models.ReferenceAverage{
		Ref:     models.OwnerRef{Kind: a.ReferenceType, ID: a.ReferenceID},
		Average: a.Average,
		Count:   a.Count,
	}
}

const averageSelect = "reference_type, reference_id, COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count"

func (r *ratingRepository) Average(ctx context.Context, ref models.OwnerRef) (models.ReferenceAverage, error) {
	var rows []averageRow
	err := r.DB(ctx).
		Select(averageSelect).
		Where("reference_type = ? AND reference_id = ? AND status = ?", ref.Kind, ref.ID, models.StatusActive).
		Group("reference_type, reference_id").
		Scan(&rows).Error
	if err != nil {
		return models.ReferenceAverage{}, err
	}
	if len(rows) == 0 {
		return models.ReferenceAverage{Ref: ref}, nil
	}
	return rows[0].average(), nil
}

func (r *ratingRepository) AveragesByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceAverage, error) {
	var rows []averageRow
	err := r.DB(ctx).
		Select(averageSelect).
		Where("reference_type = ? AND status = ?", kind, models.StatusActive).
		Group("reference_type, reference_id").
		Order("average DESC, reference_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.ReferenceAverage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.average())
	}
	return out, nil
}
