package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// MediaRepository defines interface for media operations
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	GetAnyByID(ctx context.Context, id uint) (*models.Media, error)
	FindByReference(ctx context.Context, ref models.OwnerRef) ([]models.Media, error)
	FindOrphaned(ctx context.Context, kinds []models.OwnerKind) ([]models.Media, error)
	SoftDelete(ctx context.Context, id uint) error
	TotalSize(ctx context.Context, ref models.OwnerRef) (models.ReferenceSize, error)
	SizeByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceSize, error)
}

type mediaRepository struct {
	*Store[models.Media]
}

// NewMediaRepository creates a new MediaRepository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{Store: NewStore[models.Media](db, "media", "file_size")}
}

func (r *mediaRepository) FindByReference(ctx context.Context, ref models.OwnerRef) ([]models.Media, error) {
	var media []models.Media
	err := r.DB(ctx).
		Where("reference_type = ? AND reference_id = ? AND status = ?", ref.Kind, ref.ID, models.StatusActive).
		Order("created_at ASC, id ASC").
		Find(&media).Error
	return media, err
}

func (r *mediaRepository) FindOrphaned(ctx context.Context, kinds []models.OwnerKind) ([]models.Media, error) {
	if len(kinds) == 0 {
		kinds = models.MediaOwnerKinds
	}
	var media []models.Media
	err := r.DB(ctx).
		Where("media.status = ?", models.StatusActive).
		Scopes(orphanScope("media", kinds)).
		Order("media.id ASC").
		Find(&media).Error
	return media, err
}

type sizeRow struct {
	ReferenceType models.OwnerKind
	ReferenceID   uint
	TotalBytes    int64
	Files         int64
}

func (s sizeRow) size() models.ReferenceSize {
	return models.ReferenceSize{
		Ref:        models.OwnerRef{Kind: s.ReferenceType, ID: s.ReferenceID},
		TotalBytes: s.TotalBytes,
		Files:      s.Files,
	}
}

const sizeSelect = "reference_type, reference_id, COALESCE(SUM(file_size), 0) AS total_bytes, COUNT(*) AS files"

func (r *mediaRepository) TotalSize(ctx context.Context, ref models.OwnerRef) (models.ReferenceSize, error) {
	var rows []sizeRow
	err := r.DB(ctx).
		Select(sizeSelect).
		Where("reference_type = ? AND reference_id = ? AND status = ?", ref.Kind, ref.ID, models.StatusActive).
		Group("reference_type, reference_id").
		Scan(&rows).Error
	if err != nil {
		return models.ReferenceSize{}, err
	}
	if len(rows) == 0 {
		return models.ReferenceSize{Ref: ref}, nil
	}
	return rows[0].size(), nil
}

// SizeByKind groups by the full (reference_type, reference_id) pair so owners of
// different kinds never share a bucket.
func (r *mediaRepository) SizeByKind(ctx context.Context, kind models.OwnerKind) ([]models.ReferenceSize, error) {
	var rows []sizeRow
	err := r.DB(ctx).
		Select(sizeSelect).
		Where("reference_type = ? AND status = ?", kind, models.StatusActive).
		Group("reference_type, reference_id").
		Order("total_bytes DESC, reference_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.ReferenceSize, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.size())
	}
	return out, nil
}
