package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// CommunityPostRepository defines interface for community post operations
type CommunityPostRepository interface {
	Create(ctx context.Context, post *models.CommunityPost) error
	GetByID(ctx context.Context, id uint) (*models.CommunityPost, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	Find(ctx context.Context, filter models.CommunityPostFilter, p models.Pagination) (models.PageResult[models.CommunityPost], error)
}

type communityPostRepository struct {
	store *Store[models.CommunityPost]
}

// NewCommunityPostRepository creates a new CommunityPostRepository
func NewCommunityPostRepository(db *gorm.DB) CommunityPostRepository {
	return &communityPostRepository{store: NewStore[models.CommunityPost](db, "community post", "title")}
}

func (r *communityPostRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	return r.store.Create(ctx, post)
}

func (r *communityPostRepository) GetByID(ctx context.Context, id uint) (*models.CommunityPost, error) {
	return r.store.GetByID(ctx, id)
}

func (r *communityPostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *communityPostRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.store.Update(ctx, id, fields)
}

func (r *communityPostRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.store.SoftDelete(ctx, id)
}

func (r *communityPostRepository) Find(ctx context.Context, f models.CommunityPostFilter, p models.Pagination) (models.PageResult[models.CommunityPost], error) {
	return r.store.Find(ctx, p,
		EqUint("user_id", f.UserID),
		Contains("title", f.Title),
		EqBool("status", f.Status),
		joinedWith("community_post_community_post_categories", "community_post_id", "community_post_category_id", f.CategoryID),
		joinedWith("community_post_community_post_tags", "community_post_id", "community_post_tag_id", f.TagID),
	)
}
