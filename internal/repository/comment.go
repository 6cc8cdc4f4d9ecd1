package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// ArticleCommentRepository defines interface for flat article comments
type ArticleCommentRepository interface {
	Create(ctx context.Context, comment *models.ArticleComment) error
	GetAnyByID(ctx context.Context, id uint) (*models.ArticleComment, error)
	ListByArticle(ctx context.Context, articleID uint) ([]models.ArticleComment, error)
	CountByArticle(ctx context.Context, articleID uint) (int64, error)
	SetStatus(ctx context.Context, id uint, status bool) error
}

type articleCommentRepository struct {
	*Store[models.ArticleComment]
}

// NewArticleCommentRepository creates a new ArticleCommentRepository
func NewArticleCommentRepository(db *gorm.DB) ArticleCommentRepository {
	return &articleCommentRepository{Store: NewStore[models.ArticleComment](db, "article comment")}
}

func (r *articleCommentRepository) ListByArticle(ctx context.Context, articleID uint) ([]models.ArticleComment, error) {
	var comments []models.ArticleComment
	err := r.DB(ctx).
		Where("article_id = ? AND status = ?", articleID, models.StatusActive).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *articleCommentRepository) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Where("article_id = ? AND status = ?", articleID, models.StatusActive).
		Count(&count).Error
	return count, err
}

// PostCommentRepository defines interface for the community post comment tree
type PostCommentRepository interface {
	Create(ctx context.Context, comment *models.CommunityPostComment) error
	GetAnyByID(ctx context.Context, id uint) (*models.CommunityPostComment, error)
	// ListByPost returns every comment of the post, hidden ones included, oldest first.
	ListByPost(ctx context.Context, postID uint) ([]models.CommunityPostComment, error)
	CountReplies(ctx context.Context, commentID uint) (int64, error)
	SetStatus(ctx context.Context, id uint, status bool) error
}

type postCommentRepository struct {
	*Store[models.CommunityPostComment]
}

// NewPostCommentRepository creates a new PostCommentRepository
func NewPostCommentRepository(db *gorm.DB) PostCommentRepository {
	return &postCommentRepository{Store: NewStore[models.CommunityPostComment](db, "comment")}
}

func (r *postCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.CommunityPostComment, error) {
	var comments []models.CommunityPostComment
	err := r.DB(ctx).
		Where("community_post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// CountReplies counts active direct children only.
func (r *postCommentRepository) CountReplies(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Where("parent_id = ? AND status = ?", commentID, models.StatusActive).
		Count(&count).Error
	return count, err
}
