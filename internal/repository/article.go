package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository defines interface for article operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	Find(ctx context.Context, filter models.ArticleFilter, p models.Pagination) (models.PageResult[models.Article], error)
	IncrementViewCount(ctx context.Context, id uint) error
	MostViewed(ctx context.Context, limit int) ([]models.Article, error)
}

type articleRepository struct {
	store *Store[models.Article]
}

// NewArticleRepository creates a new ArticleRepository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{store: NewStore[models.Article](db, "article", "title", "view_count")}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.store.Create(ctx, article)
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return r.store.GetByID(ctx, id)
}

func (r *articleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.store.Exists(ctx, id)
}

func (r *articleRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.store.Update(ctx, id, fields)
}

func (r *articleRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.store.SoftDelete(ctx, id)
}

func (r *articleRepository) Find(ctx context.Context, f models.ArticleFilter, p models.Pagination) (models.PageResult[models.Article], error) {
	return r.store.Find(ctx, p,
		EqUint("author_id", f.AuthorID),
		EqUint("country_id", f.CountryID),
		EqUint("region_id", f.RegionID),
		EqUint("district_id", f.DistrictID),
		EqUint("ward_id", f.WardID),
		Contains("title", f.Title),
		EqBool("status", f.Status),
		joinedWith("article_article_categories", "article_id", "article_category_id", f.CategoryID),
		joinedWith("article_article_tags", "article_id", "article_tag_id", f.TagID),
	)
}

// IncrementViewCount bumps view_count in a single UPDATE. Hooks are skipped so a view
// does not count as an edit.
func (r *articleRepository) IncrementViewCount(ctx context.Context, id uint) error {
	res := r.store.DB(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("article", id)
	}
	return nil
}

func (r *articleRepository) MostViewed(ctx context.Context, limit int) ([]models.Article, error) {
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.DefaultPageSize
	}
	var articles []models.Article
	err := r.store.DB(ctx).
		Where("status = ?", models.StatusActive).
		Order("view_count DESC, id ASC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// joinedWith keeps owners that have a join row pointing at targetID.
func joinedWith(joinTable, ownerColumn, targetColumn string, targetID *uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if targetID == nil {
			return db
		}
		return db.Where("id IN (SELECT "+ownerColumn+" FROM "+joinTable+" WHERE "+targetColumn+" = ?)", *targetID)
	}
}
