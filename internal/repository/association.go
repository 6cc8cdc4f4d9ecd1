package repository

import (
	"context"
	"fmt"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JoinSpec describes an identified join entity between an owner table and a target table.
type JoinSpec struct {
	JoinTable    string
	OwnerColumn  string
	TargetColumn string
	OwnerTable   string
	TargetTable  string
}

// Join specs for the four content associations.
var (
	ArticleCategoryJoin = JoinSpec{"article_article_categories", "article_id", "article_category_id", "articles", "article_categories"}
	ArticleTagJoin      = JoinSpec{"article_article_tags", "article_id", "article_tag_id", "articles", "article_tags"}
	PostCategoryJoin    = JoinSpec{"community_post_community_post_categories", "community_post_id", "community_post_category_id", "community_posts", "community_post_categories"}
	PostTagJoin         = JoinSpec{"community_post_community_post_tags", "community_post_id", "community_post_tag_id", "community_posts", "community_post_tags"}
)

// AssociationRepository manages join rows of type J linking owners to targets of type T.
type AssociationRepository[J, T any] interface {
	Spec() JoinSpec
	OwnerLive(ctx context.Context, ownerID uint) (bool, error)
	TargetLive(ctx context.Context, targetID uint) (bool, error)
	// Attach inserts the pair unless present; created is false when it already existed.
	Attach(ctx context.Context, ownerID, targetID uint) (created bool, err error)
	Detach(ctx context.Context, ownerID, targetID uint) (bool, error)
	DetachAllForOwner(ctx context.Context, ownerID uint) (int64, error)
	CountForOwner(ctx context.Context, ownerID uint) (int64, error)
	TargetsForOwner(ctx context.Context, ownerID uint) ([]T, error)
	DeleteTarget(ctx context.Context, targetID uint) (int64, error)
	Popularity(ctx context.Context, limit int) ([]models.GroupCount, error)
}

type associationRepository[J, T any] struct {
	db      *gorm.DB
	spec    JoinSpec
	newJoin func(ownerID, targetID uint) *J
	log     *observability.RepoLogger
}

// NewAssociationRepository creates an AssociationRepository; newJoin builds a fresh join row.
func NewAssociationRepository[J, T any](db *gorm.DB, spec JoinSpec, newJoin func(ownerID, targetID uint) *J) AssociationRepository[J, T] {
	return &associationRepository[J, T]{
		db:      db,
		spec:    spec,
		newJoin: newJoin,
		log:     observability.NewRepoLogger(spec.JoinTable),
	}
}

// NewArticleCategoryRepository links articles to categories.
func NewArticleCategoryRepository(db *gorm.DB) AssociationRepository[models.ArticleArticleCategory, models.ArticleCategory] {
	return NewAssociationRepository[models.ArticleArticleCategory, models.ArticleCategory](db, ArticleCategoryJoin,
		func(ownerID, targetID uint) *models.ArticleArticleCategory {
			return &models.ArticleArticleCategory{ArticleID: ownerID, ArticleCategoryID: targetID}
		})
}

// NewArticleTagRepository links articles to tags.
func NewArticleTagRepository(db *gorm.DB) AssociationRepository[models.ArticleArticleTag, models.ArticleTag] {
	return NewAssociationRepository[models.ArticleArticleTag, models.ArticleTag](db, ArticleTagJoin,
		func(ownerID, targetID uint) *models.ArticleArticleTag {
			return &models.ArticleArticleTag{ArticleID: ownerID, ArticleTagID: targetID}
		})
}

// NewPostCategoryRepository links community posts to categories.
func NewPostCategoryRepository(db *gorm.DB) AssociationRepository[models.CommunityPostCommunityPostCategory, models.CommunityPostCategory] {
	return NewAssociationRepository[models.CommunityPostCommunityPostCategory, models.CommunityPostCategory](db, PostCategoryJoin,
		func(ownerID, targetID uint) *models.CommunityPostCommunityPostCategory {
			return &models.CommunityPostCommunityPostCategory{CommunityPostID: ownerID, CommunityPostCategoryID: targetID}
		})
}

// NewPostTagRepository links community posts to tags.
func NewPostTagRepository(db *gorm.DB) AssociationRepository[models.CommunityPostCommunityPostTag, models.CommunityPostTag] {
	return NewAssociationRepository[models.CommunityPostCommunityPostTag, models.CommunityPostTag](db, PostTagJoin,
		func(ownerID, targetID uint) *models.CommunityPostCommunityPostTag {
			return &models.CommunityPostCommunityPostTag{CommunityPostID: ownerID, CommunityPostTagID: targetID}
		})
}

func (r *associationRepository[J, T]) Spec() JoinSpec { return r.spec }

func (r *associationRepository[J, T]) live(ctx context.Context, table string, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(table).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *associationRepository[J, T]) OwnerLive(ctx context.Context, ownerID uint) (bool, error) {
	return r.live(ctx, r.spec.OwnerTable, ownerID)
}

func (r *associationRepository[J, T]) TargetLive(ctx context.Context, targetID uint) (bool, error) {
	return r.live(ctx, r.spec.TargetTable, targetID)
}

func (r *associationRepository[J, T]) pair(ownerID, targetID uint) map[string]interface{} {
	return map[string]interface{}{r.spec.OwnerColumn: ownerID, r.spec.TargetColumn: targetID}
}

// Attach relies on the unique pair index: a concurrent duplicate becomes a no-op.
func (r *associationRepository[J, T]) Attach(ctx context.Context, ownerID, targetID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: r.spec.OwnerColumn}, {Name: r.spec.TargetColumn}},
			DoNothing: true,
		}).
		Create(r.newJoin(ownerID, targetID))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "attach")
		return false, translateConflict(res.Error, "attach")
	}
	created := res.RowsAffected == 1
	if created {
		r.log.LogCreate(ctx, r.pair(ownerID, targetID))
	}
	return created, nil
}

func (r *associationRepository[J, T]) Detach(ctx context.Context, ownerID, targetID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where(r.pair(ownerID, targetID)).Delete(new(J))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "detach")
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.LogDelete(ctx, r.pair(ownerID, targetID))
	}
	return res.RowsAffected > 0, nil
}

func (r *associationRepository[J, T]) DetachAllForOwner(ctx context.Context, ownerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where(r.spec.OwnerColumn+" = ?", ownerID).Delete(new(J))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "detach_all")
		return 0, res.Error
	}
	r.log.LogDelete(ctx, map[string]any{r.spec.OwnerColumn: ownerID, "rows": res.RowsAffected})
	return res.RowsAffected, nil
}

// CountForOwner counts join rows of the owner whose target is live.
func (r *associationRepository[J, T]) CountForOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(r.spec.JoinTable+" j").
		Joins(fmt.Sprintf("JOIN %s t ON t.id = j.%s", r.spec.TargetTable, r.spec.TargetColumn)).
		Where("j."+r.spec.OwnerColumn+" = ? AND t.status = ?", ownerID, models.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *associationRepository[J, T]) TargetsForOwner(ctx context.Context, ownerID uint) ([]T, error) {
	var targets []T
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Joins(fmt.Sprintf("JOIN %s j ON j.%s = %s.id", r.spec.JoinTable, r.spec.TargetColumn, r.spec.TargetTable)).
		Where("j."+r.spec.OwnerColumn+" = ? AND "+r.spec.TargetTable+".status = ?", ownerID, models.StatusActive).
		Order(r.spec.TargetTable + ".name ASC").
		Find(&targets).Error
	return targets, err
}

// DeleteTarget removes every join row pointing at the target, then soft-deletes it.
// It returns how many join rows were removed.
func (r *associationRepository[J, T]) DeleteTarget(ctx context.Context, targetID uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(r.spec.TargetColumn+" = ?", targetID).Delete(new(J))
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		upd := tx.Model(new(T)).Where("id = ?", targetID).Update("status", models.StatusInactive)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return models.NewNotFoundError(r.spec.TargetTable, targetID)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete_target")
		return 0, err
	}
	r.log.LogDelete(ctx, map[string]any{"target_id": targetID, "join_rows": removed})
	return removed, nil
}

// Popularity counts join rows per live target, most used first.
func (r *associationRepository[J, T]) Popularity(ctx context.Context, limit int) ([]models.GroupCount, error) {
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	var rows []models.GroupCount
	err := r.db.WithContext(ctx).
		Table(r.spec.JoinTable+" j").
		Select("t.id AS id, t.name AS name, COUNT(DISTINCT j.id) AS count").
		Joins(fmt.Sprintf("JOIN %s t ON t.id = j.%s", r.spec.TargetTable, r.spec.TargetColumn)).
		Where("t.status = ?", models.StatusActive).
		Group("t.id, t.name").
		Order("count DESC, t.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// OwnerJoinRepository clears every association of an owner across several join tables.
type OwnerJoinRepository interface {
	// DetachAll deletes the owner's rows from every join table in one transaction.
	DetachAll(ctx context.Context, ownerID uint) (int64, error)
}

type ownerJoinRepository struct {
	db    *gorm.DB
	specs []JoinSpec
	log   *observability.RepoLogger
}

// NewOwnerJoinRepository creates an OwnerJoinRepository; every spec must share one owner table.
func NewOwnerJoinRepository(db *gorm.DB, specs ...JoinSpec) OwnerJoinRepository {
	table := ""
	if len(specs) > 0 {
		table = specs[0].OwnerTable
	}
	return &ownerJoinRepository{db: db, specs: specs, log: observability.NewRepoLogger(table)}
}

// NewArticleJoinRepository clears article categories and tags together.
func NewArticleJoinRepository(db *gorm.DB) OwnerJoinRepository {
	return NewOwnerJoinRepository(db, ArticleCategoryJoin, ArticleTagJoin)
}

// NewPostJoinRepository clears community post categories and tags together.
func NewPostJoinRepository(db *gorm.DB) OwnerJoinRepository {
	return NewOwnerJoinRepository(db, PostCategoryJoin, PostTagJoin)
}

func (r *ownerJoinRepository) DetachAll(ctx context.Context, ownerID uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, spec := range r.specs {
			res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", spec.JoinTable, spec.OwnerColumn), ownerID)
			if res.Error != nil {
				return fmt.Errorf("clear %s: %w", spec.JoinTable, res.Error)
			}
			removed += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "detach_all")
		return 0, err
	}
	r.log.LogDelete(ctx, map[string]any{"owner_id": ownerID, "join_rows": removed})
	return removed, nil
}
