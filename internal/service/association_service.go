package service

import (
	"context"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Associations links live owners to live categories or tags of type T through join rows J.
type Associations[J, T any] struct {
	repo repository.AssociationRepository[J, T]
}

func NewAssociations[J, T any](repo repository.AssociationRepository[J, T]) *Associations[J, T] {
	return &Associations[J, T]{repo: repo}
}

// Attach is idempotent: attaching an existing pair reports created=false and no error.
func (a *Associations[J, T]) Attach(ctx context.Context, ownerID, targetID uint) (created bool, err error) {
	spec := a.repo.Spec()
	ctx, span := observability.StartSpan(ctx, "Associations.Attach", attribute.String("join.table", spec.JoinTable))
	defer func() { span.End(err) }()

	live, err := a.repo.OwnerLive(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if !live {
		return false, models.NewReferentialError(spec.OwnerTable, ownerID)
	}
	live, err = a.repo.TargetLive(ctx, targetID)
	if err != nil {
		return false, err
	}
	if !live {
		return false, models.NewReferentialError(spec.TargetTable, targetID)
	}
	return a.repo.Attach(ctx, ownerID, targetID)
}

// Detach removes the pair; removed is false when it was not attached.
func (a *Associations[J, T]) Detach(ctx context.Context, ownerID, targetID uint) (removed bool, err error) {
	return a.repo.Detach(ctx, ownerID, targetID)
}

func (a *Associations[J, T]) DetachAll(ctx context.Context, ownerID uint) (int64, error) {
	return a.repo.DetachAllForOwner(ctx, ownerID)
}

func (a *Associations[J, T]) Count(ctx context.Context, ownerID uint) (int64, error) {
	return a.repo.CountForOwner(ctx, ownerID)
}

func (a *Associations[J, T]) Targets(ctx context.Context, ownerID uint) ([]T, error) {
	return a.repo.TargetsForOwner(ctx, ownerID)
}

// DeleteTarget drops every association of the target, then soft-deletes it, atomically.
func (a *Associations[J, T]) DeleteTarget(ctx context.Context, targetID uint) (int64, error) {
	return a.repo.DeleteTarget(ctx, targetID)
}

func (a *Associations[J, T]) Popularity(ctx context.Context, limit int) ([]models.GroupCount, error) {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	return a.repo.Popularity(ctx, limit)
}

type AssociationService struct {
	ArticleCategories *Associations[models.ArticleArticleCategory, models.ArticleCategory]
	ArticleTags       *Associations[models.ArticleArticleTag, models.ArticleTag]
	PostCategories    *Associations[models.CommunityPostCommunityPostCategory, models.CommunityPostCategory]
	PostTags          *Associations[models.CommunityPostCommunityPostTag, models.CommunityPostTag]

	articleJoins repository.OwnerJoinRepository
	postJoins    repository.OwnerJoinRepository
}

func NewAssociationService(
	articleCategories repository.AssociationRepository[models.ArticleArticleCategory, models.ArticleCategory],
	articleTags repository.AssociationRepository[models.ArticleArticleTag, models.ArticleTag],
	postCategories repository.AssociationRepository[models.CommunityPostCommunityPostCategory, models.CommunityPostCategory],
	postTags repository.AssociationRepository[models.CommunityPostCommunityPostTag, models.CommunityPostTag],
	articleJoins repository.OwnerJoinRepository,
	postJoins repository.OwnerJoinRepository,
) *AssociationService {
	return &AssociationService{
		ArticleCategories: NewAssociations[models.ArticleArticleCategory, models.ArticleCategory](articleCategories),
		ArticleTags:       NewAssociations[models.ArticleArticleTag, models.ArticleTag](articleTags),
		PostCategories:    NewAssociations[models.CommunityPostCommunityPostCategory, models.CommunityPostCategory](postCategories),
		PostTags:          NewAssociations[models.CommunityPostCommunityPostTag, models.CommunityPostTag](postTags),
		articleJoins:      articleJoins,
		postJoins:         postJoins,
	}
}

func (s *AssociationService) AttachCategory(ctx context.Context, articleID, categoryID uint) (bool, error) {
	return s.ArticleCategories.Attach(ctx, articleID, categoryID)
}

func (s *AssociationService) AttachTag(ctx context.Context, articleID, tagID uint) (bool, error) {
	return s.ArticleTags.Attach(ctx, articleID, tagID)
}

func (s *AssociationService) DetachCategory(ctx context.Context, articleID, categoryID uint) (bool, error) {
	return s.ArticleCategories.Detach(ctx, articleID, categoryID)
}

func (s *AssociationService) DetachTag(ctx context.Context, articleID, tagID uint) (bool, error) {
	return s.ArticleTags.Detach(ctx, articleID, tagID)
}

// DetachAllForArticle clears both the categories and the tags of an article. Either
// both are cleared or neither is.
func (s *AssociationService) DetachAllForArticle(ctx context.Context, articleID uint) (int64, error) {
	return s.articleJoins.DetachAll(ctx, articleID)
}

// DetachAllForPost clears both the categories and the tags of a community post.
func (s *AssociationService) DetachAllForPost(ctx context.Context, postID uint) (int64, error) {
	return s.postJoins.DetachAll(ctx, postID)
}

func (s *AssociationService) CountCategoriesForArticle(ctx context.Context, articleID uint) (int64, error) {
	return s.ArticleCategories.Count(ctx, articleID)
}

func (s *AssociationService) CountTagsForArticle(ctx context.Context, articleID uint) (int64, error) {
	return s.ArticleTags.Count(ctx, articleID)
}

func (s *AssociationService) CategoriesForArticle(ctx context.Context, articleID uint) ([]models.ArticleCategory, error) {
	return s.ArticleCategories.Targets(ctx, articleID)
}

func (s *AssociationService) TagsForArticle(ctx context.Context, articleID uint) ([]models.ArticleTag, error) {
	return s.ArticleTags.Targets(ctx, articleID)
}

func (s *AssociationService) DeleteCategory(ctx context.Context, categoryID uint) (int64, error) {
	return s.ArticleCategories.DeleteTarget(ctx, categoryID)
}

func (s *AssociationService) DeleteTag(ctx context.Context, tagID uint) (int64, error) {
	return s.ArticleTags.DeleteTarget(ctx, tagID)
}

// CategoryPopularity ranks live article categories by how many articles use them.
func (s *AssociationService) CategoryPopularity(ctx context.Context, limit int) ([]models.GroupCount, error) {
	return s.ArticleCategories.Popularity(ctx, limit)
}

// TagCloud ranks live article tags by how many articles use them.
func (s *AssociationService) TagCloud(ctx context.Context, limit int) ([]models.GroupCount, error) {
	return s.ArticleTags.Popularity(ctx, limit)
}
