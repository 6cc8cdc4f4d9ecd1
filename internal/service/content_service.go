package service

import (
	"context"
	"strings"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

)

type ContentService struct {
	articles repository.ArticleRepository
	posts    repository.CommunityPostRepository
	users    liveChecker
	geo      GeoRefValidator
}

type CreateArticleInput struct {
	AuthorID uint
	Title    string `validate:"notblank,max=255"`
	Summary  string `validate:"max=1024"`
	Content  string `validate:"notblank,max=100000"`
	Geo      models.GeoRefs
}

type UpdateArticleInput struct {
	ArticleID uint
	Title     *string `validate:"omitnil,notblank,max=255"`
	Summary   *string `validate:"omitnil,max=1024"`
	Content   *string `validate:"omitnil,notblank,max=100000"`
	// Geo replaces every direct geo reference when set.
	Geo *models.GeoRefs
}

type CreatePostInput struct {
	UserID  uint
	Title   string `validate:"notblank,max=255"`
	Content string `validate:"notblank,max=100000"`
}

type UpdatePostInput struct {
	PostID  uint
	Title   *string `validate:"omitnil,notblank,max=255"`
	Content *string `validate:"omitnil,notblank,max=100000"`
}

func NewContentService(
	articles repository.ArticleRepository,
	posts repository.CommunityPostRepository,
	users liveChecker,
	geo GeoRefValidator,
) *ContentService {
	return &ContentService{articles: articles, posts: posts, users: users, geo: geo}
}

func (s *ContentService) CreateArticle(ctx context.Context, in CreateArticleInput) (article *models.Article, err error) {
	ctx, span := observability.StartSpan(ctx, "ContentService.CreateArticle", observability.ID("user.id", in.AuthorID))
	defer func() { span.End(err) }()

	if err = checkInput(in); err != nil {
		return nil, err
	}
	if err = requireLive(ctx, s.users, "user", in.AuthorID); err != nil {
		return nil, err
	}
	if err = s.geo.ValidateRefs(ctx, in.Geo); err != nil {
		return nil, err
	}

	article = &models.Article{
		GeoRefs:  in.Geo,
		Title:    strings.TrimSpace(in.Title),
		Summary:  in.Summary,
		Content:  in.Content,
		AuthorID: in.AuthorID,
	}
	if err = s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	span.Set(observability.ID("article.id", article.ID))
	return article, nil
}

func (s *ContentService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *ContentService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if _, err := s.articles.GetByID(ctx, in.ArticleID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Summary != nil {
		fields["summary"] = *in.Summary
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Geo != nil {
		if err := s.geo.ValidateRefs(ctx, *in.Geo); err != nil {
			return nil, err
		}
		fields["country_id"] = in.Geo.CountryID
		fields["region_id"] = in.Geo.RegionID
		fields["district_id"] = in.Geo.DistrictID
		fields["ward_id"] = in.Geo.WardID
	}

	if err := s.articles.Update(ctx, in.ArticleID, fields); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, in.ArticleID)
}

func (s *ContentService) DeleteArticle(ctx context.Context, id uint) error {
	return s.articles.SoftDelete(ctx, id)
}

func (s *ContentService) FindArticles(ctx context.Context, filter models.ArticleFilter, p models.Pagination) (models.PageResult[models.Article], error) {
	return s.articles.Find(ctx, filter, p)
}

// RecordView counts one read of a live article.
func (s *ContentService) RecordView(ctx context.Context, articleID uint) error {
	return s.articles.IncrementViewCount(ctx, articleID)
}

func (s *ContentService) MostViewed(ctx context.Context, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	return s.articles.MostViewed(ctx, limit)
}

func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.CommunityPost, err error) {
	ctx, span := observability.StartSpan(ctx, "ContentService.CreatePost", observability.ID("user.id", in.UserID))
	defer func() { span.End(err) }()

	if err = checkInput(in); err != nil {
		return nil, err
	}
	if err = requireLive(ctx, s.users, "user", in.UserID); err != nil {
		return nil, err
	}

	post = &models.CommunityPost{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err = s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ContentService) GetPost(ctx context.Context, id uint) (*models.CommunityPost, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *ContentService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.CommunityPost, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if err := s.posts.Update(ctx, in.PostID, fields); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, in.PostID)
}

func (s *ContentService) DeletePost(ctx context.Context, id uint) error {
	return s.posts.SoftDelete(ctx, id)
}

func (s *ContentService) FindPosts(ctx context.Context, filter models.CommunityPostFilter, p models.Pagination) (models.PageResult[models.CommunityPost], error) {
	return s.posts.Find(ctx, filter, p)
}
