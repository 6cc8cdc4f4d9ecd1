package service

import (
	"context"
	"fmt"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

)

type CommentService struct {
	articleComments repository.ArticleCommentRepository
	postComments    repository.PostCommentRepository
	articles        liveChecker
	posts           liveChecker
	users           liveChecker
}

type CreateArticleCommentInput struct {
	UserID    uint
	ArticleID uint
	Content   string `validate:"required,max=10000"`
}

type CreatePostCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string `validate:"required,max=10000"`
}

func NewCommentService(
	articleComments repository.ArticleCommentRepository,
	postComments repository.PostCommentRepository,
	articles liveChecker,
	posts liveChecker,
	users liveChecker,
) *CommentService {
	return &CommentService{
		articleComments: articleComments,
		postComments:    postComments,
		articles:        articles,
		posts:           posts,
		users:           users,
	}
}

func (s *CommentService) CreateArticleComment(ctx context.Context, in CreateArticleCommentInput) (*models.ArticleComment, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := requireLive(ctx, s.articles, "article", in.ArticleID); err != nil {
		return nil, err
	}
	if err := requireLive(ctx, s.users, "user", in.UserID); err != nil {
		return nil, err
	}

	comment := &models.ArticleComment{Content: in.Content, UserID: in.UserID, ArticleID: in.ArticleID}
	if err := s.articleComments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListArticleComments returns the visible comments of a live article, oldest first.
func (s *CommentService) ListArticleComments(ctx context.Context, articleID uint) ([]models.ArticleComment, error) {
	live, err := s.articles.Exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, models.NewNotFoundError("article", articleID)
	}
	return s.articleComments.ListByArticle(ctx, articleID)
}

func (s *CommentService) CountArticleComments(ctx context.Context, articleID uint) (int64, error) {
	return s.articleComments.CountByArticle(ctx, articleID)
}

func (s *CommentService) SetArticleCommentStatus(ctx context.Context, commentID uint, visible bool) error {
	return s.articleComments.SetStatus(ctx, commentID, visible)
}

// CreatePostComment adds a root comment or a reply. A parent that does not exist is a
// referential error. A parent that exists but is hidden or sits on another post is a
// hierarchy error.
func (s *CommentService) CreatePostComment(ctx context.Context, in CreatePostCommentInput) (comment *models.CommunityPostComment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.CreatePostComment",
		observability.ID("post.id", in.PostID))
	defer func() { span.End(err) }()

	if err = checkInput(in); err != nil {
		return nil, err
	}
	if err = requireLive(ctx, s.posts, "community post", in.PostID); err != nil {
		return nil, err
	}
	if err = requireLive(ctx, s.users, "user", in.UserID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, getErr := s.postComments.GetAnyByID(ctx, *in.ParentID)
		if getErr != nil {
			if models.IsNotFound(getErr) {
				return nil, models.NewReferentialError("comment", *in.ParentID)
			}
			return nil, getErr
		}
		if parent.CommunityPostID != in.PostID {
			return nil, models.NewValidationErrorKind(models.KindHierarchy,
				fmt.Sprintf("parent comment %d belongs to another post", parent.ID))
		}
		if !parent.Status {
			return nil, models.NewValidationErrorKind(models.KindHierarchy,
				fmt.Sprintf("parent comment %d is hidden", parent.ID))
		}
	}

	comment = &models.CommunityPostComment{
		Content:         in.Content,
		UserID:          in.UserID,
		CommunityPostID: in.PostID,
		ParentID:        in.ParentID,
	}
	if err = s.postComments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListThread assembles the visible comment tree of a post. Roots and replies keep creation
// order; a hidden comment removes its whole subtree from the view.
func (s *CommentService) ListThread(ctx context.Context, postID uint) (roots []*models.CommentNode, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.ListThread", observability.ID("post.id", postID))
	defer func() { span.End(err) }()

	comments, err := s.postComments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]*models.CommentNode)
	roots = []*models.CommentNode{}
	for _, c := range comments {
		if !c.Status {
			continue
		}
		node := &models.CommentNode{CommunityPostComment: c, Replies: []*models.CommentNode{}}
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], node)
	}

	// Walk down from the roots; replies under a hidden or missing parent are never reached.
	stack := append([]*models.CommentNode(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node.Replies = append(node.Replies, children[node.ID]...)
		stack = append(stack, node.Replies...)
	}
	return roots, nil
}

// CountReplies counts the visible direct replies of a comment.
func (s *CommentService) CountReplies(ctx context.Context, commentID uint) (int64, error) {
	if _, err := s.postComments.GetAnyByID(ctx, commentID); err != nil {
		return 0, err
	}
	return s.postComments.CountReplies(ctx, commentID)
}

func (s *CommentService) HidePostComment(ctx context.Context, commentID uint) error {
	return s.postComments.SetStatus(ctx, commentID, models.StatusInactive)
}

func (s *CommentService) RestorePostComment(ctx context.Context, commentID uint) error {
	return s.postComments.SetStatus(ctx, commentID, models.StatusActive)
}
