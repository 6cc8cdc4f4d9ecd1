package service

import (
	"context"
	"fmt"
	"strconv"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

)

type ReactionService struct {
	reactions    repository.ReactionRepository
	postComments repository.PostCommentRepository
	articles     liveChecker
	posts        liveChecker
	users        liveChecker
}

func NewReactionService(
	reactions repository.ReactionRepository,
	postComments repository.PostCommentRepository,
	articles liveChecker,
	posts liveChecker,
	users liveChecker,
) *ReactionService {
	return &ReactionService{
		reactions:    reactions,
		postComments: postComments,
		articles:     articles,
		posts:        posts,
		users:        users,
	}
}

func recordToggle(target string, active bool) {
	observability.ReactionToggles.WithLabelValues(target, strconv.FormatBool(active)).Inc()
}

// ToggleArticleReaction flips the user's reaction to a live article and returns the new state.
func (s *ReactionService) ToggleArticleReaction(ctx context.Context, userID, articleID uint) (active bool, err error) {
	ctx, span := observability.StartSpan(ctx, "ReactionService.ToggleArticleReaction",
		observability.ID("article.id", articleID))
	defer func() { span.End(err) }()

	if err = requireLive(ctx, s.users, "user", userID); err != nil {
		return false, err
	}
	if err = requireLive(ctx, s.articles, "article", articleID); err != nil {
		return false, err
	}
	active, err = s.reactions.ToggleArticle(ctx, userID, articleID)
	if err != nil {
		return false, err
	}
	recordToggle("article", active)
	return active, nil
}

// TogglePostReaction flips the user's reaction to a live post, or to one of its visible
// comments when commentID is set.
func (s *ReactionService) TogglePostReaction(ctx context.Context, userID, postID uint, commentID *uint) (active bool, err error) {
	ctx, span := observability.StartSpan(ctx, "ReactionService.TogglePostReaction",
		observability.ID("post.id", postID))
	defer func() { span.End(err) }()

	if err = requireLive(ctx, s.users, "user", userID); err != nil {
		return false, err
	}
	if err = requireLive(ctx, s.posts, "community post", postID); err != nil {
		return false, err
	}

	var target uint
	label := "post"
	if commentID != nil {
		if err = s.requireCommentOnPost(ctx, *commentID, postID); err != nil {
			return false, err
		}
		target = *commentID
		label = "comment"
	}

	active, err = s.reactions.TogglePost(ctx, userID, postID, target)
	if err != nil {
		return false, err
	}
	recordToggle(label, active)
	return active, nil
}

func (s *ReactionService) requireCommentOnPost(ctx context.Context, commentID, postID uint) error {
	if commentID == 0 {
		return models.NewValidationError("comment id must be positive")
	}
	comment, err := s.postComments.GetAnyByID(ctx, commentID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NewReferentialError("comment", commentID)
		}
		return err
	}
	if comment.CommunityPostID != postID {
		return models.NewValidationErrorKind(models.KindHierarchy,
			fmt.Sprintf("comment %d belongs to another post", commentID))
	}
	if !comment.Status {
		return models.NewReferentialError("comment", commentID)
	}
	return nil
}

func (s *ReactionService) CountArticleReactions(ctx context.Context, articleID uint) (int64, error) {
	return s.reactions.CountArticle(ctx, articleID)
}

// CountPostReactions counts active reactions on the post itself, or on one comment.
func (s *ReactionService) CountPostReactions(ctx context.Context, postID uint, commentID *uint) (int64, error) {
	var target uint
	if commentID != nil {
		target = *commentID
	}
	return s.reactions.CountPost(ctx, postID, target)
}
