package repository

import (
	"context"

	"travelcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository toggles and counts reactions. Each (user, target) pair owns at
// most one row, guaranteed by a unique index.
type ReactionRepository interface {
	ToggleArticle(ctx context.Context, userID, articleID uint) (bool, error)
	TogglePost(ctx context.Context, userID, postID, commentID uint) (bool, error)
	CountArticle(ctx context.Context, articleID uint) (int64, error)
	CountPost(ctx context.Context, postID, commentID uint) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// toggle inserts row if the pair is free, otherwise flips the stored status, all in
// one transaction. It returns the resulting status.
func toggle[T any](ctx context.Context, db *gorm.DB, row *T, conflictCols []string, where map[string]interface{}) (bool, error) {
	var status bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := make([]clause.Column, 0, len(conflictCols))
		for _, c := range conflictCols {
			cols = append(cols, clause.Column{Name: c})
		}
		res := tx.Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			status = models.StatusActive
			return nil
		}

		if err := tx.Model(new(T)).Where(where).Update("status", gorm.Expr("NOT status")).Error; err != nil {
			return err
		}
		return tx.Model(new(T)).Where(where).Select("status").Scan(&status).Error
	})
	if err != nil {
		return false, translateConflict(err, "reaction toggle")
	}
	return status, nil
}

func (r *reactionRepository) ToggleArticle(ctx context.Context, userID, articleID uint) (bool, error) {
	row := &models.ArticleReaction{UserID: userID, ArticleID: articleID}
	return toggle(ctx, r.db, row,
		[]string{"user_id", "article_id"},
		map[string]interface{}{"user_id": userID, "article_id": articleID},
	)
}

// TogglePost reacts to the post itself when commentID is 0, otherwise to that comment.
func (r *reactionRepository) TogglePost(ctx context.Context, userID, postID, commentID uint) (bool, error) {
	row := &models.CommunityPostReaction{UserID: userID, CommunityPostID: postID, CommentID: commentID}
	return toggle(ctx, r.db, row,
		[]string{"user_id", "community_post_id", "comment_id"},
		map[string]interface{}{"user_id": userID, "community_post_id": postID, "comment_id": commentID},
	)
}

func (r *reactionRepository) CountArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ArticleReaction{}).
		Where("article_id = ? AND status = ?", articleID, models.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) CountPost(ctx context.Context, postID, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommunityPostReaction{}).
		Where("community_post_id = ? AND comment_id = ? AND status = ?", postID, commentID, models.StatusActive).
		Count(&count).Error
	return count, err
}
