package repository

import (
	"context"
	"time"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"gorm.io/gorm"
)

// TokenRepository defines interface for password-reset token operations
type TokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// Consume flips is_used for a valid token in one conditional UPDATE and reports
	// whether this call won.
	Consume(ctx context.Context, token string, now time.Time) (bool, error)
	// Redeem consumes the token and stores hashedPassword on its live user in one transaction.
	Redeem(ctx context.Context, token string, now time.Time, hashedPassword string) (bool, error)
	// Reissue burns the user's outstanding tokens and stores token in one transaction.
	Reissue(ctx context.Context, token *models.PasswordResetToken) error
	InvalidateForUser(ctx context.Context, userID uint) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db, log: observability.NewRepoLogger("password_reset_tokens")}
}

func (r *tokenRepository) withTx(tx *gorm.DB) *tokenRepository {
	return &tokenRepository{db: tx, log: r.log}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateUnique(err, "password reset token", "token", "(redacted)")
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": token.UserID})
	return nil
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translate(err, "password reset token", "(redacted)")
	}
	return &t, nil
}

func (r *tokenRepository) Consume(ctx context.Context, token string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("token = ? AND is_used = ? AND expires_at > ?", token, false, now).
		Update("is_used", true)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "consume")
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *tokenRepository) Redeem(ctx context.Context, token string, now time.Time, hashedPassword string) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.withTx(tx)
		consumed, err := txRepo.Consume(ctx, token, now)
		if err != nil {
			return err
		}
		t, err := txRepo.GetByToken(ctx, token)
		if err != nil || !consumed {
			return err
		}
		upd := tx.Model(&models.User{}).
			Where("id = ? AND status = ?", t.UserID, models.StatusActive).
			Update("hashed_password", hashedPassword)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			// Rolls the consume back: a token of an inactive user stays unused.
			return models.NewNotFoundError("user", t.UserID)
		}
		won = true
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "redeem")
		return false, translate(err, "password reset token", "(redacted)")
	}
	if won {
		r.log.LogUpdate(ctx, map[string]any{"redeemed": true})
	}
	return won, nil
}

func (r *tokenRepository) Reissue(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.withTx(tx)
		if _, err := txRepo.InvalidateForUser(ctx, token.UserID); err != nil {
			return err
		}
		return txRepo.Create(ctx, token)
	})
}

// InvalidateForUser marks every outstanding token of the user as used.
func (r *tokenRepository) InvalidateForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Update("is_used", true)
	return res.RowsAffected, res.Error
}

// PurgeExpired physically removes tokens that expired at or before now.
func (r *tokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "purge")
		return 0, res.Error
	}
	r.log.LogDelete(ctx, map[string]any{"purged": res.RowsAffected})
	return res.RowsAffected, nil
}
