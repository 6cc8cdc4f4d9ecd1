package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"travelcore/internal/models"
	"travelcore/internal/observability"
	"travelcore/internal/repository"

	"github.com/google/uuid"
)

// TokenService issues and redeems password-reset tokens.
type TokenService struct {
	tokens repository.TokenRepository
	users  repository.UserRepository
	access *AccessService
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(tokens repository.TokenRepository, users repository.UserRepository, access *AccessService, ttl time.Duration) *TokenService {
	return &TokenService{
		tokens: tokens,
		users:  users,
		access: access,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// IssueResetToken replaces any outstanding token of the live user owning email.
func (s *TokenService) IssueResetToken(ctx context.Context, email string) (token *models.PasswordResetToken, err error) {
	ctx, span := observability.StartSpan(ctx, "TokenService.IssueResetToken")
	defer func() { span.End(err) }()

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	token = &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err = s.tokens.Reissue(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ValidateResetToken returns the token when it is unused and unexpired.
func (s *TokenService) ValidateResetToken(ctx context.Context, value string) (*models.PasswordResetToken, error) {
	token, err := s.tokens.GetByToken(ctx, value)
	if err != nil {
		return nil, err
	}
	if !token.IsValid(s.now()) {
		return nil, models.NewValidationError("password reset token is expired or already used")
	}
	return token, nil
}

// ConsumeResetToken spends the token and sets the new password. Of several concurrent
// callers exactly one wins; the others get CONCURRENCY_CONFLICT.
func (s *TokenService) ConsumeResetToken(ctx context.Context, value, newPassword string) (err error) {
	ctx, span := observability.StartSpan(ctx, "TokenService.ConsumeResetToken")
	defer func() { span.End(err) }()

	if _, err = s.ValidateResetToken(ctx, value); err != nil {
		return err
	}
	hashed, err := s.access.hash(newPassword)
	if err != nil {
		return err
	}
	won, err := s.tokens.Redeem(ctx, value, s.now(), hashed)
	if err != nil {
		return err
	}
	if !won {
		return models.NewConcurrencyError("password reset token was consumed concurrently", nil)
	}
	return nil
}

// PurgeExpiredTokens deletes tokens that expired at or before now.
func (s *TokenService) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	purged, err := s.tokens.PurgeExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	observability.PurgedTokens.Add(float64(purged))
	return purged, nil
}

// RunTokenPurger purges expired tokens every interval until ctx is cancelled.
func (s *TokenService) RunTokenPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpiredTokens(ctx, s.now())
			if err != nil {
				observability.Logger.ErrorContext(ctx, "token purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				observability.Logger.InfoContext(ctx, "expired reset tokens purged", slog.Int64("count", purged))
			}
		}
	}
}
