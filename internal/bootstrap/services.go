package bootstrap

import (
	"time"

	"travelcore/internal/config"
	"travelcore/internal/repository"
	"travelcore/internal/service"

	"gorm.io/gorm"
)

// Services is every domain service wired over one database.
type Services struct {
	Geo          *service.GeoService
	Catalog      *service.CatalogService
	References   *service.ReferenceService
	Content      *service.ContentService
	Comments     *service.CommentService
	Reactions    *service.ReactionService
	Associations *service.AssociationService
	Access       *service.AccessService
	Tokens       *service.TokenService
}

// DefaultRole maps the DEFAULT_ROLE_* settings onto the access service's config.
func DefaultRole(cfg *config.Config) service.DefaultRoleConfig {
	return service.DefaultRoleConfig{ID: cfg.DefaultRoleID, Name: cfg.DefaultRoleName}
}

// NewServices builds the repositories and services for db.
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)
	articles := repository.NewArticleRepository(db)
	posts := repository.NewCommunityPostRepository(db)
	postComments := repository.NewPostCommentRepository(db)

	geo := service.NewGeoService(repository.NewGeoRepository(db))
	access := service.NewAccessService(users,
		repository.NewRoleRepository(db),
		repository.NewPermissionRepository(db),
		DefaultRole(cfg),
	)

	return &Services{
		Geo: geo,
		Catalog: service.NewCatalogService(geo,
			repository.NewAccommodationRepository(db),
			repository.NewRoomRepository(db),
			repository.NewLocationRepository(db),
			repository.NewFoodRepository(db),
			repository.NewOrganizerRepository(db),
			repository.NewEventRepository(db),
		),
		References: service.NewReferenceService(
			repository.NewOwnerRepository(db),
			repository.NewMediaRepository(db),
			repository.NewRatingRepository(db),
			users,
			repository.NewMediaTypeRepository(db),
			repository.NewMediaCategoryRepository(db),
		),
		Content:   service.NewContentService(articles, posts, users, geo),
		Comments:  service.NewCommentService(repository.NewArticleCommentRepository(db), postComments, articles, posts, users),
		Reactions: service.NewReactionService(repository.NewReactionRepository(db), postComments, articles, posts, users),
		Associations: service.NewAssociationService(
			repository.NewArticleCategoryRepository(db),
			repository.NewArticleTagRepository(db),
			repository.NewPostCategoryRepository(db),
			repository.NewPostTagRepository(db),
			repository.NewArticleJoinRepository(db),
			repository.NewPostJoinRepository(db),
		),
		Access: access,
		Tokens: service.NewTokenService(tokens, users, access, time.Duration(cfg.PasswordResetTTLMinutes)*time.Minute),
	}
}
