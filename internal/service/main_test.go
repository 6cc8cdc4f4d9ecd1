package service

import (
	"testing"
	"time"

	"travelcore/internal/database"
	"travelcore/internal/models"
	"travelcore/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db           *gorm.DB
	geo          *GeoService
	catalog      *CatalogService
	refs         *ReferenceService
	content      *ContentService
	comments     *CommentService
	reactions    *ReactionService
	associations *AssociationService
	access       *AccessService
	tokens       *TokenService

	articleCategories repository.CatalogRepository[models.ArticleCategory]
}

func newTestEnv(t *testing.T, defaultRole DefaultRoleConfig) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	perms := repository.NewPermissionRepository(db)
	tokens := repository.NewTokenRepository(db)
	articles := repository.NewArticleRepository(db)
	posts := repository.NewCommunityPostRepository(db)
	postComments := repository.NewPostCommentRepository(db)
	accommodations := repository.NewAccommodationRepository(db)

	geo := NewGeoService(repository.NewGeoRepository(db))
	access := NewAccessService(users, roles, perms, defaultRole)
	access.hashCost = bcrypt.MinCost

	return &testEnv{
		db:  db,
		geo: geo,
		catalog: NewCatalogService(geo,
			accommodations,
			repository.NewRoomRepository(db),
			repository.NewLocationRepository(db),
			repository.NewFoodRepository(db),
			repository.NewOrganizerRepository(db),
			repository.NewEventRepository(db),
		),
		refs: NewReferenceService(
			repository.NewOwnerRepository(db),
			repository.NewMediaRepository(db),
			repository.NewRatingRepository(db),
			users,
			repository.NewMediaTypeRepository(db),
			repository.NewMediaCategoryRepository(db),
		),
		content:   NewContentService(articles, posts, users, geo),
		comments:  NewCommentService(repository.NewArticleCommentRepository(db), postComments, articles, posts, users),
		reactions: NewReactionService(repository.NewReactionRepository(db), postComments, articles, posts, users),
		associations: NewAssociationService(
			repository.NewArticleCategoryRepository(db),
			repository.NewArticleTagRepository(db),
			repository.NewPostCategoryRepository(db),
			repository.NewPostTagRepository(db),
			repository.NewArticleJoinRepository(db),
			repository.NewPostJoinRepository(db),
		),
		access:            access,
		tokens:            NewTokenService(tokens, users, access, 30*time.Minute),
		articleCategories: repository.NewArticleCategoryStore(db),
	}
}
