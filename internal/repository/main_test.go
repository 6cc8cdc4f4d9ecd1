package repository

import (
	"testing"

	"travelcore/internal/database"
	"travelcore/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
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
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test User", HashedPassword: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createAccommodation(t *testing.T, db *gorm.DB, name string) *models.Accommodation {
	t.Helper()
	acc := &models.Accommodation{Name: name}
	require.NoError(t, db.Create(acc).Error)
	return acc
}

func createArticle(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Article {
	t.Helper()
	article := &models.Article{Title: title, Content: "body", AuthorID: authorID}
	require.NoError(t, db.Create(article).Error)
	return article
}

func createPost(t *testing.T, db *gorm.DB, userID uint, title string) *models.CommunityPost {
	t.Helper()
	post := &models.CommunityPost{Title: title, Content: "body", UserID: userID}
	require.NoError(t, db.Create(post).Error)
	return post
}

func softDelete(t *testing.T, db *gorm.DB, model interface{}, id uint) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).Update("status", false).Error)
}
