package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"travelcore/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleRepository_IncrementViewCountConcurrently(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author@example.com")
	article := createArticle(t, db, author.ID, "Hanoi in autumn")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementViewCount(ctx, article.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ViewCount)
	assert.Nil(t, got.UpdatedAt, "views are not edits")

	assert.True(t, models.IsNotFound(repo.IncrementViewCount(ctx, 9999)))
}

func TestArticleRepository_IncrementViewCountSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "articles" SET "view_count"=view_count + $1 WHERE id = $2 AND status = $3`)).
		WithArgs(1, 42, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IncrementViewCount(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_FindAndMostViewed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArticleRepository(db)
	cats := NewArticleCategoryRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")
	first := createArticle(t, db, author.ID, "Street food guide")
	second := createArticle(t, db, author.ID, "Mountain trails")
	createArticle(t, db, other.ID, "Street art")

	category := &models.ArticleCategory{Name: "Food"}
	require.NoError(t, db.Create(category).Error)
	_, err := cats.Attach(ctx, first.ID, category.ID)
	require.NoError(t, err)

	title := "street"
	page, err := repo.Find(ctx, models.ArticleFilter{Title: &title}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = repo.Find(ctx, models.ArticleFilter{AuthorID: &author.ID, CategoryID: &category.ID}, models.Pagination{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementViewCount(ctx, second.ID))
	}
	top, err := repo.MostViewed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, second.ID, top[0].ID)
}
