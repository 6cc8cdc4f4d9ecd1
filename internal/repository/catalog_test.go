package repository

import (
	"context"
	"testing"

	"travelcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_FindByGeoAndName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccommodationRepository(db)
	ctx := context.Background()

	north, south := uint(1), uint(2)
	for _, acc := range []*models.Accommodation{
		{Name: "Hanoi Riverside", GeoRefs: models.GeoRefs{RegionID: &north}},
		{Name: "Hanoi Old Quarter Inn", GeoRefs: models.GeoRefs{RegionID: &north}},
		{Name: "Saigon Central", GeoRefs: models.GeoRefs{RegionID: &south}},
	} {
		require.NoError(t, repo.Create(ctx, acc))
		assert.True(t, acc.Status)
	}

	name := "hanoi"
	page, err := repo.Find(ctx, models.POIFilter{RegionID: &north, Name: &name},
		models.Pagination{SortField: "name", SortDirection: models.SortAsc})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Hanoi Old Quarter Inn", page.Items[0].Name)
	assert.Equal(t, int64(2), page.Total)
}

func TestCatalogRepository_NamedScopesIgnoreGeo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrganizerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Organizer{Name: "Lantern Festival Org"}))

	country := uint(9)
	page, err := repo.Find(ctx, models.POIFilter{CountryID: &country}, models.Pagination{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestRoomRepository_ListByAccommodation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()
	acc := createAccommodation(t, db, "Dalat Pines")

	require.NoError(t, repo.Create(ctx, &models.Room{AccommodationID: acc.ID, Name: "Suite"}))
	hidden := &models.Room{AccommodationID: acc.ID, Name: "Attic"}
	require.NoError(t, repo.Create(ctx, hidden))
	require.NoError(t, repo.SoftDelete(ctx, hidden.ID))

	rooms, err := repo.ListByAccommodation(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Suite", rooms[0].Name)
}

func TestCatalogRepository_DuplicateTagName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArticleTagStore(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ArticleTag{Name: "street-food"}))
	err := repo.Create(ctx, &models.ArticleTag{Name: "street-food"})
	assert.Equal(t, models.KindUniqueness, models.ValidationKindOf(err))
}
