package repository

import (
	"context"
	"testing"

	"travelcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geoFixture struct {
	asia    *models.Continent
	vietnam *models.Country
	north   *models.Region
	hanoi   *models.District
	hoanKim *models.Ward
}

func seedGeoTree(t *testing.T, repo GeoRepository) geoFixture {
	t.Helper()
	ctx := context.Background()

	f := geoFixture{asia: &models.Continent{Code: "AS", Name: "Asia"}}
	require.NoError(t, repo.CreateContinent(ctx, f.asia))
	f.vietnam = &models.Country{Code: "VN", Name: "Vietnam", ContinentID: f.asia.ID}
	require.NoError(t, repo.CreateCountry(ctx, f.vietnam))
	f.north = &models.Region{Code: "VN-N", Name: "North", CountryID: f.vietnam.ID}
	require.NoError(t, repo.CreateRegion(ctx, f.north))
	f.hanoi = &models.District{Code: "HN", Name: "Hanoi", RegionID: f.north.ID}
	require.NoError(t, repo.CreateDistrict(ctx, f.hanoi))
	f.hoanKim = &models.Ward{Code: "HK", Name: "Hoan Kiem", DistrictID: f.hanoi.ID}
	require.NoError(t, repo.CreateWard(ctx, f.hoanKim))
	return f
}

func TestGeoRepository_CodeUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	err := repo.CreateCountry(ctx, &models.Country{Code: "VN", Name: "Viet Nam", ContinentID: f.asia.ID})
	require.Error(t, err)
	assert.Equal(t, models.KindUniqueness, models.ValidationKindOf(err))

	thailand := &models.Country{Code: "TH", Name: "Thailand", ContinentID: f.asia.ID}
	require.NoError(t, repo.CreateCountry(ctx, thailand))

	// Region codes are scoped to their country.
	require.NoError(t, repo.CreateRegion(ctx, &models.Region{Code: "VN-N", Name: "Mirror", CountryID: thailand.ID}))
	err = repo.CreateRegion(ctx, &models.Region{Code: "VN-N", Name: "Dup", CountryID: f.vietnam.ID})
	assert.Equal(t, models.KindUniqueness, models.ValidationKindOf(err))
}

func TestGeoRepository_ResolvePath(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	path, err := repo.ResolvePath(ctx, models.LevelWard, f.hoanKim.ID)
	require.NoError(t, err)
	require.Len(t, path.Nodes, 5)

	names := make([]string, 0, len(path.Nodes))
	for _, n := range path.Nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Hoan Kiem", "Hanoi", "North", "Vietnam", "Asia"}, names)
	assert.Equal(t, models.LevelContinent, path.Nodes[4].Level)
	assert.Nil(t, path.Nodes[4].ParentID)
	require.NotNil(t, path.Nodes[0].ParentID)
	assert.Equal(t, f.hanoi.ID, *path.Nodes[0].ParentID)

	path, err = repo.ResolvePath(ctx, models.LevelContinent, f.asia.ID)
	require.NoError(t, err)
	require.Len(t, path.Nodes, 1)

	_, err = repo.ResolvePath(ctx, models.LevelRegion, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestGeoRepository_ListChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	south := &models.Region{Code: "VN-S", Name: "South", CountryID: f.vietnam.ID}
	central := &models.Region{Code: "VN-C", Name: "Central", CountryID: f.vietnam.ID}
	require.NoError(t, repo.CreateRegion(ctx, south))
	require.NoError(t, repo.CreateRegion(ctx, central))
	require.NoError(t, repo.SetStatus(ctx, models.LevelRegion, south.ID, false))

	children, err := repo.ListChildren(ctx, models.LevelCountry, f.vietnam.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Central", children[0].Name)
	assert.Equal(t, "North", children[1].Name)
	assert.Equal(t, models.LevelRegion, children[0].Level)

	leaves, err := repo.ListChildren(ctx, models.LevelWard, f.hoanKim.ID)
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestGeoRepository_SearchScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	europe := &models.Continent{Code: "EU", Name: "Europe"}
	require.NoError(t, repo.CreateContinent(ctx, europe))
	france := &models.Country{Code: "FR", Name: "France", ContinentID: europe.ID}
	require.NoError(t, repo.CreateCountry(ctx, france))
	nord := &models.Region{Code: "FR-N", Name: "Nord", CountryID: france.ID}
	require.NoError(t, repo.CreateRegion(ctx, nord))
	lille := &models.District{Code: "LI", Name: "Lille", RegionID: nord.ID}
	require.NoError(t, repo.CreateDistrict(ctx, lille))
	require.NoError(t, repo.CreateWard(ctx, &models.Ward{Code: "HK", Name: "Hoan Kiem Annex", DistrictID: lille.ID}))

	all, err := repo.Search(ctx, models.LevelWard, "hoan", nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := repo.Search(ctx, models.LevelWard, "HOAN", &models.GeoScope{Level: models.LevelCountry, ID: f.vietnam.ID}, 10)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, f.hoanKim.ID, scoped[0].ID)

	_, err = repo.Search(ctx, models.LevelRegion, "n", &models.GeoScope{Level: models.LevelWard, ID: f.hoanKim.ID}, 10)
	assert.Equal(t, models.KindHierarchy, models.ValidationKindOf(err))
}

func TestGeoRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	seedGeoTree(t, repo)
	require.NoError(t, repo.CreateContinent(ctx, &models.Continent{Code: "OC", Name: "Oceania 100% Pure"}))

	tests := []struct {
		part string
		want int
	}{
		{part: "%", want: 1},
		{part: "_", want: 0},
		{part: `\`, want: 0},
		{part: "a", want: 2},
	}
	for _, tt := range tests {
		got, err := repo.Search(ctx, models.LevelContinent, tt.part, nil, 10)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "search %q", tt.part)
	}

	percent := "%"
	page, err := repo.Find(ctx, models.LevelContinent, models.GeoFilter{Name: &percent}, models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestGeoRepository_FindWithAncestorFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	require.NoError(t, repo.CreateDistrict(ctx, &models.District{Code: "HP", Name: "Hai Phong", RegionID: f.north.ID}))

	countryID := f.vietnam.ID
	page, err := repo.Find(ctx, models.LevelDistrict, models.GeoFilter{CountryID: &countryID}, models.Pagination{SortField: "name"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Hai Phong", page.Items[0].Name)

	other := uint(999)
	page, err = repo.Find(ctx, models.LevelDistrict, models.GeoFilter{ContinentID: &other}, models.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestGeoRepository_RenameAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	require.NoError(t, repo.Rename(ctx, models.LevelRegion, f.north.ID, "Northern Vietnam"))
	node, err := repo.Get(ctx, models.LevelRegion, f.north.ID)
	require.NoError(t, err)
	assert.Equal(t, "Northern Vietnam", node.Name)
	require.NotNil(t, node.ParentID)
	assert.Equal(t, f.vietnam.ID, *node.ParentID)

	_, err = repo.Get(ctx, models.LevelWard, 404)
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(repo.Rename(ctx, models.LevelWard, 404, "x")))
}

func TestGeoRepository_GetSkipsSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGeoRepository(db)
	ctx := context.Background()
	f := seedGeoTree(t, repo)

	require.NoError(t, repo.SetStatus(ctx, models.LevelContinent, f.asia.ID, models.StatusInactive))

	_, err := repo.Get(ctx, models.LevelContinent, f.asia.ID)
	assert.True(t, models.IsNotFound(err))

	node, err := repo.GetAny(ctx, models.LevelContinent, f.asia.ID)
	require.NoError(t, err)
	assert.False(t, node.Status)
	assert.Equal(t, "AS", node.Code)
}
