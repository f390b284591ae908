package service

import (
	"testing"
	"time"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestProductService(db *gorm.DB) *ProductService {
	return NewProductService(db, cache.NewCacheWithOptions(time.Minute, time.Minute, 100))
}

func TestListProductsOnlyActive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	createTestProduct(t, db, "Live", true)
	createTestProduct(t, db, "Pending", false)

	list, err := svc.ListProducts(models.ProductListQuery{})
	require.NoError(t, err)

	require.Len(t, list.Products, 1)
	assert.Equal(t, "Live", list.Products[0].Name)
	assert.Equal(t, int64(1), list.Total)
}

func TestListProductsSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	createTestProduct(t, db, "Tax Portal", true)
	createTestProduct(t, db, "Health Registry", true)

	list, err := svc.ListProducts(models.ProductListQuery{Search: "tax"})
	require.NoError(t, err)

	require.Len(t, list.Products, 1)
	assert.Equal(t, "Tax Portal", list.Products[0].Name)
}

func TestListProductsCategoryFilterExactToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	require.NoError(t, db.Create(&models.Product{
		Name: "A", Country: "Estonia", Description: "d", Website: "https://a.example",
		Categories: models.StringList{"ai"}, Active: true,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "B", Country: "Estonia", Description: "d", Website: "https://b.example",
		Categories: models.StringList{"maintenance"}, Active: true,
	}).Error)

	list, err := svc.ListProducts(models.ProductListQuery{Category: "ai"})
	require.NoError(t, err)

	require.Len(t, list.Products, 1)
	assert.Equal(t, "A", list.Products[0].Name)
	assert.Equal(t, int64(1), list.Total)
}

func TestListProductsCategoryFilterAnyPosition(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	for name, categories := range map[string]models.StringList{
		"First":  {"ai", "govtech"},
		"Middle": {"finance", "ai", "health"},
		"Last":   {"govtech", "ai"},
		"None":   {"maintenance"},
	} {
		require.NoError(t, db.Create(&models.Product{
			Name: name, Country: "Estonia", Description: "d", Website: "https://x.example",
			Categories: categories, Active: true,
		}).Error)
	}

	list, err := svc.ListProducts(models.ProductListQuery{Category: "ai"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Products, 3)
	for _, p := range list.Products {
		assert.True(t, p.Categories.Contains("ai"))
	}
}

func TestListProductsPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		createTestProduct(t, db, name, true)
	}

	list, err := svc.ListProducts(models.ProductListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)

	// Newest first: Gamma, Beta on page one leaves Alpha on page two
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Alpha", list.Products[0].Name)
}

func TestListProductsFeaturedFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	createTestProduct(t, db, "Alpha", true)
	featured := createTestProduct(t, db, "Zeta", true)
	require.NoError(t, db.Model(featured).Update("featured", true).Error)

	list, err := svc.ListProducts(models.ProductListQuery{})
	require.NoError(t, err)

	require.Len(t, list.Products, 2)
	assert.Equal(t, "Zeta", list.Products[0].Name)
}

func TestGetProductInactive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	product := createTestProduct(t, db, "Pending", false)

	_, err := svc.GetProduct(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSubmitProductLandsInactive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)
	user := createTestUser(t, db, "user-1", false)

	product, err := svc.SubmitProduct(user.ID, &models.SubmitProductRequest{
		Name:        "  New Tool  ",
		Country:     "Estonia",
		Categories:  []string{"govtech"},
		Description: "Does things",
		Website:     "https://new.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "New Tool", product.Name)
	assert.False(t, product.Active)
	assert.Equal(t, user.ID, product.SubmittedBy)

	// Not visible in the public catalog yet
	list, err := svc.ListProducts(models.ProductListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}

func TestListCountriesCached(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	createTestProduct(t, db, "A", true)

	countries, err := svc.ListCountries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Estonia"}, countries)

	// Second read comes from the cache even if the table changes underneath
	require.NoError(t, db.Create(&models.Product{
		Name: "B", Country: "Latvia", Description: "d", Website: "https://b.example",
		Categories: models.StringList{"x"}, Active: true,
	}).Error)

	countries, err = svc.ListCountries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Estonia"}, countries)
}

func TestListCategoriesDistinct(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestProductService(db)

	require.NoError(t, db.Create(&models.Product{
		Name: "A", Country: "Estonia", Description: "d", Website: "https://a.example",
		Categories: models.StringList{"ai", "govtech"}, Active: true,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "B", Country: "Estonia", Description: "d", Website: "https://b.example",
		Categories: models.StringList{"govtech"}, Active: true,
	}).Error)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"ai", "govtech"}, categories)
}
