package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestListProductsFilters(t *testing.T) {
	svc := services.NewCatalogService(seeded(t), nil)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "Wireless Charging Pad", all[0].Name, "newest first")

	food, err := svc.ListProducts(ctx, repositories.ProductFilter{Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Organic Coffee Beans"}, names(food))

	same, err := svc.ListProducts(ctx, repositories.ProductFilter{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, same, 8)

	found, err := svc.ListProducts(ctx, repositories.ProductFilter{Search: "WIRELESS"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Premium Wireless Headphones", "Wireless Charging Pad"}, names(found))

	for _, term := range []string{"%", "_", `\`, "wire%pad", "5_"} {
		none, err := svc.ListProducts(ctx, repositories.ProductFilter{Search: term})
		require.NoError(t, err)
		assert.Empty(t, none, "search %q", term)
	}

	cheap, err := svc.ListProducts(ctx, repositories.ProductFilter{Sort: repositories.SortPriceLow, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Organic Coffee Beans", "Wireless Charging Pad"}, names(cheap))

	dear, err := svc.ListProducts(ctx, repositories.ProductFilter{Sort: repositories.SortPriceHigh, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smartphone Pro Max"}, names(dear))

	page, err := svc.ListProducts(ctx, repositories.ProductFilter{Sort: repositories.SortPriceLow, Limit: 2, Offset: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smartphone Pro Max"}, names(page))
}

func TestGetProductWithReviews(t *testing.T) {
	svc := services.NewCatalogService(seeded(t), nil)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, 999)
	assertKind(t, err, services.ErrNotFound, "Product not found")

	_, err = svc.AddReview(ctx, customer.ID, 7, services.ReviewInput{Rating: 2, Comment: " too bitter "})
	require.NoError(t, err)

	detail, err := svc.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Organic Coffee Beans", detail.Name)
	require.NotEmpty(t, detail.Reviews)
	assert.Equal(t, "too bitter", detail.Reviews[0].Comment)
	assert.Equal(t, 93, detail.ReviewsCount)
	// (4.8 * 92 + 2) / 93 = 4.769...
	assert.True(t, decimal.RequireFromString("4.8").Equal(detail.Rating), detail.Rating.String())
}

func TestAddReviewRejectsBadInput(t *testing.T) {
	svc := services.NewCatalogService(seeded(t), nil)
	ctx := context.Background()

	_, err := svc.AddReview(ctx, customer.ID, 1, services.ReviewInput{Rating: 6})
	assertKind(t, err, services.ErrInvalidInput, "rating must be between 1 and 5")

	_, err = svc.AddReview(ctx, customer.ID, 999, services.ReviewInput{Rating: 3})
	assertKind(t, err, services.ErrNotFound, "Product not found")
}

func TestCategoriesAreCachedUntilWrite(t *testing.T) {
	store := cache.NewMemory()
	svc := services.NewCatalogService(seeded(t), store)
	ctx := context.Background()

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Fashion", "Food"}, cats)

	var cached []string
	require.NoError(t, store.Get(ctx, "catalog:categories", &cached))
	assert.Equal(t, cats, cached)

	_, err = svc.CreateProduct(ctx, services.ProductInput{
		Name: "Desk Lamp", Category: "Home", Price: decimal.RequireFromString("19.5"), Stock: 3,
	})
	require.NoError(t, err)

	cats, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Fashion", "Food", "Home"}, cats)
}

func TestAdminProductLifecycle(t *testing.T) {
	svc := services.NewCatalogService(seeded(t), nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: " ", Category: "Home"})
	assertKind(t, err, services.ErrInvalidInput, "Name and category are required")

	_, err = svc.CreateProduct(ctx, services.ProductInput{Name: "Lamp", Category: "Home", Price: decimal.NewFromInt(-1)})
	assertKind(t, err, services.ErrInvalidInput, "price must be 0 or more")

	p, err := svc.CreateProduct(ctx, services.ProductInput{
		Name: "Lamp", Category: "Home", Price: decimal.RequireFromString("10.005"), Stock: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	require.NoError(t, svc.UpdateProduct(ctx, p.ID, services.ProductInput{
		Name: "Desk Lamp", Category: "Home", Price: decimal.RequireFromString("12.00"), Stock: 4,
	}))
	detail, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", detail.Name)
	assert.Equal(t, 4, detail.Stock)
	assert.True(t, decimal.NewFromInt(12).Equal(detail.Price), detail.Price.String())

	err = svc.UpdateProduct(ctx, 999, services.ProductInput{Name: "X", Category: "Y"})
	assertKind(t, err, services.ErrNotFound, "Product not found")

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assertKind(t, svc.DeleteProduct(ctx, p.ID), services.ErrNotFound, "Product not found")
}
