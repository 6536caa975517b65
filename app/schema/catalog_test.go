package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testdb"
)

func run(t *testing.T, query string) map[string]any {
	t.Helper()
	s, err := New(services.NewCatalogService(testdb.Seeded(t), nil))
	require.NoError(t, err)

	res := graphql.Do(graphql.Params{Schema: s, RequestString: query, Context: context.Background()})
	require.Empty(t, res.Errors)

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestProductsQuery(t *testing.T) {
	out := run(t, `{ products(category: "Food") { id name price reviewsCount } }`)

	products := out["products"].([]any)
	require.Len(t, products, 1)
	p := products[0].(map[string]any)
	assert.Equal(t, "Organic Coffee Beans", p["name"])
	assert.Equal(t, "24.99", p["price"])
	assert.Equal(t, float64(92), p["reviewsCount"])
}

func TestProductQuery(t *testing.T) {
	out := run(t, `{ product(id: 2) { name reviews { rating } } missing: product(id: 999) { name } }`)

	p := out["product"].(map[string]any)
	assert.Equal(t, "Smartphone Pro Max", p["name"])
	assert.Empty(t, p["reviews"])
	assert.Nil(t, out["missing"])
}

func TestCategoriesQuery(t *testing.T) {
	out := run(t, `{ categories }`)
	assert.Equal(t, []any{"Electronics", "Fashion", "Food"}, out["categories"])
}
