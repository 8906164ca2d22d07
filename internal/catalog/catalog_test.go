package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

func TestNormalizeProduct_AliasExample(t *testing.T) {
	p, err := catalog.NormalizeProduct(map[string]any{
		"id":             "p1",
		"sale_price":     "29.99",
		"product_images": []any{},
		"product_sizes":  "S,M,L",
	})
	require.NoError(t, err)
	assert.Equal(t, 29.99, p.Price)
	assert.Equal(t, []string{}, p.Images)
	assert.Equal(t, []string{"S", "M", "L"}, p.Sizes)
	assert.Equal(t, "Unnamed Product", p.Name)
	assert.Equal(t, []string{"uncategorized"}, p.Categories)
	assert.Equal(t, domain.StockOut, p.Status)
	assert.True(t, p.IsActive)
}

func TestNormalizeProduct_Precedence(t *testing.T) {
	p, err := catalog.NormalizeProduct(map[string]any{
		"product_id":          float64(42),
		"id":                  "ignored",
		"product_name":        "Classic Tee",
		"sales_price":         float64(80),
		"price":               float64(100),
		"product_categories":  "T-Shirts",
		"product_sizes":       []any{"M", "L"},
		"product_description": "<p>Soft &amp; <b>warm</b></p>",
		"product_stock":       "12",
		"skuid":               "TEE-01",
		"product_discount":    "10",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "Classic Tee", p.Name)
	assert.Equal(t, 80.0, p.Price)
	assert.Equal(t, []string{"t-shirts"}, p.Categories)
	assert.Equal(t, []string{"M", "L"}, p.Sizes)
	assert.Equal(t, "Soft & warm", p.Description)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, "TEE-01", p.SKU)
	assert.Equal(t, 10.0, p.Discount)
	assert.Equal(t, domain.StockIn, p.Status)
	assert.True(t, p.LowStock)
}

func TestNormalizeProduct_Defaults(t *testing.T) {
	p, err := catalog.NormalizeProduct(map[string]any{
		"id":       "x",
		"price":    "not a number",
		"stock":    "lots",
		"sizes":    " , S , ,M",
		"isActive": false,
		"status":   "Pre-order",
	})
	require.NoError(t, err)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Stock)
	assert.Equal(t, []string{"S", "M"}, p.Sizes)
	assert.False(t, p.IsActive)
	assert.Equal(t, domain.StockStatus("Pre-order"), p.Status)
}

func TestNormalizeProduct_Rejects(t *testing.T) {
	_, err := catalog.NormalizeProduct(nil)
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)

	_, err = catalog.NormalizeProduct(map[string]any{"name": "No id"})
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.KindMalformed, domain.Classify(err))
}

func TestParseProducts_Shapes(t *testing.T) {
	bodies := map[string]string{
		"bare":     `[{"id":"1"},{"id":"2"}]`,
		"products": `{"products":[{"id":"1"},{"id":"2"}]}`,
		"data":     `{"data":[{"id":"1"},{"id":"2"}]}`,
		"values":   `{"b":{"id":"2"},"a":{"id":"1"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			list, err := catalog.ParseProducts([]byte(body))
			require.NoError(t, err)
			require.Len(t, list.Products, 2)
			assert.Equal(t, "1", list.Products[0].ID)
			assert.Equal(t, "2", list.Products[1].ID)
		})
	}
}

func TestParseProducts_SkipsBadRecords(t *testing.T) {
	list, err := catalog.ParseProducts([]byte(`[{"id":"1"}, 7, {"name":"no id"}]`))
	require.NoError(t, err)
	assert.Len(t, list.Products, 1)
	assert.Equal(t, 2, list.Skipped)
}

func TestParseProducts_Malformed(t *testing.T) {
	_, err := catalog.ParseProducts([]byte(`{oops`))
	assert.Equal(t, domain.KindMalformed, domain.Classify(err))

	_, err = catalog.ParseProducts([]byte(`"just a string"`))
	assert.Equal(t, domain.KindMalformed, domain.Classify(err))
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "3", Name: "zebra hoodie", Price: 120, Categories: []string{"hoodies"}, SKU: "HD-3", Stock: 5, IsActive: true},
		{ID: "1", Name: "Alpha Tee", Price: 50, Categories: []string{"tshirts"}, Description: "cotton", Stock: 5, IsActive: true},
		{ID: "10", Name: "Beta Cap", Price: 30, Categories: []string{"caps", "accessories"}, Stock: 0, IsActive: true},
		{ID: "2", Name: "Hidden", Price: 10, Categories: []string{"tshirts"}, IsActive: false},
		{ID: "4", Name: "Plain", Price: 70, Categories: []string{"uncategorized"}, IsActive: true},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	products := sampleProducts()

	assert.Equal(t, []string{"3", "1", "10", "4"}, ids(catalog.Filter(products, catalog.Query{Category: "all"})))
	assert.Equal(t, []string{"1"}, ids(catalog.Filter(products, catalog.Query{Category: "TShirts"})))
	assert.Equal(t, []string{"1"}, ids(catalog.Filter(products, catalog.Query{Search: "COTTON"})))
	assert.Equal(t, []string{"3"}, ids(catalog.Filter(products, catalog.Query{Search: "hd-3"})))
	assert.Equal(t, []string{"10"}, ids(catalog.Filter(products, catalog.Query{Search: "accessor"})))
	assert.Equal(t, []string{"1", "10"}, ids(catalog.Filter(products, catalog.Query{MaxPrice: 50})))
}

func TestSort(t *testing.T) {
	products := catalog.Filter(sampleProducts(), catalog.Query{})

	assert.Equal(t, []string{"1", "3", "4", "10"}, ids(catalog.Sort(products, catalog.SortFeatured)))
	assert.Equal(t, []string{"10", "1", "4", "3"}, ids(catalog.Sort(products, catalog.SortPriceLow)))
	assert.Equal(t, []string{"3", "4", "1", "10"}, ids(catalog.Sort(products, catalog.SortPriceHigh)))
	assert.Equal(t, []string{"1", "10", "4", "3"}, ids(catalog.Sort(products, catalog.SortNameAsc)))
	assert.Equal(t, []string{"3", "4", "10", "1"}, ids(catalog.Sort(products, catalog.SortNameDesc)))

	// input is untouched
	assert.Equal(t, []string{"3", "1", "10", "4"}, ids(products))
}

func TestCategories(t *testing.T) {
	opts := catalog.Categories(sampleProducts())
	assert.Equal(t, []catalog.CategoryOption{
		{ID: "all", Name: "All Products"},
		{ID: "accessories", Name: "Accessories"},
		{ID: "caps", Name: "Caps"},
		{ID: "hoodies", Name: "Hoodies"},
		{ID: "tshirts", Name: "Tshirts"},
	}, opts)
}

func TestPriceCeiling(t *testing.T) {
	assert.Equal(t, 120.0, catalog.PriceCeiling(sampleProducts()))
}

func TestLineItemFor(t *testing.T) {
	p := domain.Product{ID: "1", Name: "Tee", Price: 50, Sizes: []string{"S", "M"}, Stock: 3,
		Images: []string{"a.png", "b.png"}, Categories: []string{"tshirts", "sale"}}

	_, err := catalog.LineItemFor(p, "", 1)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "size", verr.Field)

	_, err = catalog.LineItemFor(p, "XL", 1)
	require.ErrorAs(t, err, &verr)

	li, err := catalog.LineItemFor(p, "M", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.LineItem{ProductID: "1", Name: "Tee", Price: 50, Size: "M", Quantity: 3, Image: "a.png", Category: "tshirts"}, li)

	li, err = catalog.LineItemFor(p, "S", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, li.Quantity)

	p.Stock = 0
	_, err = catalog.LineItemFor(p, "S", 1)
	require.ErrorAs(t, err, &verr)
}

func TestLineItemFor_Defaults(t *testing.T) {
	li, err := catalog.LineItemFor(domain.Product{ID: "1", Name: "Tee", Stock: 1}, "M", 1)
	require.NoError(t, err)
	assert.Equal(t, "", li.Image)
	assert.Equal(t, "uncategorized", li.Category)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := catalog.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	assert.True(t, errors.Is(err, catalog.ErrCacheMiss))

	require.NoError(t, cache.Set(ctx, sampleProducts()))
	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), got)

	ttl := mr.TTL("catalog:products")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)

	mr.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx)
	assert.True(t, errors.Is(err, catalog.ErrCacheMiss))

	require.NoError(t, cache.Set(ctx, sampleProducts()))
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Get(ctx)
	assert.True(t, errors.Is(err, catalog.ErrCacheMiss))
}
