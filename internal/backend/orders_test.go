package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/backend"
	"storefront/internal/domain"
)

func TestParseOrders_Shapes(t *testing.T) {
	for name, body := range map[string]string{
		"bare":   `[{"order_id":1},{"order_id":2}]`,
		"orders": `{"orders":[{"order_id":1},{"order_id":2}]}`,
		"data":   `{"data":[{"order_id":1},{"order_id":2}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			page, err := backend.ParseOrders([]byte(body))
			require.NoError(t, err)
			require.Len(t, page.Orders, 2)
			assert.Equal(t, "1", page.Orders[0].ID)
			assert.Equal(t, 1, page.Pagination.TotalPages)
			assert.Equal(t, 2, page.Pagination.TotalCount)
		})
	}
}

func TestParseOrders_Defaults(t *testing.T) {
	page, err := backend.ParseOrders([]byte(`{
		"orders": [{
			"order_id": "ORD-9",
			"created_at": "2024-01-15T10:30:00Z",
			"order_total": "90.00",
			"items": [
				{"quantity": 2, "total_price": 45, "size": "M", "custom_instructions": "Print on front"},
				{"product_name": "Hoodie", "product_price": 120, "uploaded_designs": ["a.png"]},
				"junk"
			]
		}, 5],
		"pagination": {"current_page": 2, "total_pages": 4, "total_count": 31, "per_page": 10}
	}`))
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)

	o := page.Orders[0]
	assert.Equal(t, "ORD-9", o.ID)
	assert.Equal(t, 90.0, o.Total)
	assert.Equal(t, domain.OrderPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, domain.OrderItem{ProductName: "Custom Product", Quantity: 2, Price: 45, Size: "M",
		CustomInstructions: "Print on front", UploadedDesigns: []string{}}, o.Items[0])
	assert.Equal(t, 1, o.Items[1].Quantity)
	assert.Equal(t, []string{"a.png"}, o.Items[1].UploadedDesigns)

	assert.Equal(t, domain.Pagination{CurrentPage: 2, TotalPages: 4, TotalCount: 31, PerPage: 10}, page.Pagination)
}

func TestParseOrders_Malformed(t *testing.T) {
	_, err := backend.ParseOrders([]byte(`<html>`))
	assert.Equal(t, domain.KindMalformed, domain.Classify(err))

	page, err := backend.ParseOrders([]byte(`{"message":"no orders"}`))
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}
