package backend

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"storefront/internal/domain"
)

const defaultItemName = "Custom Product"

// ParseOrders accepts a bare array, {orders: [...]} or {data: [...]}, with an
// optional pagination object. Records that are not objects are dropped.
func ParseOrders(data []byte) (domain.OrderPage, error) {
	records, err := extractList(data, "orders", "data")
	if err != nil {
		return domain.OrderPage{}, err
	}

	page := domain.OrderPage{Orders: make([]domain.Order, 0, len(records))}
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		page.Orders = append(page.Orders, parseOrder(obj))
	}

	var wrapper map[string]any
	if json.Unmarshal(data, &wrapper) == nil {
		if p, ok := wrapper["pagination"].(map[string]any); ok {
			page.Pagination = domain.Pagination{
				CurrentPage: cast.ToInt(firstOf(p, "current_page", "currentPage", "page")),
				TotalPages:  cast.ToInt(firstOf(p, "total_pages", "totalPages")),
				TotalCount:  cast.ToInt(firstOf(p, "total_count", "totalCount", "total")),
				PerPage:     cast.ToInt(firstOf(p, "per_page", "perPage", "limit")),
			}
		}
	}
	if page.Pagination.TotalPages == 0 {
		page.Pagination.CurrentPage = max(page.Pagination.CurrentPage, 1)
		page.Pagination.TotalPages = 1
		page.Pagination.TotalCount = max(page.Pagination.TotalCount, len(page.Orders))
	}
	return page, nil
}

func parseOrder(obj map[string]any) domain.Order {
	o := domain.Order{
		ID:            cast.ToString(firstOf(obj, "order_id", "id")),
		CreatedAt:     cast.ToString(obj["created_at"]),
		Total:         cast.ToFloat64(obj["order_total"]),
		Status:        domain.OrderStatus(cast.ToString(obj["status"])),
		CustomerName:  cast.ToString(obj["customer_name"]),
		CustomerEmail: cast.ToString(obj["customer_email"]),
		CustomerPhone: cast.ToString(obj["customer_phone"]),
		ItemCount:     cast.ToInt(obj["item_count"]),
		Items:         []domain.OrderItem{},
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	items, _ := obj["items"].([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		item := domain.OrderItem{
			ProductName:        cast.ToString(m["product_name"]),
			Quantity:           cast.ToInt(m["quantity"]),
			Price:              cast.ToFloat64(firstOf(m, "product_price", "total_price")),
			Size:               cast.ToString(m["size"]),
			CustomInstructions: cast.ToString(m["custom_instructions"]),
			PreviewImage:       cast.ToString(m["preview_image"]),
			UploadedDesigns:    cast.ToStringSlice(m["uploaded_designs"]),
		}
		if item.ProductName == "" {
			item.ProductName = defaultItemName
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.UploadedDesigns == nil {
			item.UploadedDesigns = []string{}
		}
		o.Items = append(o.Items, item)
	}
	return o
}

// extractList finds the record list inside a permissive response body.
func extractList(data []byte, wrapperKeys ...string) ([]any, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &domain.ParseError{Kind: "response", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	switch v := decoded.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, k := range wrapperKeys {
			if arr, ok := v[k].([]any); ok {
				return arr, nil
			}
		}
		return []any{}, nil
	case nil:
		return []any{}, nil
	}
	return nil, &domain.ParseError{Kind: "response", Reason: fmt.Sprintf("unexpected %T payload", decoded)}
}

// firstOf returns the first non-empty value among keys.
func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}
