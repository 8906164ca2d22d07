// Package catalog turns heterogeneous backend product records into domain.Product
// values and provides the filter and sort views of the product list.
package catalog

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"

	"storefront/internal/domain"
)

const (
	defaultProductName = "Unnamed Product"
	lowStockThreshold  = 30
)

// Field aliases, in precedence order.
var (
	idKeys          = []string{"product_id", "id"}
	nameKeys        = []string{"product_name", "name"}
	priceKeys       = []string{"sales_price", "sale_price", "product_price", "price"}
	imageKeys       = []string{"product_images", "images"}
	categoryKeys    = []string{"product_categories", "categories"}
	sizeKeys        = []string{"product_sizes", "sizes"}
	descriptionKeys = []string{"product_description", "description"}
	stockKeys       = []string{"product_stock", "stock"}
	skuKeys         = []string{"skuid", "sku"}
	discountKeys    = []string{"product_discount", "discount"}
)

var descriptionPolicy = bluemonday.StrictPolicy()

// NormalizeProduct coerces one backend record into the canonical product shape.
// Missing or invalid optional fields take defaults; a record without an id is rejected.
func NormalizeProduct(raw map[string]any) (domain.Product, error) {
	if raw == nil {
		return domain.Product{}, &domain.ParseError{Kind: "product", Reason: "record is not an object"}
	}

	id := cast.ToString(pick(raw, idKeys...))
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, &domain.ParseError{Kind: "product", Reason: "missing product id"}
	}

	p := domain.Product{
		ID:          id,
		Name:        defaultProductName,
		Price:       toFloat(pick(raw, priceKeys...)),
		Images:      toStrings(pick(raw, imageKeys...)),
		Categories:  toCategories(pick(raw, categoryKeys...)),
		Sizes:       toSizes(pick(raw, sizeKeys...)),
		Description: sanitize(cast.ToString(pick(raw, descriptionKeys...))),
		Stock:       toInt(pick(raw, stockKeys...)),
		SKU:         cast.ToString(pick(raw, skuKeys...)),
		Discount:    toFloat(pick(raw, discountKeys...)),
		IsActive:    true,
	}
	if name := strings.TrimSpace(cast.ToString(pick(raw, nameKeys...))); name != "" {
		p.Name = name
	}

	switch status := cast.ToString(raw["status"]); {
	case status != "":
		p.Status = domain.StockStatus(status)
	case p.Stock > 0:
		p.Status = domain.StockIn
	default:
		p.Status = domain.StockOut
	}
	p.LowStock = p.Stock > 0 && p.Stock < lowStockThreshold

	if v, ok := raw["isActive"]; ok && v != nil {
		if active, err := cast.ToBoolE(v); err == nil && !active {
			p.IsActive = false
		}
	}
	return p, nil
}

// ProductList is the result of parsing a product list response.
type ProductList struct {
	Products []domain.Product
	Skipped  int // records rejected by NormalizeProduct
}

// ParseProducts accepts a bare array, {products: [...]}, {data: [...]},
// or an object whose values are product records.
func ParseProducts(body []byte) (ProductList, error) {
	records, err := extractRecords(body, "products", "data")
	if err != nil {
		return ProductList{}, err
	}
	var out ProductList
	for _, rec := range records {
		obj, _ := rec.(map[string]any)
		p, err := NormalizeProduct(obj)
		if err != nil {
			out.Skipped++
			continue
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

// extractRecords finds the record list inside a permissive response body.
func extractRecords(body []byte, wrapperKeys ...string) ([]any, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
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
		// object of records keyed by id
		keys := make([]string, 0, len(v))
		for k, val := range v {
			if _, ok := val.(map[string]any); ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		records := make([]any, 0, len(keys))
		for _, k := range keys {
			records = append(records, v[k])
		}
		return records, nil
	case nil:
		return nil, nil
	}
	return nil, &domain.ParseError{Kind: "response", Reason: fmt.Sprintf("unexpected %T payload", decoded)}
}

// pick returns the first alias with a truthy value.
func pick(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
		case float64:
			if t == 0 {
				continue
			}
		case bool:
			if !t {
				continue
			}
		}
		return v
	}
	return nil
}

func toFloat(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		if s, ok := v.(string); ok {
			f, err = cast.ToFloat64E(strings.TrimSpace(s))
		}
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toInt(v any) int {
	f := toFloat(v)
	if f < 0 {
		return 0
	}
	return int(f)
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(cast.ToString(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return []string{}
	}
	return out
}

func toCategories(v any) []string {
	var cats []string
	for _, c := range toStrings(v) {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return []string{domain.UncategorizedCategory}
	}
	return cats
}

func toSizes(v any) []string {
	if s, ok := v.(string); ok {
		sizes := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				sizes = append(sizes, part)
			}
		}
		return sizes
	}
	return toStrings(v)
}

func sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(s)))
}
