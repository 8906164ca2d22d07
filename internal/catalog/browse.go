package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/domain"
)

// AllCategories selects every category.
const AllCategories = "all"

type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// Query is the filter state of the product grid.
type Query struct {
	Category string  `json:"category"`
	Search   string  `json:"search"`
	MaxPrice float64 `json:"maxPrice"` // 0 means no ceiling
}

// CategoryOption is one entry of the category selector.
type CategoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Filter returns the active products matching q, preserving order.
func Filter(products []domain.Product, q Query) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	return lo.Filter(products, func(p domain.Product, _ int) bool {
		if !p.IsActive {
			return false
		}
		if category != "" && category != AllCategories && !lo.Contains(p.Categories, category) {
			return false
		}
		if q.MaxPrice > 0 && p.Price > q.MaxPrice {
			return false
		}
		return search == "" || matches(p, search)
	})
}

func matches(p domain.Product, needle string) bool {
	fields := append([]string{p.Name, p.Description, p.SKU}, p.Categories...)
	return lo.SomeBy(fields, func(f string) bool {
		return strings.Contains(strings.ToLower(f), needle)
	})
}

// Sort returns a sorted copy of products. Unknown orders fall back to featured.
func Sort(products []domain.Product, order SortOrder) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	switch order {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i].Name, out[j].Name)
			if order == SortNameDesc {
				return c > 0
			}
			return c < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	}
	return out
}

// idLess orders numeric ids numerically and everything else lexicographically,
// with numeric ids first.
func idLess(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Browse filters then sorts.
func Browse(products []domain.Product, q Query, order SortOrder) []domain.Product {
	return Sort(Filter(products, q), order)
}

// Categories lists the selector options: "all" first, then each distinct
// category except "uncategorized", alphabetically.
func Categories(products []domain.Product) []CategoryOption {
	cats := lo.Uniq(lo.FlatMap(products, func(p domain.Product, _ int) []string { return p.Categories }))
	cats = lo.Filter(cats, func(c string, _ int) bool { return c != "" && c != domain.UncategorizedCategory })
	sort.Strings(cats)

	title := cases.Title(language.English)
	options := []CategoryOption{{ID: AllCategories, Name: "All Products"}}
	for _, c := range cats {
		options = append(options, CategoryOption{ID: c, Name: title.String(c)})
	}
	return options
}

// PriceCeiling is the highest active product price, for the price slider.
func PriceCeiling(products []domain.Product) float64 {
	var ceiling float64
	for _, p := range products {
		if p.IsActive && p.Price > ceiling {
			ceiling = p.Price
		}
	}
	return ceiling
}

// FindProduct looks up a product by id.
func FindProduct(products []domain.Product, id string) (domain.Product, bool) {
	return lo.Find(products, func(p domain.Product) bool { return p.ID == id })
}

// LineItemFor builds the cart line for adding product in size.
// The size is required; quantity is clamped to [1, stock].
func LineItemFor(p domain.Product, size string, quantity int) (domain.LineItem, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return domain.LineItem{}, domain.NewValidationError("size", "please select a size")
	}
	if len(p.Sizes) > 0 && !lo.Contains(p.Sizes, size) {
		return domain.LineItem{}, domain.NewValidationError("size", "size "+size+" is not available for "+p.Name)
	}
	if p.Stock <= 0 {
		return domain.LineItem{}, domain.NewValidationError("quantity", p.Name+" is out of stock")
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > p.Stock {
		quantity = p.Stock
	}
	return domain.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Size:      size,
		Quantity:  quantity,
		Image:     p.PrimaryImage(),
		Category:  p.PrimaryCategory(),
	}, nil
}
