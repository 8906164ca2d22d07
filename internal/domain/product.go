package domain

type StockStatus string

const (
	StockIn  StockStatus = "In Stock"
	StockOut StockStatus = "Out of Stock"
)

const UncategorizedCategory = "uncategorized"

// Product is the canonical catalog record produced by the normalization boundary.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Images      []string    `json:"images"`
	Categories  []string    `json:"categories"`
	Sizes       []string    `json:"sizes"`
	Description string      `json:"description"`
	Stock       int         `json:"stock"`
	SKU         string      `json:"sku"`
	Discount    float64     `json:"discount"`
	Status      StockStatus `json:"status"`
	IsActive    bool        `json:"isActive"`
	LowStock    bool        `json:"lowStock"`
}

// PrimaryImage returns the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// PrimaryCategory returns the first category or "uncategorized".
func (p Product) PrimaryCategory() string {
	if len(p.Categories) == 0 {
		return UncategorizedCategory
	}
	return p.Categories[0]
}
