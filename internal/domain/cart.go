package domain

// LineItem is one (product, size, quantity) entry in the cart.
// The JSON shape is the persisted snapshot format.
type LineItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
}

// ItemKey is the identity of a line item inside a cart.
type ItemKey struct {
	ProductID string
	Size      string
}

// Key returns the identity key of the line item.
func (li LineItem) Key() ItemKey {
	return ItemKey{ProductID: li.ProductID, Size: li.Size}
}

// LineTotal is price × quantity.
func (li LineItem) LineTotal() float64 {
	return li.Price * float64(li.Quantity)
}
