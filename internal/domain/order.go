package domain

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Order is the canonical order record shown in the account dashboard.
type Order struct {
	ID            string      `json:"order_id"`
	CreatedAt     string      `json:"created_at"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"order_total"`
	Status        OrderStatus `json:"status"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	ItemCount     int         `json:"item_count"`
}

type OrderItem struct {
	ProductName        string   `json:"product_name"`
	Quantity           int      `json:"quantity"`
	Price              float64  `json:"product_price"`
	Size               string   `json:"size"`
	CustomInstructions string   `json:"custom_instructions"`
	PreviewImage       string   `json:"preview_image"`
	UploadedDesigns    []string `json:"uploaded_designs"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
	PerPage     int `json:"per_page"`
}

type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderPayload is the body of POST create-custom-order.
type OrderPayload struct {
	Items               []OrderPayloadItem `json:"order_items"`
	OrderTotal          float64            `json:"order_total"`
	ItemCount           int                `json:"item_count"`
	DeliveryIncluded    bool               `json:"delivery_included"`
	DeliveryPaid        bool               `json:"delivery_paid"`
	DeliveryFee         float64            `json:"delivery_fee"`
	FreeShippingApplied bool               `json:"free_shipping_applied"`
	CustomerName        string             `json:"customer_name"`
	CustomerPhone       string             `json:"customer_phone"`
	PaymentReference    string             `json:"payment_reference,omitempty"`
}

type OrderPayloadItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	ItemTotal float64 `json:"itemTotal"`
}
